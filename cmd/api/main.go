package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/foodwaste-kbh/clearance-api/internal/adapters/httpapi"
	memofferrepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/memory/offerrepo"
	memreciperepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/memory/reciperepo"
	memshoppinglistrepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/memory/shoppinglistrepo"
	memstorerepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/memory/storerepo"
	"github.com/foodwaste-kbh/clearance-api/internal/adapters/openai"
	"github.com/foodwaste-kbh/clearance-api/internal/adapters/postgres"
	pgofferrepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/postgres/offerrepo"
	pgreciperepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/postgres/reciperepo"
	pgshoppinglistrepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/postgres/shoppinglistrepo"
	pgstorerepo "github.com/foodwaste-kbh/clearance-api/internal/adapters/postgres/storerepo"
	"github.com/foodwaste-kbh/clearance-api/internal/adapters/salling"
	"github.com/foodwaste-kbh/clearance-api/internal/adapters/sqlite"
	"github.com/foodwaste-kbh/clearance-api/internal/app/offers"
	"github.com/foodwaste-kbh/clearance-api/internal/app/recipes"
	"github.com/foodwaste-kbh/clearance-api/internal/app/shoppinglists"
	"github.com/foodwaste-kbh/clearance-api/internal/app/stores"
	platformclock "github.com/foodwaste-kbh/clearance-api/internal/platform/clock"
	"github.com/foodwaste-kbh/clearance-api/internal/platform/config"
	"github.com/foodwaste-kbh/clearance-api/internal/platform/obs"
	"github.com/foodwaste-kbh/clearance-api/internal/platform/ratelimit"
	offerrepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerrepo"
	reciperepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/reciperepo"
	shoppinglistrepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/shoppinglistrepo"
	storerepoport "github.com/foodwaste-kbh/clearance-api/internal/ports/out/storerepo"
)

func main() {
	log := obs.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := platformclock.NewSystemClock()

	var (
		storeRepo  storerepoport.Repository
		offerRepo  offerrepoport.Repository
		recipeRepo reciperepoport.Repository
		listRepo   shoppinglistrepoport.Repository
		cleanup    func()
	)

	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Error("postgres connect failed", "err", err)
			os.Exit(1)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Error("postgres migrate failed", "err", err)
			os.Exit(1)
		}
		cleanup = pool.Close

		storeRepo = pgstorerepo.NewRepo(pool)
		offerRepo = pgofferrepo.NewRepo(pool)
		recipeRepo = pgreciperepo.NewRepo(pool)
		listRepo = pgshoppinglistrepo.NewRepo(pool)
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			log.Error("sqlite open failed", "err", err)
			os.Exit(1)
		}
		cleanup = func() { _ = db.Close() }

		storeRepo = sqlite.NewStoreRepo(db)
		offerRepo = sqlite.NewOfferRepo(db)
		recipeRepo = sqlite.NewRecipeRepo(db)
		listRepo = sqlite.NewShoppingListRepo(db)
	default:
		memStores := memstorerepo.NewRepo()
		storeRepo = memStores
		offerRepo = memofferrepo.NewRepo(memStores)
		recipeRepo = memreciperepo.NewRepo()
		listRepo = memshoppinglistrepo.NewRepo()
	}

	if cleanup != nil {
		defer cleanup()
	}

	var stats ratelimit.StatsStore = ratelimit.NewMemoryStats()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("redis connect failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		stats = ratelimit.NewRedisStats(rdb)
	}

	limiter := ratelimit.NewStore()
	limiter.StartJanitor(ctx)

	provider := salling.NewClient(cfg.SallingBaseURL, cfg.SallingAPIKey)
	gateway := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey)

	api := httpapi.NewServer(
		stores.NewService(storeRepo, provider, log),
		offers.NewService(storeRepo, offerRepo, provider, clk, log),
		recipes.NewService(recipeRepo, offerRepo, gateway, limiter, stats, clk, log),
		shoppinglists.NewService(listRepo, offerRepo, clk, log),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(api),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("api listening", "port", cfg.Port, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}
