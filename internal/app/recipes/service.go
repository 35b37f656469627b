package recipes

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/platform/ratelimit"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/clock"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerrepo"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/recipegen"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/reciperepo"
)

// Service generates recipes through the external model gateway and manages
// saved recipes. Generation is admission-controlled per client key; saved
// recipes are scoped to the owner key that created them.
type Service struct {
	recipes reciperepo.Repository
	offers  offerrepo.Repository
	gateway recipegen.Gateway
	limiter *ratelimit.Store
	stats   ratelimit.StatsStore
	clk     clock.Clock
	log     *slog.Logger

	newRecipeID func() domain.RecipeID
}

func NewService(recipes reciperepo.Repository, offers offerrepo.Repository, gateway recipegen.Gateway, limiter *ratelimit.Store, stats ratelimit.StatsStore, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		recipes: recipes,
		offers:  offers,
		gateway: gateway,
		limiter: limiter,
		stats:   stats,
		clk:     clk,
		log:     log,
		newRecipeID: func() domain.RecipeID {
			return domain.RecipeID(uuid.NewString())
		},
	}
}

// SetNewRecipeIDForTest overrides recipe ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewRecipeIDForTest(fn func() domain.RecipeID) {
	if fn != nil {
		s.newRecipeID = fn
	}
}

// Generate asks the model gateway for a recipe from the given ingredients.
// Admission is checked before the gateway is reached; a denied caller costs
// nothing upstream. Denials do not consume tokens either, so a blocked client
// regains access exactly when refill alone would allow it.
func (s *Service) Generate(ctx context.Context, clientKey, ingredients string) (Generated, error) {
	if strings.TrimSpace(ingredients) == "" {
		return Generated{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid ingredients", Details: map[string]any{"ingredients": "must be non-empty"}}
	}

	now := s.clk.Now()
	allowed := s.limiter.Allow(clientKey, now)
	if err := s.stats.Record(ctx, ratelimit.StatsEvent{Key: clientKey, Allowed: allowed, At: now}); err != nil {
		// Stats are advisory; admission decisions never depend on them.
		s.log.Warn("rate limit stats record failed", "err", err)
	}
	if !allowed {
		s.log.Info("generation denied", "client_key", clientKey)
		return Generated{}, &Error{Status: 429, Code: "RATE_LIMITED", Message: "too many requests, try again later"}
	}

	res, err := s.gateway.Generate(ctx, ingredients)
	if err != nil {
		s.log.Warn("generation failed", "err", err)
		if errors.Is(err, recipegen.ErrGenerationFailed) {
			return Generated{}, &Error{Status: 502, Code: "GENERATION_FAILED", Message: "recipe generation failed"}
		}
		return Generated{}, err
	}

	if err := s.stats.RecordUsage(ctx, clientKey, res.TokensUsed); err != nil {
		s.log.Warn("token usage record failed", "err", err)
	}
	s.log.Info("recipe generated", "client_key", clientKey,
		"tokens_used", res.TokensUsed,
		"cost_usd", ratelimit.CostUSD(res.TokensUsed),
		"requests_per_dollar", ratelimit.RequestsPerDollar(res.TokensUsed))
	return Generated{Body: res.Body, TokensUsed: res.TokensUsed}, nil
}

// Save persists a recipe for the owner, validating that every referenced
// offer exists.
func (s *Service) Save(ctx context.Context, owner domain.OwnerKey, in SaveInput) (domain.Recipe, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Recipe{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid title", Details: map[string]any{"title": "must be non-empty"}}
	}
	if strings.TrimSpace(in.Body) == "" {
		return domain.Recipe{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid body", Details: map[string]any{"body": "must be non-empty"}}
	}
	for _, id := range in.OfferIDs {
		if _, err := s.offers.GetOffer(ctx, id); err != nil {
			if errors.Is(err, offerrepo.ErrNotFound) {
				return domain.Recipe{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "unknown offer", Details: map[string]any{"offerIds": string(id)}}
			}
			return domain.Recipe{}, err
		}
	}

	rec := domain.Recipe{
		ID:        s.newRecipeID(),
		Owner:     owner,
		Title:     strings.TrimSpace(in.Title),
		Body:      in.Body,
		OfferIDs:  append([]domain.OfferID(nil), in.OfferIDs...),
		CreatedAt: s.clk.Now(),
	}
	if err := s.recipes.Create(ctx, rec); err != nil {
		return domain.Recipe{}, err
	}
	return rec, nil
}

// ListByOwner returns the owner's saved recipes, oldest first.
func (s *Service) ListByOwner(ctx context.Context, owner domain.OwnerKey) ([]domain.Recipe, error) {
	return s.recipes.ListByOwner(ctx, owner)
}

// Update applies a partial update to one of the owner's recipes. A recipe
// owned by someone else reads as not found.
func (s *Service) Update(ctx context.Context, owner domain.OwnerKey, id domain.RecipeID, in UpdateInput) (domain.Recipe, error) {
	rec, err := s.getOwned(ctx, owner, id)
	if err != nil {
		return domain.Recipe{}, err
	}

	if in.Title.IsSpecified() {
		if in.Title.IsNull() {
			return domain.Recipe{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid title", Details: map[string]any{"title": "cannot be null"}}
		}
		title := strings.TrimSpace(in.Title.MustGet())
		if title == "" {
			return domain.Recipe{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid title", Details: map[string]any{"title": "must be non-empty"}}
		}
		rec.Title = title
	}
	if in.Body.IsSpecified() {
		if in.Body.IsNull() {
			return domain.Recipe{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid body", Details: map[string]any{"body": "cannot be null"}}
		}
		if strings.TrimSpace(in.Body.MustGet()) == "" {
			return domain.Recipe{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid body", Details: map[string]any{"body": "must be non-empty"}}
		}
		rec.Body = in.Body.MustGet()
	}
	if in.OfferIDs.IsSpecified() {
		if in.OfferIDs.IsNull() {
			rec.OfferIDs = nil
		} else {
			ids := in.OfferIDs.MustGet()
			for _, oid := range ids {
				if _, err := s.offers.GetOffer(ctx, oid); err != nil {
					if errors.Is(err, offerrepo.ErrNotFound) {
						return domain.Recipe{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "unknown offer", Details: map[string]any{"offerIds": string(oid)}}
					}
					return domain.Recipe{}, err
				}
			}
			rec.OfferIDs = append([]domain.OfferID(nil), ids...)
		}
	}

	if err := s.recipes.Save(ctx, rec); err != nil {
		return domain.Recipe{}, err
	}
	return rec, nil
}

// Delete removes one of the owner's recipes.
func (s *Service) Delete(ctx context.Context, owner domain.OwnerKey, id domain.RecipeID) error {
	if _, err := s.getOwned(ctx, owner, id); err != nil {
		return err
	}
	return s.recipes.Delete(ctx, id)
}

func (s *Service) getOwned(ctx context.Context, owner domain.OwnerKey, id domain.RecipeID) (domain.Recipe, error) {
	rec, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reciperepo.ErrNotFound) {
			return domain.Recipe{}, &Error{Status: 404, Code: "RECIPE_NOT_FOUND", Message: "recipe not found"}
		}
		return domain.Recipe{}, err
	}
	if rec.Owner != owner {
		// Existence is not leaked across owners.
		return domain.Recipe{}, &Error{Status: 404, Code: "RECIPE_NOT_FOUND", Message: "recipe not found"}
	}
	return rec, nil
}
