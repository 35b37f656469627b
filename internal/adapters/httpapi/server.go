package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"

	"github.com/foodwaste-kbh/clearance-api/internal/app/offers"
	"github.com/foodwaste-kbh/clearance-api/internal/app/recipes"
	"github.com/foodwaste-kbh/clearance-api/internal/app/shoppinglists"
	"github.com/foodwaste-kbh/clearance-api/internal/app/stores"
	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerrepo"
)

// Server holds the handlers behind the API routes.
type Server struct {
	Stores        *stores.Service
	Offers        *offers.Service
	Recipes       *recipes.Service
	ShoppingLists *shoppinglists.Service
}

func NewServer(storesSvc *stores.Service, offersSvc *offers.Service, recipesSvc *recipes.Service, listsSvc *shoppinglists.Service) *Server {
	return &Server{Stores: storesSvc, Offers: offersSvc, Recipes: recipesSvc, ShoppingLists: listsSvc}
}

type storeResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Brand  string `json:"brand"`
	Zip    string `json:"zip"`
	City   string `json:"city"`
	Street string `json:"street"`
}

func toStoreResponse(st domain.Store) storeResponse {
	return storeResponse{
		ID:     string(st.ID),
		Name:   st.Name,
		Brand:  st.Brand,
		Zip:    st.Zip,
		City:   st.City,
		Street: st.Street,
	}
}

func (s *Server) getStores(w http.ResponseWriter, r *http.Request) {
	zip := r.URL.Query().Get("zipcode")
	sts, err := s.Stores.LookupByZip(r.Context(), zip)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]storeResponse, 0, len(sts))
	for _, st := range sts {
		out = append(out, toStoreResponse(st))
	}
	writeJSON(w, http.StatusOK, out)
}

type clearanceResponse struct {
	Offer struct {
		ID              string  `json:"id"`
		OriginalPrice   float64 `json:"originalPrice"`
		NewPrice        float64 `json:"newPrice"`
		Discount        float64 `json:"discount"`
		PercentDiscount float64 `json:"percentDiscount"`
	} `json:"offer"`
	Product struct {
		EAN         string `json:"ean"`
		Description string `json:"description"`
		Image       string `json:"image"`
	} `json:"product"`
}

func toClearanceResponse(d offerrepo.OfferDetail) clearanceResponse {
	var cr clearanceResponse
	cr.Offer.ID = string(d.Offer.ID)
	cr.Offer.OriginalPrice = d.Offer.OriginalPrice
	cr.Offer.NewPrice = d.Offer.NewPrice
	cr.Offer.Discount = d.Offer.Discount
	cr.Offer.PercentDiscount = d.Offer.PercentDiscount
	cr.Product.EAN = string(d.Product.EAN)
	cr.Product.Description = d.Product.Description
	cr.Product.Image = d.Product.Image
	return cr
}

func (s *Server) getClearances(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing store id", map[string]any{"id": "required"})
		return
	}

	details, hit, err := s.Offers.GetClearances(r.Context(), domain.StoreID(id))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	out := make([]clearanceResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toClearanceResponse(d))
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, out)
}

type storeCountResponse struct {
	StoreID   string `json:"storeId"`
	StoreName string `json:"storeName"`
	Count     int64  `json:"count"`
}

func (s *Server) countStoreCalls(w http.ResponseWriter, r *http.Request) {
	counts, err := s.Offers.CountFetchesByStore(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]storeCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, storeCountResponse{StoreID: string(c.StoreID), StoreName: c.StoreName, Count: c.Count})
	}
	writeJSON(w, http.StatusOK, out)
}

type zipCountResponse struct {
	Zipcode string `json:"zipcode"`
	Count   int64  `json:"count"`
}

func (s *Server) countZipcodeCalls(w http.ResponseWriter, r *http.Request) {
	counts, err := s.Offers.CountFetchesByZip(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]zipCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, zipCountResponse{Zipcode: c.Zip, Count: c.Count})
	}
	writeJSON(w, http.StatusOK, out)
}

type productCountResponse struct {
	EAN         string `json:"ean"`
	Description string `json:"description"`
	Count       int64  `json:"count"`
}

func (s *Server) countProducts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.Offers.CountOffersByProduct(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]productCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, productCountResponse{EAN: string(c.EAN), Description: c.Description, Count: c.Count})
	}
	writeJSON(w, http.StatusOK, out)
}

type generateRequest struct {
	Ingredients string `json:"ingredients"`
}

type generateResponse struct {
	Recipe     string `json:"recipe"`
	TokensUsed int    `json:"tokensUsed"`
}

func (s *Server) generateRecipe(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}

	gen, err := s.Recipes.Generate(r.Context(), clientKey(r), req.Ingredients)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Recipe: gen.Body, TokensUsed: gen.TokensUsed})
}

type saveRecipeRequest struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	OfferIDs []string `json:"offerIds"`
}

type recipeResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	OfferIDs  []string  `json:"offerIds"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRecipeResponse(rec domain.Recipe) recipeResponse {
	ids := make([]string, 0, len(rec.OfferIDs))
	for _, id := range rec.OfferIDs {
		ids = append(ids, string(id))
	}
	return recipeResponse{
		ID:        string(rec.ID),
		Title:     rec.Title,
		Body:      rec.Body,
		OfferIDs:  ids,
		CreatedAt: rec.CreatedAt,
	}
}

func (s *Server) saveRecipe(w http.ResponseWriter, r *http.Request) {
	var req saveRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}

	ids := make([]domain.OfferID, 0, len(req.OfferIDs))
	for _, id := range req.OfferIDs {
		ids = append(ids, domain.OfferID(id))
	}

	rec, err := s.Recipes.Save(r.Context(), domain.OwnerKey(clientKey(r)), recipes.SaveInput{
		Title:    req.Title,
		Body:     req.Body,
		OfferIDs: ids,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecipeResponse(rec))
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Recipes.ListByOwner(r.Context(), domain.OwnerKey(clientKey(r)))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]recipeResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecipeResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateRecipeRequest struct {
	Title    nullable.Nullable[string]   `json:"title"`
	Body     nullable.Nullable[string]   `json:"body"`
	OfferIDs nullable.Nullable[[]string] `json:"offerIds"`
}

func (s *Server) updateRecipe(w http.ResponseWriter, r *http.Request) {
	var req updateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}

	in := recipes.UpdateInput{Title: req.Title, Body: req.Body}
	if req.OfferIDs.IsSpecified() {
		if req.OfferIDs.IsNull() {
			in.OfferIDs = nullable.NewNullNullable[[]domain.OfferID]()
		} else {
			raw := req.OfferIDs.MustGet()
			ids := make([]domain.OfferID, 0, len(raw))
			for _, id := range raw {
				ids = append(ids, domain.OfferID(id))
			}
			in.OfferIDs = nullable.NewNullableWithValue(ids)
		}
	}

	rec, err := s.Recipes.Update(r.Context(), domain.OwnerKey(clientKey(r)), domain.RecipeID(chi.URLParam(r, "id")), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecipeResponse(rec))
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	err := s.Recipes.Delete(r.Context(), domain.OwnerKey(clientKey(r)), domain.RecipeID(chi.URLParam(r, "id")))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type saveShoppingListRequest struct {
	OfferIDs []string `json:"offerIds"`
}

type savedShoppingListResponse struct {
	ID        string    `json:"id"`
	OfferIDs  []string  `json:"offerIds"`
	CreatedAt time.Time `json:"createdAt"`
}

type shoppingListResponse struct {
	ID        string              `json:"id"`
	Offers    []clearanceResponse `json:"offers"`
	CreatedAt time.Time           `json:"createdAt"`
}

func (s *Server) saveShoppingList(w http.ResponseWriter, r *http.Request) {
	var req saveShoppingListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}

	ids := make([]domain.OfferID, 0, len(req.OfferIDs))
	for _, id := range req.OfferIDs {
		ids = append(ids, domain.OfferID(id))
	}

	l, err := s.ShoppingLists.Save(r.Context(), domain.OwnerKey(clientKey(r)), ids)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := savedShoppingListResponse{ID: string(l.ID), OfferIDs: make([]string, 0, len(l.OfferIDs)), CreatedAt: l.CreatedAt}
	for _, id := range l.OfferIDs {
		out.OfferIDs = append(out.OfferIDs, string(id))
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) listShoppingLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.ShoppingLists.ListByOwner(r.Context(), domain.OwnerKey(clientKey(r)))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]shoppingListResponse, 0, len(lists))
	for _, l := range lists {
		resp := shoppingListResponse{
			ID:        string(l.List.ID),
			Offers:    make([]clearanceResponse, 0, len(l.Offers)),
			CreatedAt: l.List.CreatedAt,
		}
		for _, d := range l.Offers {
			resp.Offers = append(resp.Offers, toClearanceResponse(d))
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteShoppingList(w http.ResponseWriter, r *http.Request) {
	err := s.ShoppingLists.Delete(r.Context(), domain.OwnerKey(clientKey(r)), domain.ShoppingListID(chi.URLParam(r, "id")))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
