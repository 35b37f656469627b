// Package salling implements the offer provider port against the Salling
// Group public API. Store listings come from the v2 API, food-waste clearances
// from v1.
package salling

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/foodwaste-kbh/clearance-api/internal/domain"
	"github.com/foodwaste-kbh/clearance-api/internal/ports/out/offerprovider"
)

const defaultTimeout = 10 * time.Second

// Client talks to the Salling Group API. It implements offerprovider.Provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// foodWasteEnvelope mirrors one element of the v1 food-waste response. Each
// element carries the clearances for one store location.
type foodWasteEnvelope struct {
	Clearances []struct {
		Offer struct {
			OriginalPrice   float64 `json:"originalPrice"`
			NewPrice        float64 `json:"newPrice"`
			Discount        float64 `json:"discount"`
			PercentDiscount float64 `json:"percentDiscount"`
		} `json:"offer"`
		Product struct {
			Description string `json:"description"`
			EAN         string `json:"ean"`
			Image       string `json:"image"`
		} `json:"product"`
	} `json:"clearances"`
}

type storeEnvelope struct {
	ID      string `json:"id"`
	Brand   string `json:"brand"`
	Name    string `json:"name"`
	Address struct {
		City   string `json:"city"`
		Street string `json:"street"`
		Zip    string `json:"zip"`
	} `json:"address"`
}

func (c *Client) FetchClearances(ctx context.Context, storeID domain.StoreID) ([]offerprovider.Clearance, error) {
	u := fmt.Sprintf("%s/v1/food-waste/%s", c.baseURL, url.PathEscape(string(storeID)))

	var envelopes []foodWasteEnvelope
	if err := c.getJSON(ctx, u, &envelopes); err != nil {
		return nil, err
	}

	var out []offerprovider.Clearance
	for _, env := range envelopes {
		for _, cl := range env.Clearances {
			out = append(out, offerprovider.Clearance{
				EAN:             domain.EAN(cl.Product.EAN),
				Description:     cl.Product.Description,
				Image:           cl.Product.Image,
				OriginalPrice:   cl.Offer.OriginalPrice,
				NewPrice:        cl.Offer.NewPrice,
				Discount:        cl.Offer.Discount,
				PercentDiscount: cl.Offer.PercentDiscount,
			})
		}
	}
	return out, nil
}

func (c *Client) FetchStoresByZip(ctx context.Context, zip string) ([]domain.Store, error) {
	u := fmt.Sprintf("%s/v2/stores?zip=%s", c.baseURL, url.QueryEscape(zip))

	var envelopes []storeEnvelope
	if err := c.getJSON(ctx, u, &envelopes); err != nil {
		return nil, err
	}

	out := make([]domain.Store, 0, len(envelopes))
	for _, env := range envelopes {
		out = append(out, domain.Store{
			ID:     domain.StoreID(env.ID),
			Name:   env.Name,
			Brand:  env.Brand,
			Zip:    env.Address.Zip,
			City:   env.Address.City,
			Street: env.Address.Street,
		})
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", offerprovider.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", offerprovider.ErrUpstreamUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", offerprovider.ErrMalformedResponse, err)
	}
	return nil
}
