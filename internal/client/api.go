// Package client is the FaultKeeper API client used by the interactive shell.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/atinyakov/FaultKeeper/internal/access"
	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/atinyakov/FaultKeeper/internal/search"
	"github.com/atinyakov/FaultKeeper/internal/service"
)

// Errors mirrored from API status codes.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("sign-in required")
	ErrQuotaExceeded   = errors.New("daily limit reached, upgrade to pro for unlimited access")
	ErrUpgradeRequired = errors.New("favorites are a pro feature")
)

// APIError is a non-2xx response the client has no sentinel for.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("server error: %s", e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, f+" "+e.Fields[f])
	}
	return fmt.Sprintf("server error: %s (%s)", e.Message, strings.Join(parts, "; "))
}

// Account is the caller's plan and quota as reported by the API.
type Account struct {
	access.State
	Remaining int  `json:"remaining"`
	CanAccess bool `json:"canAccess"`
}

// FaultPage is a fault with its ordered resolution steps.
type FaultPage struct {
	Fault  models.FaultCode        `json:"fault"`
	Steps  []models.ResolutionStep `json:"steps"`
	Access Account                 `json:"access"`
}

// API talks to a FaultKeeper server.
type API struct {
	HTTP    *http.Client
	BaseURL string
	Session *Session
}

// New returns an API client with a sane request timeout.
func New(baseURL string, s *Session) *API {
	return &API{
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Session: s,
	}
}

// Search ranks fault codes matching q, optionally within a brand.
func (a *API) Search(ctx context.Context, q, brandID string) ([]search.Result, error) {
	v := url.Values{}
	v.Set("q", q)
	if brandID != "" {
		v.Set("brandId", brandID)
	}
	var out []search.Result
	return out, a.do(ctx, http.MethodGet, "/api/search?"+v.Encode(), &out)
}

// Brands lists every brand.
func (a *API) Brands(ctx context.Context) ([]models.Brand, error) {
	var out []models.Brand
	return out, a.do(ctx, http.MethodGet, "/api/brands", &out)
}

// Fault opens a fault page. For free users this may consume quota.
func (a *API) Fault(ctx context.Context, id string) (*FaultPage, error) {
	var out FaultPage
	if err := a.do(ctx, http.MethodGet, "/api/faults/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Account returns the caller's plan and quota.
func (a *API) Account(ctx context.Context) (*Account, error) {
	return a.account(ctx, http.MethodGet, "/api/account")
}

// Upgrade moves the caller to the pro plan.
func (a *API) Upgrade(ctx context.Context) (*Account, error) {
	return a.account(ctx, http.MethodPost, "/api/account/upgrade")
}

// Downgrade moves the caller back to the free plan.
func (a *API) Downgrade(ctx context.Context) (*Account, error) {
	return a.account(ctx, http.MethodPost, "/api/account/downgrade")
}

func (a *API) account(ctx context.Context, method, path string) (*Account, error) {
	var out Account
	if err := a.do(ctx, method, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Favorites lists the caller's saved faults, newest first.
func (a *API) Favorites(ctx context.Context) ([]models.FaultCode, error) {
	var out []models.FaultCode
	return out, a.do(ctx, http.MethodGet, "/api/favorites", &out)
}

// AddFavorite saves a fault. It reports whether a new favorite was created.
func (a *API) AddFavorite(ctx context.Context, faultID string) (bool, error) {
	var out service.AddResult
	err := a.do(ctx, http.MethodPut, "/api/favorites/"+url.PathEscape(faultID), &out)
	return out.Created, err
}

// RemoveFavorite deletes a saved fault. It reports whether one was removed.
func (a *API) RemoveFavorite(ctx context.Context, faultID string) (bool, error) {
	var out service.RemoveResult
	err := a.do(ctx, http.MethodDelete, "/api/favorites/"+url.PathEscape(faultID), &out)
	return out.Removed, err
}

func (a *API) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if a.Session != nil {
		if a.Session.Token != "" {
			req.Header.Set("Authorization", "Bearer "+a.Session.Token)
		}
		if a.Session.Lang != "" {
			req.Header.Set("Accept-Language", a.Session.Lang)
		}
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusPaymentRequired:
		return ErrQuotaExceeded
	case http.StatusForbidden:
		return ErrUpgradeRequired
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if json.Unmarshal(body, &e) != nil || e.Error == "" {
		e.Error = strings.TrimSpace(string(body))
	}
	return &APIError{Status: resp.StatusCode, Message: e.Error, Fields: e.Fields}
}
