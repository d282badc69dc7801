// Package gateway provides HTTP/JSON clients for the external collaborators:
// the collateral registry, the capital pool and the settlement-token transfer
// service. Each call is one synchronous POST; a non-2xx reply is the caller's
// failure and aborts the enclosing loan transaction.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"loan-manager-backend/internal/domain/gateway"
)

var (
	_ gateway.CollateralRegistry = (*CollateralClient)(nil)
	_ gateway.CapitalPool        = (*PoolClient)(nil)
	_ gateway.TokenTransfer      = (*TokenClient)(nil)
)

type client struct {
	base string
	hc   *http.Client
}

func newClient(baseURL string) (client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return client{}, fmt.Errorf("missing gateway base URL")
	}
	return client{base: baseURL, hc: &http.Client{Timeout: 10 * time.Second}}, nil
}

func (c client) post(ctx context.Context, path string, payload any, out any) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s%s: unexpected status %d", c.base, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// CollateralClient talks to the collateral registry service.
type CollateralClient struct{ client }

func NewCollateralClient(baseURL string) (*CollateralClient, error) {
	c, err := newClient(baseURL)
	if err != nil {
		return nil, err
	}
	return &CollateralClient{client: c}, nil
}

func (c *CollateralClient) Stake(ctx context.Context, collateralID, loanID uint64) error {
	return c.post(ctx, "/collateral/stake", map[string]any{
		"collateral_id": collateralID,
		"loan_id":       loanID,
	}, nil)
}

func (c *CollateralClient) Unstake(ctx context.Context, collateralID uint64) error {
	return c.post(ctx, "/collateral/unstake", map[string]any{
		"collateral_id": collateralID,
	}, nil)
}

func (c *CollateralClient) QualityScore(ctx context.Context, collateralID uint64) (uint32, error) {
	var out struct {
		Score uint32 `json:"score"`
	}
	err := c.post(ctx, "/collateral/score", map[string]any{
		"collateral_id": collateralID,
	}, &out)
	if err != nil {
		return 0, err
	}
	return out.Score, nil
}

// PoolClient talks to the capital pool service.
type PoolClient struct{ client }

func NewPoolClient(baseURL string) (*PoolClient, error) {
	c, err := newClient(baseURL)
	if err != nil {
		return nil, err
	}
	return &PoolClient{client: c}, nil
}

func (c *PoolClient) Borrow(ctx context.Context, amount int64, borrowerID string, loanID uint64) error {
	return c.post(ctx, "/pool/borrow", map[string]any{
		"amount_minor": amount,
		"borrower_id":  borrowerID,
		"loan_id":      loanID,
	}, nil)
}

func (c *PoolClient) Repay(ctx context.Context, principalPortion, interestPortion int64, loanID uint64) error {
	return c.post(ctx, "/pool/repay", map[string]any{
		"principal_minor": principalPortion,
		"interest_minor":  interestPortion,
		"loan_id":         loanID,
	}, nil)
}

// TokenClient talks to the settlement-currency transfer service.
type TokenClient struct{ client }

func NewTokenClient(baseURL string) (*TokenClient, error) {
	c, err := newClient(baseURL)
	if err != nil {
		return nil, err
	}
	return &TokenClient{client: c}, nil
}

func (c *TokenClient) Transfer(ctx context.Context, from, to string, amount int64) error {
	return c.post(ctx, "/transfer", map[string]any{
		"from":         from,
		"to":           to,
		"amount_minor": amount,
	}, nil)
}
