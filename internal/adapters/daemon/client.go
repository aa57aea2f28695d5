package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// DaemonClient sends player actions to a running daemon over HTTP
type DaemonClient struct {
	baseURL string
	http    *http.Client
}

// NewDaemonClient creates a client for the daemon listening on address (host:port or URL)
func NewDaemonClient(address string) *DaemonClient {
	baseURL := strings.TrimRight(address, "/")
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &DaemonClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Health checks that the daemon accepts actions, retrying briefly while it starts up
func (c *DaemonClient) Health(ctx context.Context) error {
	_, err := retry.New[bool](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		BackoffPolicy: retry.BackoffExponential,
	}).Do(ctx, func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
		if err != nil {
			return false, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return false, fmt.Errorf("failed to reach daemon at %s: %w", c.baseURL, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false, fmt.Errorf("daemon health check returned %s", resp.Status)
		}
		return true, nil
	})
	return err
}

func (c *DaemonClient) BuyFactory(ctx context.Context, player shared.PlayerID, factoryID string) (*FactoryResponse, error) {
	var resp FactoryResponse
	err := c.call(ctx, ActionBuyFactory, ActionRequest{PlayerID: player.String(), FactoryID: factoryID}, &resp)
	return &resp, err
}

func (c *DaemonClient) SellFactory(ctx context.Context, player shared.PlayerID, factoryID string) (*SaleResponse, error) {
	var resp SaleResponse
	err := c.call(ctx, ActionSellFactory, ActionRequest{PlayerID: player.String(), FactoryID: factoryID}, &resp)
	return &resp, err
}

func (c *DaemonClient) StartProduction(ctx context.Context, player shared.PlayerID, factoryID, recipeID string) (*ProductionResponse, error) {
	var resp ProductionResponse
	err := c.call(ctx, ActionStartProduction, ActionRequest{PlayerID: player.String(), FactoryID: factoryID, RecipeID: recipeID}, &resp)
	return &resp, err
}

func (c *DaemonClient) StartUpgrade(ctx context.Context, player shared.PlayerID, factoryID string) (*UpgradeResponse, error) {
	var resp UpgradeResponse
	err := c.call(ctx, ActionStartUpgrade, ActionRequest{PlayerID: player.String(), FactoryID: factoryID}, &resp)
	return &resp, err
}

func (c *DaemonClient) PayTax(ctx context.Context, player shared.PlayerID, factoryID string) (*TaxPaymentResponse, error) {
	var resp TaxPaymentResponse
	err := c.call(ctx, ActionPayTax, ActionRequest{PlayerID: player.String(), FactoryID: factoryID}, &resp)
	return &resp, err
}

func (c *DaemonClient) PayAllTaxes(ctx context.Context, player shared.PlayerID) (*PayAllResponse, error) {
	var resp PayAllResponse
	err := c.call(ctx, ActionPayAllTaxes, ActionRequest{PlayerID: player.String()}, &resp)
	return &resp, err
}

func (c *DaemonClient) PayInvoice(ctx context.Context, player shared.PlayerID, invoiceID uuid.UUID) (*InvoicePaymentResponse, error) {
	var resp InvoicePaymentResponse
	err := c.call(ctx, ActionPayInvoice, ActionRequest{PlayerID: player.String(), InvoiceID: invoiceID.String()}, &resp)
	return &resp, err
}

// call posts one action. Failed actions come back as *shared.DomainError when the
// daemon reported a code, so errors.Is works the same as in-process.
func (c *DaemonClient) call(ctx context.Context, action string, body ActionRequest, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ActionsPath+action, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach daemon at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
			return fmt.Errorf("daemon returned %s", resp.Status)
		}
		if e.Code != "" {
			return shared.NewDomainError(e.Kind, e.Code, e.Message)
		}
		return fmt.Errorf("daemon returned %s: %s", resp.Status, e.Message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", action, err)
	}
	return nil
}
