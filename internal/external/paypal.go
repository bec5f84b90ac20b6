package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"capsule/internal/types"
)

// tokenExpirySlack is subtracted from the advertised token lifetime so a
// token is refreshed before it can expire mid-request.
const tokenExpirySlack = 60 * time.Second

// PayPalConfig holds the configuration for creating a PayPalClient.
type PayPalConfig struct {
	ClientID  string
	Secret    types.SecretString
	BaseURL   string // e.g. https://api-m.sandbox.paypal.com
	ReturnURL string
	CancelURL string
	Logger    *slog.Logger
}

// PayPalClient drives the PayPal Subscriptions REST API for the checkout
// handshake: ensure a billing plan exists for the quoted price, create a
// subscription that the buyer must approve, and confirm the subscription
// after the buyer returns from approval.
//
// OAuth access tokens are obtained via the client-credentials grant and
// cached until shortly before expiry.
type PayPalClient struct {
	base    *BaseClient
	baseURL string
	cfg     PayPalConfig
	logger  *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPayPalClient creates a new PayPalClient.
func NewPayPalClient(httpClient *http.Client, cfg PayPalConfig) *PayPalClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(
		httpClient,
		"paypal",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		"Capsule-Pricing/1.0",
	)

	return &PayPalClient{
		base:    base,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		cfg:     cfg,
		logger:  logger,
	}
}

// BillingPlanRequest describes the recurring plan to ensure on the provider
// side. MonthlyAmount is the discounted per-month price for the whole seat
// block.
type BillingPlanRequest struct {
	PlanName      string
	Context       types.PurchaseContext
	MonthlyAmount types.Money
	Months        int
	Currency      string
}

// SubscriptionHandle is returned by CreateSubscription and carries the
// provider subscription ID plus the URL the buyer must visit to approve
// the payment.
type SubscriptionHandle struct {
	SubscriptionID string
	ApprovalURL    string
}

// EnsureBillingPlan creates (or reuses) a provider billing plan matching the
// quoted monthly amount and returns its provider ID.
func (c *PayPalClient) EnsureBillingPlan(ctx context.Context, req BillingPlanRequest) (string, error) {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	payload := map[string]any{
		"product_id": productIDFor(req.Context),
		"name":       fmt.Sprintf("Capsule %s (%s, %d mo)", req.PlanName, req.Context, req.Months),
		"billing_cycles": []map[string]any{
			{
				"frequency": map[string]any{
					"interval_unit":  "MONTH",
					"interval_count": 1,
				},
				"tenure_type":  "REGULAR",
				"sequence":     1,
				"total_cycles": req.Months,
				"pricing_scheme": map[string]any{
					"fixed_price": map[string]string{
						"value":         req.MonthlyAmount.String(),
						"currency_code": currency,
					},
				},
			},
		},
		"payment_preferences": map[string]any{
			"auto_bill_outstanding": true,
			"payment_failure_threshold": 1,
		},
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/billing/plans", payload, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", types.NewAppError(types.ErrCodeUpstreamPayment, "billing plan response missing id", nil)
	}

	c.logger.Info("billing plan ensured",
		slog.String("plan", req.PlanName),
		slog.String("provider_plan_id", result.ID),
	)
	return result.ID, nil
}

// CreateSubscription creates a subscription on the given provider plan and
// returns the handle the buyer must approve. The purchase ID is threaded
// through as custom_id so provider events can be correlated back.
func (c *PayPalClient) CreateSubscription(ctx context.Context, providerPlanID, purchaseID string) (*SubscriptionHandle, error) {
	payload := map[string]any{
		"plan_id":   providerPlanID,
		"custom_id": purchaseID,
		"application_context": map[string]string{
			"return_url":  c.cfg.ReturnURL,
			"cancel_url":  c.cfg.CancelURL,
			"user_action": "SUBSCRIBE_NOW",
		},
	}

	var result struct {
		ID    string `json:"id"`
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/billing/subscriptions", payload, &result); err != nil {
		return nil, err
	}
	if result.ID == "" {
		return nil, types.NewAppError(types.ErrCodeUpstreamPayment, "subscription response missing id", nil)
	}

	var approvalURL string
	for _, link := range result.Links {
		if link.Rel == "approve" {
			approvalURL = link.Href
			break
		}
	}
	if approvalURL == "" {
		return nil, types.NewAppError(types.ErrCodeUpstreamPayment, "subscription response missing approval link", nil)
	}

	return &SubscriptionHandle{
		SubscriptionID: result.ID,
		ApprovalURL:    approvalURL,
	}, nil
}

// ConfirmSubscription fetches the subscription and reports whether the buyer
// completed approval. It returns true when the subscription is active, false
// with a nil error when the provider reports a terminal failure state, and an
// error for indeterminate states or transport failures.
func (c *PayPalClient) ConfirmSubscription(ctx context.Context, subscriptionID string) (bool, error) {
	var result struct {
		Status string `json:"status"`
	}
	path := "/v1/billing/subscriptions/" + url.PathEscape(subscriptionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return false, err
	}

	switch result.Status {
	case "ACTIVE":
		return true, nil
	case "CANCELLED", "EXPIRED", "SUSPENDED":
		return false, nil
	default:
		// APPROVAL_PENDING and other intermediate states: the buyer has not
		// finished approving yet.
		return false, types.NewAppError(
			types.ErrCodePaymentDeclined,
			fmt.Sprintf("subscription is not active (status=%s)", result.Status),
			nil,
		)
	}
}

// doJSON performs an authenticated JSON request against the PayPal API and
// decodes the response into out. A 401 triggers one token refresh and retry.
func (c *PayPalClient) doJSON(ctx context.Context, method, path string, payload, out any) error {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.token(ctx, attempt > 0)
		if err != nil {
			return err
		}

		var body io.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			if err != nil {
				return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode request payload", err)
			}
			body = bytes.NewReader(raw)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build request", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.base.Do(req)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			continue
		}

		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			c.logger.Warn("paypal API error",
				slog.String("path", path),
				slog.Int("status", resp.StatusCode),
				slog.String("body", string(snippet)),
			)
			return types.NewAppError(
				types.ErrCodeUpstreamPayment,
				fmt.Sprintf("paypal returned %d for %s", resp.StatusCode, path),
				nil,
			)
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return types.NewAppError(types.ErrCodeUpstreamPayment, "failed to decode paypal response", err)
			}
		}
		return nil
	}

	return types.NewAppError(types.ErrCodeUpstreamPayment, "paypal authentication failed after refresh", nil)
}

// token returns a cached OAuth access token, refreshing it when absent,
// expired, or when force is set.
func (c *PayPalClient) token(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build token request", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.Secret.Unmask())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.base.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", types.NewAppError(
			types.ErrCodeUpstreamPayment,
			fmt.Sprintf("paypal token endpoint returned %d", resp.StatusCode),
			nil,
		)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", types.NewAppError(types.ErrCodeUpstreamPayment, "failed to decode token response", err)
	}
	if tokenResp.AccessToken == "" {
		return "", types.NewAppError(types.ErrCodeUpstreamPayment, "token response missing access_token", nil)
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - tokenExpirySlack)

	return c.accessToken, nil
}

// productIDFor maps a purchase context onto the pre-provisioned provider
// product the billing plans hang off.
func productIDFor(ctx types.PurchaseContext) string {
	if ctx == types.ContextBusiness {
		return "CAPSULE-BUSINESS"
	}
	return "CAPSULE-PERSONAL"
}
