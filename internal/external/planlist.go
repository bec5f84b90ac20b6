package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"capsule/internal/types"
)

// maxPlanListBody caps how much of the plan service response is read.
const maxPlanListBody = 1 << 20 // 1 MB

// PlanServiceConfig holds the configuration for creating a PlanServiceClient.
type PlanServiceConfig struct {
	BaseURL   string
	UserAgent string
	Logger    *slog.Logger
}

// PlanServiceClient fetches the published subscription plan list from the
// backend catalog service. Responses feed the plan resolver; callers are
// expected to fall back to the built-in tables when a fetch fails, so every
// error returned here is advisory rather than fatal.
type PlanServiceClient struct {
	base    *BaseClient
	baseURL string
	logger  *slog.Logger
}

// NewPlanServiceClient creates a new PlanServiceClient. The httpClient timeout
// bounds each fetch; the retry policy is deliberately short because the caller
// has a local fallback.
func NewPlanServiceClient(httpClient *http.Client, cfg PlanServiceConfig) *PlanServiceClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "Capsule-Pricing/1.0"
	}

	base := NewBaseClient(
		httpClient,
		"plan-catalog",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    250 * time.Millisecond,
			MaxWait:    2 * time.Second,
		},
		userAgent,
	)

	return &PlanServiceClient{
		base:    base,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:  logger,
	}
}

// planRecordPayload is the wire shape of a single plan row. The monthly token
// limit is nullable; rows with a null limit are administrative plans that the
// resolver ignores.
type planRecordPayload struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	MonthlyTokenLimit *int64  `json:"monthly_token_limit"`
	ContractMonth     int     `json:"contract_month"`
	PurchaseType      string  `json:"purchase_type"`
}

// planListResponse is the wire envelope returned by the catalog service.
type planListResponse struct {
	Plans []planRecordPayload `json:"plans"`
}

// FetchPlans retrieves the plan list for the given purchase context.
// The context parameter maps onto the service's purchase_type query value.
func (c *PlanServiceClient) FetchPlans(ctx context.Context, purchase types.PurchaseContext) ([]types.RemotePlanRecord, error) {
	url := fmt.Sprintf("%s/api/plans?purchase_type=%s", c.baseURL, purchase)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build plan list request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("plan service returned non-200",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, types.NewAppError(
			types.ErrCodeUpstreamPlanService,
			fmt.Sprintf("plan service returned %d", resp.StatusCode),
			nil,
		)
	}

	var payload planListResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPlanListBody)).Decode(&payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamPlanService, "failed to decode plan list response", err)
	}

	records := make([]types.RemotePlanRecord, 0, len(payload.Plans))
	for _, p := range payload.Plans {
		records = append(records, types.RemotePlanRecord{
			ID:                p.ID,
			Name:              p.Name,
			Price:             p.Price,
			MonthlyTokenLimit: p.MonthlyTokenLimit,
			ContractMonth:     p.ContractMonth,
		})
	}

	c.logger.Debug("fetched plan list",
		slog.String("purchase_type", string(purchase)),
		slog.Int("count", len(records)),
	)

	return records, nil
}
