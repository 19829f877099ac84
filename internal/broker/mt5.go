package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Trader/config"
	platformhttp "github.com/Alias1177/Trader/internal/platform/http"
	"github.com/Alias1177/Trader/models"
)

// MT5Adapter delegates order execution to the terminal bridge process over
// HTTP. Placement requests are sent exactly once: a rejected or timed-out
// order must surface as a failure, never be silently retried, because the
// bridge may already have filled it.
type MT5Adapter struct {
	baseURL    string
	login      string
	server     string
	httpClient *http.Client
	status     *platformhttp.Client
	logger     zerolog.Logger
}

// bridgeExecuteRequest mirrors the bridge /execute payload.
type bridgeExecuteRequest struct {
	Symbol  string  `json:"symbol"`
	Action  string  `json:"action"`
	Volume  float64 `json:"volume"`
	SL      float64 `json:"sl,omitempty"`
	TP      float64 `json:"tp,omitempty"`
	Comment string  `json:"comment,omitempty"`
}

// bridgeResult mirrors the bridge /execute and /close_position responses.
type bridgeResult struct {
	Success bool    `json:"success"`
	Order   int64   `json:"order,omitempty"`
	Deal    int64   `json:"deal,omitempty"`
	Price   float64 `json:"price,omitempty"`
	Volume  float64 `json:"volume,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// bridgeStatus mirrors the bridge /status response.
type bridgeStatus struct {
	Connected    bool    `json:"connected"`
	TradeAllowed bool    `json:"trade_allowed"`
	Balance      float64 `json:"balance,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// NewMT5Adapter builds the bridge adapter from account credentials. The
// bridge host, port, login and server are all required.
func NewMT5Adapter(creds models.BrokerCredentials, cfg *config.Config) (*MT5Adapter, error) {
	if creds.Host == "" || creds.Port == "" || creds.Login == "" || creds.Server == "" {
		return nil, models.Errf(models.KindInvalidArgument,
			"incomplete MT5 credentials: %s", creds.Redacted())
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second

	return &MT5Adapter{
		baseURL:    fmt.Sprintf("http://%s:%s", creds.Host, creds.Port),
		login:      creds.Login,
		server:     creds.Server,
		httpClient: &http.Client{Timeout: timeout},
		status:     platformhttp.NewClient(platformhttp.ClientOptions{Timeout: timeout}),
		logger:     log.With().Str("component", "mt5_adapter").Logger(),
	}, nil
}

func (a *MT5Adapter) Name() string { return "mt5" }

// Place sends the order to the bridge /execute endpoint. Non-2xx responses
// and timeouts come back as failed results with the raw error surfaced.
func (a *MT5Adapter) Place(ctx context.Context, req *PlaceRequest) (*Result, error) {
	if req.Volume.LessThanOrEqual(decimal.Zero) {
		return nil, models.Errf(models.KindInvalidArgument, "non-positive volume %s", req.Volume)
	}

	volume, _ := req.Volume.Float64()
	sl, _ := req.StopLoss.Float64()
	tp, _ := req.TakeProfit.Float64()

	payload := bridgeExecuteRequest{
		Symbol:  req.Symbol,
		Action:  string(req.Action),
		Volume:  volume,
		SL:      sl,
		TP:      tp,
		Comment: req.Comment,
	}

	res, err := a.post(ctx, "/execute", payload)
	if err != nil {
		a.logger.Warn().Err(err).Str("symbol", req.Symbol).Msg("Bridge execute failed")
		return &Result{Success: false, Error: err.Error()}, nil
	}

	if !res.Success {
		return &Result{Success: false, Error: res.Error}, nil
	}

	return &Result{
		Success:        true,
		Ticket:         fmt.Sprintf("%d", res.Order),
		ExecutionPrice: decimal.NewFromFloat(res.Price),
		// The bridge reports neither commission nor swap at fill time
		Commission: decimal.Zero,
		Swap:       decimal.Zero,
	}, nil
}

// Close exits the position behind ticket via /close_position.
func (a *MT5Adapter) Close(ctx context.Context, ticket string, volume decimal.Decimal) (*Result, error) {
	if ticket == "" {
		return nil, models.Errf(models.KindInvalidArgument, "ticket is required")
	}

	body := map[string]any{"ticket": ticket}
	if !volume.IsZero() {
		v, _ := volume.Float64()
		body["volume"] = v
	}

	res, err := a.post(ctx, "/close_position", body)
	if err != nil {
		a.logger.Warn().Err(err).Str("ticket", ticket).Msg("Bridge close failed")
		return &Result{Success: false, Error: err.Error()}, nil
	}

	if !res.Success {
		return &Result{Success: false, Error: res.Error}, nil
	}

	return &Result{
		Success:        true,
		Ticket:         fmt.Sprintf("%d", res.Deal),
		ExecutionPrice: decimal.NewFromFloat(res.Price),
		Commission:     decimal.Zero,
		Swap:           decimal.Zero,
	}, nil
}

// Healthy probes the bridge /status endpoint. Status reads are idempotent,
// so this path may retry.
func (a *MT5Adapter) Healthy(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/status", nil)
	if err != nil {
		return false, fmt.Errorf("creating status request: %w", err)
	}

	resp, err := a.status.DoRequest(ctx, req)
	if err != nil {
		return false, fmt.Errorf("bridge status: %w", err)
	}
	defer resp.Body.Close()

	var st bridgeStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return false, fmt.Errorf("decoding status: %w", err)
	}
	return st.Connected && st.TradeAllowed, nil
}

// post sends one JSON request to the bridge without retries.
func (a *MT5Adapter) post(ctx context.Context, path string, payload any) (*bridgeResult, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding bridge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("creating bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading bridge response: %w", err)
	}

	var res bridgeResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decoding bridge response (status %d): %s", resp.StatusCode, string(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if res.Error != "" {
			return nil, fmt.Errorf("bridge returned %d: %s", resp.StatusCode, res.Error)
		}
		return nil, fmt.Errorf("bridge returned %d: %s", resp.StatusCode, string(body))
	}

	return &res, nil
}
