package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"multibroker-console/internal/api"
	"multibroker-console/internal/batch"
	"multibroker-console/internal/logger"
	"multibroker-console/internal/types"
)

// Client talks to the multi-broker router service. A single session token
// covers every broker account registered behind the router.
type Client struct {
	http        *api.Client
	retry       *api.RetryConfig
	searchLimit *rate.Limiter
	maxResults  int
	token       string
}

// Config holds client construction parameters.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts uint
	SearchRate    float64
	SearchBurst   int
	MaxResults    int
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.SearchRate == 0 {
		cfg.SearchRate = 4
	}
	if cfg.SearchBurst == 0 {
		cfg.SearchBurst = 2
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 25
	}
	retry := api.DefaultRetryConfig()
	if cfg.RetryAttempts > 0 {
		retry.MaxAttempts = cfg.RetryAttempts
	}
	return &Client{
		http: api.NewClient(
			api.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
			api.WithTimeout(cfg.Timeout),
			api.WithLogging(true),
		),
		retry:       retry,
		searchLimit: rate.NewLimiter(rate.Limit(cfg.SearchRate), cfg.SearchBurst),
		maxResults:  cfg.MaxResults,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a session token. The token rides on every
// subsequent request as X-Auth-Token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.http.POST(ctx, "/users/login", loginRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	var lr loginResponse
	if err := resp.ParseJSON(&lr); err != nil {
		return err
	}
	if lr.Token == "" {
		return fmt.Errorf("login response carried no token")
	}
	c.token = lr.Token
	c.http.SetHeader("X-Auth-Token", c.token)
	logger.Info(ctx, "Logged in to router", "username", username)
	return nil
}

// Register creates a console user on the router.
func (c *Client) Register(ctx context.Context, username, password string) error {
	_, err := c.http.POST(ctx, "/users/register", loginRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	c.token = ""
	c.http.SetHeader("X-Auth-Token", "")
	return nil
}

// getJSON runs a GET with retry and decodes the response.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req := api.NewRequest("GET", path).WithContext(ctx)
	resp, err := c.http.DoWithRetry(req, c.retry)
	if err != nil {
		return err
	}
	return resp.ParseJSON(out)
}

func (c *Client) Orders(ctx context.Context) (*types.OrderBook, error) {
	var book types.OrderBook
	if err := c.getJSON(ctx, "/get_orders", &book); err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return &book, nil
}

func (c *Client) Positions(ctx context.Context) (*types.PositionBook, error) {
	var book types.PositionBook
	if err := c.getJSON(ctx, "/get_positions", &book); err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}
	return &book, nil
}

func (c *Client) Holdings(ctx context.Context) ([]types.Holding, error) {
	var out struct {
		Holdings []types.Holding `json:"holdings"`
	}
	if err := c.getJSON(ctx, "/get_holdings", &out); err != nil {
		return nil, fmt.Errorf("fetch holdings: %w", err)
	}
	return out.Holdings, nil
}

func (c *Client) Summary(ctx context.Context) ([]types.SummaryRow, error) {
	var out struct {
		Summary []types.SummaryRow `json:"summary"`
	}
	if err := c.getJSON(ctx, "/get_summary", &out); err != nil {
		return nil, fmt.Errorf("fetch summary: %w", err)
	}
	return out.Summary, nil
}

func (c *Client) Clients(ctx context.Context) ([]types.Client, error) {
	var out struct {
		Clients []types.Client `json:"clients"`
	}
	if err := c.getJSON(ctx, "/get_clients", &out); err != nil {
		return nil, fmt.Errorf("fetch clients: %w", err)
	}
	return out.Clients, nil
}

// Order mutations are not retried: replaying a mutation that may have
// partially landed is worse than surfacing the failure.

func (c *Client) PlaceOrder(ctx context.Context, req *batch.PlaceOrderRequest) error {
	if _, err := c.http.POST(ctx, "/place_order", req); err != nil {
		return fmt.Errorf("place order: %w", err)
	}
	return nil
}

func (c *Client) ModifyOrder(ctx context.Context, req *batch.ModifyOrderRequest) error {
	if _, err := c.http.POST(ctx, "/modify_order", req); err != nil {
		return fmt.Errorf("modify order %s: %w", req.Order.OrderID, err)
	}
	return nil
}

func (c *Client) CancelOrders(ctx context.Context, req *batch.CancelOrderRequest) error {
	if _, err := c.http.POST(ctx, "/cancel_order", req); err != nil {
		return fmt.Errorf("cancel %d order(s): %w", len(req.Orders), err)
	}
	return nil
}

func (c *Client) ClosePositions(ctx context.Context, req *batch.ClosePositionRequest) error {
	if _, err := c.http.POST(ctx, "/close_position", req); err != nil {
		return fmt.Errorf("close %d position(s): %w", len(req.Positions), err)
	}
	return nil
}

func (c *Client) Groups(ctx context.Context) ([]types.Group, error) {
	var out struct {
		Groups []types.Group `json:"groups"`
	}
	if err := c.getJSON(ctx, "/groups", &out); err != nil {
		return nil, fmt.Errorf("fetch groups: %w", err)
	}
	return out.Groups, nil
}

func (c *Client) SaveGroup(ctx context.Context, req *batch.SaveGroupRequest) error {
	path := "/add_group"
	if req.ID != "" {
		path = "/edit_group"
	}
	if _, err := c.http.POST(ctx, path, req); err != nil {
		return fmt.Errorf("save group %q: %w", req.Name, err)
	}
	return nil
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

func (c *Client) DeleteGroups(ctx context.Context, names []string) error {
	if _, err := c.http.POST(ctx, "/delete_group", idsRequest{IDs: names}); err != nil {
		return fmt.Errorf("delete group(s): %w", err)
	}
	return nil
}

func (c *Client) CopySetups(ctx context.Context) ([]types.CopySetup, error) {
	var out struct {
		Setups []types.CopySetup `json:"setups"`
	}
	if err := c.getJSON(ctx, "/list_copytrading_setups", &out); err != nil {
		return nil, fmt.Errorf("fetch copy setups: %w", err)
	}
	return out.Setups, nil
}

func (c *Client) SaveCopySetup(ctx context.Context, req *batch.SaveCopySetupRequest) error {
	if _, err := c.http.POST(ctx, "/save_copytrading_setup", req); err != nil {
		return fmt.Errorf("save copy setup %q: %w", req.Name, err)
	}
	return nil
}

func (c *Client) DeleteCopySetups(ctx context.Context, ids []string) error {
	if _, err := c.http.POST(ctx, "/delete_copytrading_setup", idsRequest{IDs: ids}); err != nil {
		return fmt.Errorf("delete copy setup(s): %w", err)
	}
	return nil
}

func (c *Client) SetCopyEnabled(ctx context.Context, id string, enabled bool) error {
	path := "/disable_copy"
	if enabled {
		path = "/enable_copy"
	}
	if _, err := c.http.POST(ctx, path, idsRequest{IDs: []string{id}}); err != nil {
		return fmt.Errorf("toggle copy setup %s: %w", id, err)
	}
	return nil
}

type ltpResponse struct {
	LTP float64 `json:"ltp"`
}

func (c *Client) LTP(ctx context.Context, exchange, symbol string) (float64, error) {
	var out ltpResponse
	req := api.NewRequest("GET", "/ltp").WithContext(ctx).
		WithQuery("exchange", exchange).
		WithQuery("symbol", symbol)
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch LTP for %s: %w", symbol, err)
	}
	if err := resp.ParseJSON(&out); err != nil {
		return 0, err
	}
	return out.LTP, nil
}

// SearchSymbols is rate limited: the typeahead fires on every keystroke and
// the router throttles aggressive callers.
func (c *Client) SearchSymbols(ctx context.Context, exchange, query string) ([]types.SymbolHit, error) {
	if err := c.searchLimit.Wait(ctx); err != nil {
		return nil, err
	}
	var out struct {
		Results []types.SymbolHit `json:"results"`
	}
	req := api.NewRequest("GET", "/search_symbols").WithContext(ctx).
		WithQuery("exchange", exchange).
		WithQuery("q", query)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search symbols: %w", err)
	}
	if err := resp.ParseJSON(&out); err != nil {
		return nil, err
	}
	if len(out.Results) > c.maxResults {
		out.Results = out.Results[:c.maxResults]
	}
	return out.Results, nil
}
