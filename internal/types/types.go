package types

// Order is one row of the remote order book. Broker and ClientID are only
// present on multi-client deployments of the router.
type Order struct {
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	TransactionType string  `json:"transaction_type,omitempty"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	TriggerPrice    float64 `json:"triggerprice,omitempty"`
	Status          string  `json:"status"`
	OrderID         string  `json:"order_id"`
	Broker          string  `json:"broker,omitempty"`
	ClientID        string  `json:"client_id,omitempty"`
}

// OrderBook mirrors the GET /get_orders response buckets.
type OrderBook struct {
	Pending   []Order `json:"pending"`
	Traded    []Order `json:"traded"`
	Rejected  []Order `json:"rejected"`
	Cancelled []Order `json:"cancelled"`
	Others    []Order `json:"others"`
}

type Position struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Quantity  int     `json:"quantity"`
	BuyAvg    float64 `json:"buy_avg"`
	SellAvg   float64 `json:"sell_avg"`
	NetProfit float64 `json:"net_profit"`
	Broker    string  `json:"broker,omitempty"`
	ClientID  string  `json:"client_id,omitempty"`
}

type PositionBook struct {
	Open   []Position `json:"open"`
	Closed []Position `json:"closed"`
}

type Holding struct {
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Quantity int     `json:"quantity"`
	BuyAvg   float64 `json:"buy_avg"`
	LTP      float64 `json:"ltp"`
	PnL      float64 `json:"pnl"`
}

type SummaryRow struct {
	Name            string  `json:"name"`
	Capital         float64 `json:"capital"`
	Invested        float64 `json:"invested"`
	PnL             float64 `json:"pnl"`
	CurrentValue    float64 `json:"current_value"`
	AvailableMargin float64 `json:"available_margin"`
	NetGain         float64 `json:"net_gain"`
}

// Client is a broker login managed by the router for the current user.
type Client struct {
	Broker        string `json:"broker"`
	UserID        string `json:"userid"`
	DisplayName   string `json:"display_name"`
	Capital       string `json:"capital,omitempty"`
	SessionActive bool   `json:"session_active"`
}

type GroupMember struct {
	Broker string `json:"broker"`
	UserID string `json:"userid"`
}

// Group applies one shared quantity multiplier to all members.
type Group struct {
	ID         string        `json:"id,omitempty"`
	Name       string        `json:"name"`
	Multiplier float64       `json:"multiplier"`
	Members    []GroupMember `json:"members"`
}

// CopySetup replicates a master account's trades to child accounts at
// per-child multipliers.
type CopySetup struct {
	ID          string             `json:"id,omitempty"`
	Name        string             `json:"name"`
	Master      string             `json:"master"`
	Children    []string           `json:"children"`
	Multipliers map[string]float64 `json:"multipliers"`
	Enabled     bool               `json:"enabled"`
}

type SymbolHit struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Symbol string `json:"symbol,omitempty"`
}
