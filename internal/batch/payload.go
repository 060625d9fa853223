package batch

import (
	"strings"

	"multibroker-console/internal/types"
)

// ModifyOrderPayload is one order's modify request body. Pointer fields with
// omitempty keep blank form fields out of the JSON entirely: the backend
// treats an absent field as "no change", which is not the same as zero.
type ModifyOrderPayload struct {
	Name         string   `json:"name"`
	Symbol       string   `json:"symbol"`
	OrderID      string   `json:"order_id"`
	ClientID     string   `json:"client_id,omitempty"`
	Broker       string   `json:"broker,omitempty"`
	OrderType    string   `json:"ordertype,omitempty"`
	Quantity     *int     `json:"quantity,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	TriggerPrice *float64 `json:"triggerprice,omitempty"`
}

// ModifyOrderRequest is the POST /modify_order body.
type ModifyOrderRequest struct {
	Order ModifyOrderPayload `json:"order"`
}

// BuildModifyRequests emits one request per order in the target, each
// carrying the row's own identity plus broker/client tags only when the
// source row had them, plus the shared changes. Pure transformation; nothing
// is dispatched here.
func BuildModifyRequests(t *ModifyTarget) []ModifyOrderRequest {
	reqs := make([]ModifyOrderRequest, 0, len(t.Orders))
	for _, o := range t.Orders {
		p := ModifyOrderPayload{
			Name:     o.Name,
			Symbol:   o.Symbol,
			OrderID:  o.OrderID,
			ClientID: o.ClientID,
			Broker:   o.Broker,
		}
		if t.Changes.OrderType != "" && t.Changes.OrderType != NoChange {
			p.OrderType = t.Changes.OrderType
		}
		p.Quantity = t.Changes.Quantity
		p.Price = t.Changes.Price
		p.TriggerPrice = t.Changes.TriggerPrice
		reqs = append(reqs, ModifyOrderRequest{Order: p})
	}
	return reqs
}

type CancelOrderItem struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	OrderID  string `json:"order_id"`
	ClientID string `json:"client_id,omitempty"`
	Broker   string `json:"broker,omitempty"`
}

// CancelOrderRequest is the POST /cancel_order body: one request carrying
// every selected order.
type CancelOrderRequest struct {
	Orders []CancelOrderItem `json:"orders"`
}

func BuildCancelRequest(rows []types.Order) CancelOrderRequest {
	items := make([]CancelOrderItem, 0, len(rows))
	for _, o := range rows {
		items = append(items, CancelOrderItem{
			Name:     o.Name,
			Symbol:   o.Symbol,
			OrderID:  o.OrderID,
			ClientID: o.ClientID,
			Broker:   o.Broker,
		})
	}
	return CancelOrderRequest{Orders: items}
}

type ClosePositionItem struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Quantity        int    `json:"quantity"`
	TransactionType string `json:"transaction_type"`
	ClientID        string `json:"client_id,omitempty"`
	Broker          string `json:"broker,omitempty"`
}

// ClosePositionRequest is the POST /close_position body.
type ClosePositionRequest struct {
	Positions []ClosePositionItem `json:"positions"`
}

// BuildCloseRequest converts the snapshot to closing orders built from the
// structured rows: absolute quantity, transaction side flipped (long
// positions are sold, shorts bought back).
func BuildCloseRequest(t *CloseTarget) ClosePositionRequest {
	items := make([]ClosePositionItem, 0, len(t.Positions))
	for _, p := range t.Positions {
		qty := p.Quantity
		side := "SELL"
		if qty < 0 {
			qty = -qty
			side = "BUY"
		}
		items = append(items, ClosePositionItem{
			Name:            p.Name,
			Symbol:          p.Symbol,
			Quantity:        qty,
			TransactionType: side,
			ClientID:        p.ClientID,
			Broker:          p.Broker,
		})
	}
	return ClosePositionRequest{Positions: items}
}

// SaveCopySetupRequest is the POST /save_copytrading_setup body. Enabled is
// a pointer: creating a setup saves it disabled, editing leaves the flag
// untouched by omitting it.
type SaveCopySetupRequest struct {
	ID          string             `json:"id,omitempty"`
	Name        string             `json:"name"`
	Master      string             `json:"master"`
	Children    []string           `json:"children"`
	Multipliers map[string]float64 `json:"multipliers"`
	Enabled     *bool              `json:"enabled,omitempty"`
}

// BuildCopySetupRequest emits a single request carrying the full
// member/multiplier map.
func BuildCopySetupRequest(s *types.CopySetup) SaveCopySetupRequest {
	req := SaveCopySetupRequest{
		ID:          s.ID,
		Name:        s.Name,
		Master:      s.Master,
		Children:    append([]string(nil), s.Children...),
		Multipliers: make(map[string]float64, len(s.Multipliers)),
	}
	for id, m := range s.Multipliers {
		req.Multipliers[id] = m
	}
	if s.ID == "" {
		disabled := false
		req.Enabled = &disabled
	}
	return req
}

// SaveGroupRequest is the POST /add_group and /edit_group body.
type SaveGroupRequest struct {
	ID         string              `json:"id,omitempty"`
	Name       string              `json:"name"`
	Multiplier float64             `json:"multiplier"`
	Members    []types.GroupMember `json:"members"`
}

func BuildGroupRequest(g *types.Group) SaveGroupRequest {
	return SaveGroupRequest{
		ID:         g.ID,
		Name:       g.Name,
		Multiplier: g.Multiplier,
		Members:    append([]types.GroupMember(nil), g.Members...),
	}
}

// PlaceForm is the raw trade-ticket state, one field per form control.
type PlaceForm struct {
	Action            string
	OrderType         string
	ProductType       string
	Duration          string
	Exchange          string
	Symbol            string
	Price             string
	TriggerPrice      string
	DisclosedQuantity string
	Quantity          string
	AMO               bool
	GroupAccount      bool
	DifferentQty      bool
	Multiplier        bool
	QtySelection      string
	Clients           []string
	Groups            []string
	PerClientQty      map[string]string
	PerGroupQty       map[string]string
}

// PlaceOrderRequest is the POST /place_order body.
type PlaceOrderRequest struct {
	GroupAccount      bool           `json:"groupacc"`
	Groups            []string       `json:"groups"`
	Clients           []string       `json:"clients"`
	Action            string         `json:"action"`
	OrderType         string         `json:"ordertype"`
	ProductType       string         `json:"producttype"`
	OrderDuration     string         `json:"orderduration"`
	Exchange          string         `json:"exchange"`
	Symbol            string         `json:"symbol"`
	Price             float64        `json:"price"`
	TriggerPrice      float64        `json:"triggerprice"`
	DisclosedQuantity int            `json:"disclosedquantity"`
	AMOOrder          string         `json:"amoorder"`
	QtySelection      string         `json:"qtySelection"`
	QuantityInLot     int            `json:"quantityinlot"`
	PerClientQty      map[string]int `json:"perClientQty"`
	PerGroupQty       map[string]int `json:"perGroupQty"`
	DifferentQty      bool           `json:"diffQty"`
	Multiplier        bool           `json:"multiplier"`
}

// ValidatePlace checks a trade ticket and builds the request. MARKET orders
// force price to zero; stop orders require a positive trigger; per-account
// quantities left blank default to 1.
func ValidatePlace(form PlaceForm) (*PlaceOrderRequest, error) {
	if !form.GroupAccount && len(form.Clients) == 0 {
		return nil, errKind(EmptySelection, "select at least one client")
	}
	if form.GroupAccount && len(form.Groups) == 0 {
		return nil, errKind(EmptySelection, "select at least one group")
	}
	if strings.TrimSpace(form.Symbol) == "" {
		return nil, errField(MissingRequiredField, "symbol", "select a symbol")
	}

	need := RequirementsFor(form.OrderType)

	price, verr := parsePositiveNumber("price", form.Price)
	if verr != nil {
		return nil, verr
	}
	trig, verr := parsePositiveNumber("triggerPrice", form.TriggerPrice)
	if verr != nil {
		return nil, verr
	}
	if need.Canon != Market && need.Price && price == nil {
		return nil, errField(MissingRequiredField, "price", need.Canon+" requires a price")
	}
	if need.Trigger && trig == nil {
		return nil, errField(MissingRequiredField, "triggerPrice", need.Canon+" requires a trigger price")
	}

	singleQty := !form.DifferentQty
	qty := 0
	if singleQty {
		n, verr := parsePositiveInt("quantity", form.Quantity)
		if verr != nil {
			return nil, verr
		}
		if n == nil {
			return nil, errField(MissingRequiredField, "quantity", "quantity is required")
		}
		qty = *n
	}

	req := &PlaceOrderRequest{
		GroupAccount:  form.GroupAccount,
		Groups:        append([]string(nil), form.Groups...),
		Clients:       append([]string(nil), form.Clients...),
		Action:        strings.ToUpper(form.Action),
		OrderType:     need.Canon,
		ProductType:   form.ProductType,
		OrderDuration: form.Duration,
		Exchange:      strings.ToUpper(form.Exchange),
		Symbol:        form.Symbol,
		AMOOrder:      "N",
		QtySelection:  form.QtySelection,
		QuantityInLot: qty,
		PerClientQty:  map[string]int{},
		PerGroupQty:   map[string]int{},
		DifferentQty:  form.DifferentQty,
		Multiplier:    form.Multiplier,
	}
	if form.AMO {
		req.AMOOrder = "Y"
	}
	if need.Canon != Market && price != nil {
		req.Price = *price
	}
	if trig != nil {
		req.TriggerPrice = *trig
	}
	if n, verr := parsePositiveInt("disclosedQuantity", form.DisclosedQuantity); verr == nil && n != nil {
		req.DisclosedQuantity = *n
	}

	if form.DifferentQty && !form.GroupAccount {
		for _, cid := range form.Clients {
			req.PerClientQty[cid] = intOrDefault(form.PerClientQty[cid], 1)
		}
	}
	if form.DifferentQty && form.GroupAccount {
		for _, g := range form.Groups {
			req.PerGroupQty[g] = intOrDefault(form.PerGroupQty[g], 1)
		}
	}
	return req, nil
}

func intOrDefault(raw string, def int) int {
	n, verr := parsePositiveInt("", raw)
	if verr != nil || n == nil {
		return def
	}
	return *n
}
