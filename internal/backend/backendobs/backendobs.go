package backendobs

import (
	"context"

	"multibroker-console/internal/batch"
	"multibroker-console/internal/interfaces"
	"multibroker-console/internal/logger"
	"multibroker-console/internal/trace"
	"multibroker-console/internal/types"
)

// observableBackend wraps a Backend with observability (logging & tracing)
type observableBackend struct {
	backend interfaces.Backend
}

// Compile-time interface check
var _ interfaces.Backend = (*observableBackend)(nil)

// Wrap wraps a backend with observability middleware
func Wrap(backend interfaces.Backend) interfaces.Backend {
	return &observableBackend{
		backend: backend,
	}
}

func (ob *observableBackend) Login(ctx context.Context, username, password string) error {
	ctx, span := trace.StartSpan(ctx, "backend.Login")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Logging in", "username", username)

	err := ob.backend.Login(ctx, username, password)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Login failed", err, "username", username)
		return err
	}

	logger.InfoSkip(ctx, 1, "Login succeeded", "username", username)
	return nil
}

func (ob *observableBackend) Logout(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "backend.Logout")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Logging out")
	return ob.backend.Logout(ctx)
}

func (ob *observableBackend) Orders(ctx context.Context) (*types.OrderBook, error) {
	ctx, span := trace.StartSpan(ctx, "backend.Orders")
	defer span.End()

	book, err := ob.backend.Orders(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch orders", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Orders fetched",
		"pending", len(book.Pending),
		"traded", len(book.Traded),
		"rejected", len(book.Rejected),
		"cancelled", len(book.Cancelled),
	)
	return book, nil
}

func (ob *observableBackend) Positions(ctx context.Context) (*types.PositionBook, error) {
	ctx, span := trace.StartSpan(ctx, "backend.Positions")
	defer span.End()

	book, err := ob.backend.Positions(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch positions", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Positions fetched", "open", len(book.Open), "closed", len(book.Closed))
	return book, nil
}

func (ob *observableBackend) Holdings(ctx context.Context) ([]types.Holding, error) {
	ctx, span := trace.StartSpan(ctx, "backend.Holdings")
	defer span.End()

	holdings, err := ob.backend.Holdings(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch holdings", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Holdings fetched", "count", len(holdings))
	return holdings, nil
}

func (ob *observableBackend) Summary(ctx context.Context) ([]types.SummaryRow, error) {
	ctx, span := trace.StartSpan(ctx, "backend.Summary")
	defer span.End()

	rows, err := ob.backend.Summary(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch summary", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Summary fetched", "accounts", len(rows))
	return rows, nil
}

func (ob *observableBackend) Clients(ctx context.Context) ([]types.Client, error) {
	ctx, span := trace.StartSpan(ctx, "backend.Clients")
	defer span.End()

	clients, err := ob.backend.Clients(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch clients", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Clients fetched", "count", len(clients))
	return clients, nil
}

func (ob *observableBackend) PlaceOrder(ctx context.Context, req *batch.PlaceOrderRequest) error {
	ctx, span := trace.StartSpan(ctx, "backend.PlaceOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"symbol", req.Symbol,
		"action", req.Action,
		"ordertype", req.OrderType,
		"exchange", req.Exchange,
	)

	err := ob.backend.PlaceOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"symbol", req.Symbol,
			"action", req.Action,
		)
		return err
	}

	logger.InfoSkip(ctx, 1, "Order placed", "symbol", req.Symbol, "action", req.Action)
	return nil
}

func (ob *observableBackend) ModifyOrder(ctx context.Context, req *batch.ModifyOrderRequest) error {
	ctx, span := trace.StartSpan(ctx, "backend.ModifyOrder")
	defer span.End()

	err := ob.backend.ModifyOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to modify order", err, "order_id", req.Order.OrderID)
		return err
	}

	logger.Order(ctx, "MODIFY", req.Order.OrderID, req.Order.Symbol)
	return nil
}

func (ob *observableBackend) CancelOrders(ctx context.Context, req *batch.CancelOrderRequest) error {
	ctx, span := trace.StartSpan(ctx, "backend.CancelOrders")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Cancelling orders", "count", len(req.Orders))

	err := ob.backend.CancelOrders(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to cancel orders", err, "count", len(req.Orders))
		return err
	}

	for _, o := range req.Orders {
		logger.Order(ctx, "CANCEL", o.OrderID, o.Symbol)
	}
	return nil
}

func (ob *observableBackend) ClosePositions(ctx context.Context, req *batch.ClosePositionRequest) error {
	ctx, span := trace.StartSpan(ctx, "backend.ClosePositions")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Closing positions", "count", len(req.Positions))

	err := ob.backend.ClosePositions(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to close positions", err, "count", len(req.Positions))
		return err
	}

	for _, p := range req.Positions {
		logger.Order(ctx, "CLOSE", "", p.Symbol, "side", p.TransactionType, "qty", p.Quantity)
	}
	return nil
}

func (ob *observableBackend) Groups(ctx context.Context) ([]types.Group, error) {
	ctx, span := trace.StartSpan(ctx, "backend.Groups")
	defer span.End()

	groups, err := ob.backend.Groups(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch groups", err)
		return nil, err
	}
	return groups, nil
}

func (ob *observableBackend) SaveGroup(ctx context.Context, req *batch.SaveGroupRequest) error {
	ctx, span := trace.StartSpan(ctx, "backend.SaveGroup")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Saving group", "name", req.Name, "members", len(req.Members))

	err := ob.backend.SaveGroup(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to save group", err, "name", req.Name)
		return err
	}
	return nil
}

func (ob *observableBackend) DeleteGroups(ctx context.Context, names []string) error {
	ctx, span := trace.StartSpan(ctx, "backend.DeleteGroups")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Deleting groups", "names", names)

	err := ob.backend.DeleteGroups(ctx, names)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to delete groups", err, "names", names)
		return err
	}
	return nil
}

func (ob *observableBackend) CopySetups(ctx context.Context) ([]types.CopySetup, error) {
	ctx, span := trace.StartSpan(ctx, "backend.CopySetups")
	defer span.End()

	setups, err := ob.backend.CopySetups(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch copy setups", err)
		return nil, err
	}
	return setups, nil
}

func (ob *observableBackend) SaveCopySetup(ctx context.Context, req *batch.SaveCopySetupRequest) error {
	ctx, span := trace.StartSpan(ctx, "backend.SaveCopySetup")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Saving copy setup",
		"name", req.Name,
		"master", req.Master,
		"children", len(req.Children),
	)

	err := ob.backend.SaveCopySetup(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to save copy setup", err, "name", req.Name)
		return err
	}
	return nil
}

func (ob *observableBackend) DeleteCopySetups(ctx context.Context, ids []string) error {
	ctx, span := trace.StartSpan(ctx, "backend.DeleteCopySetups")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Deleting copy setups", "ids", ids)

	err := ob.backend.DeleteCopySetups(ctx, ids)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to delete copy setups", err, "ids", ids)
		return err
	}
	return nil
}

func (ob *observableBackend) SetCopyEnabled(ctx context.Context, id string, enabled bool) error {
	ctx, span := trace.StartSpan(ctx, "backend.SetCopyEnabled")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Toggling copy setup", "id", id, "enabled", enabled)

	err := ob.backend.SetCopyEnabled(ctx, id, enabled)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to toggle copy setup", err, "id", id)
		return err
	}
	return nil
}

func (ob *observableBackend) LTP(ctx context.Context, exchange, symbol string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "backend.LTP")
	defer span.End()

	price, err := ob.backend.LTP(ctx, exchange, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch LTP", err, "symbol", symbol)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "LTP fetched", "symbol", symbol, "price", price)
	return price, nil
}

func (ob *observableBackend) SearchSymbols(ctx context.Context, exchange, query string) ([]types.SymbolHit, error) {
	ctx, span := trace.StartSpan(ctx, "backend.SearchSymbols")
	defer span.End()

	hits, err := ob.backend.SearchSymbols(ctx, exchange, query)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Symbol search failed", err, "query", query)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Symbol search completed", "query", query, "hits", len(hits))
	return hits, nil
}
