package interfaces

import (
	"context"

	"multibroker-console/internal/batch"
	"multibroker-console/internal/types"
)

// Backend is the router service every broker session hangs off. One token,
// many broker accounts behind it.
type Backend interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error

	Orders(ctx context.Context) (*types.OrderBook, error)
	Positions(ctx context.Context) (*types.PositionBook, error)
	Holdings(ctx context.Context) ([]types.Holding, error)
	Summary(ctx context.Context) ([]types.SummaryRow, error)
	Clients(ctx context.Context) ([]types.Client, error)

	PlaceOrder(ctx context.Context, req *batch.PlaceOrderRequest) error
	ModifyOrder(ctx context.Context, req *batch.ModifyOrderRequest) error
	CancelOrders(ctx context.Context, req *batch.CancelOrderRequest) error
	ClosePositions(ctx context.Context, req *batch.ClosePositionRequest) error

	Groups(ctx context.Context) ([]types.Group, error)
	SaveGroup(ctx context.Context, req *batch.SaveGroupRequest) error
	DeleteGroups(ctx context.Context, names []string) error

	CopySetups(ctx context.Context) ([]types.CopySetup, error)
	SaveCopySetup(ctx context.Context, req *batch.SaveCopySetupRequest) error
	DeleteCopySetups(ctx context.Context, ids []string) error
	SetCopyEnabled(ctx context.Context, id string, enabled bool) error

	LTP(ctx context.Context, exchange, symbol string) (float64, error)
	SearchSymbols(ctx context.Context, exchange, query string) ([]types.SymbolHit, error)
}
