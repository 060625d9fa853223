package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"multibroker-console/internal/actionlog"
	"multibroker-console/internal/backend"
	"multibroker-console/internal/backend/backendobs"
	"multibroker-console/internal/interfaces"
	"multibroker-console/internal/logger"
	"multibroker-console/internal/poller"
	"multibroker-console/internal/store"
	"multibroker-console/internal/trace"
	"multibroker-console/internal/types"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	cfg, err := store.LoadConfig(configPath())
	must(err)

	must(logger.Init())
	must(trace.Init())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer trace.Shutdown(context.Background())

	alog := actionlog.New(cfg.ActionLog.Dir)
	_ = alog.CompressOlder(cfg.ActionLog.RetentionDays)

	var be interfaces.Backend = backend.NewClient(backend.Config{
		BaseURL:       cfg.Backend.BaseURL,
		Timeout:       time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
		RetryAttempts: cfg.Backend.RetryAttempts,
		SearchRate:    cfg.Search.RatePerSecond,
		SearchBurst:   cfg.Search.Burst,
		MaxResults:    cfg.Search.MaxResults,
	})
	be = backendobs.Wrap(be)

	must(be.Login(ctx, os.Getenv("CONSOLE_USERNAME"), os.Getenv("CONSOLE_PASSWORD")))
	defer be.Logout(context.Background())

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	pollers := buildPollers(cfg, be)

	var wg sync.WaitGroup
	for _, run := range pollers {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(ctx)
		}(run)
	}

	logger.Info(ctx, "Console started", "backend", cfg.Backend.BaseURL)
	<-sigc
	logger.Info(ctx, "Shutting down")
	cancel()
	wg.Wait()
}

func configPath() string {
	if v := os.Getenv("CONSOLE_CONFIG"); v != "" {
		return v
	}
	return "config.yaml"
}

func buildPollers(cfg *store.Config, be interfaces.Backend) []func(context.Context) {
	sec := func(n int) time.Duration { return time.Duration(n) * time.Second }

	orders := poller.New("orders", sec(cfg.Poll.OrdersSeconds),
		func(ctx context.Context) (*types.OrderBook, error) { return be.Orders(ctx) },
		func(b *types.OrderBook) {
			logger.Info(context.Background(), "Order book updated",
				"pending", len(b.Pending), "traded", len(b.Traded))
		},
	)
	positions := poller.New("positions", sec(cfg.Poll.PositionsSeconds),
		func(ctx context.Context) (*types.PositionBook, error) { return be.Positions(ctx) },
		func(b *types.PositionBook) {
			logger.Info(context.Background(), "Position book updated",
				"open", len(b.Open), "closed", len(b.Closed))
		},
	)
	holdings := poller.New("holdings", sec(cfg.Poll.HoldingsSeconds),
		func(ctx context.Context) ([]types.Holding, error) { return be.Holdings(ctx) },
		func(h []types.Holding) {
			logger.Info(context.Background(), "Holdings updated", "count", len(h))
		},
	)
	summary := poller.New("summary", sec(cfg.Poll.SummarySeconds),
		func(ctx context.Context) ([]types.SummaryRow, error) { return be.Summary(ctx) },
		func(rows []types.SummaryRow) {
			logger.Info(context.Background(), "Summary updated", "accounts", len(rows))
		},
	)

	return []func(context.Context){orders.Run, positions.Run, holdings.Run, summary.Run}
}
