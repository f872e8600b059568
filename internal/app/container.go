// Package app wires configuration into the runtime dependency graph.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/friskawellness/billing-service/internal/cache"
	"github.com/friskawellness/billing-service/internal/config"
	"github.com/friskawellness/billing-service/internal/grid"
	"github.com/friskawellness/billing-service/internal/invoice"
	"github.com/friskawellness/billing-service/internal/observability"
	"github.com/friskawellness/billing-service/internal/redisclient"
	"github.com/friskawellness/billing-service/internal/services/billing"
	"github.com/friskawellness/billing-service/internal/services/ledger"
	"github.com/friskawellness/billing-service/internal/services/usage"
	"github.com/friskawellness/billing-service/internal/sheets"
)

// Container aggregates runtime dependencies for handlers and services.
type Container struct {
	Config        *config.Config
	Logger        *slog.Logger
	Redis         *redis.Client
	Sheets        *sheets.Client
	GridCache     *cache.GridCache
	Usage         *usage.Service
	Ledger        *ledger.Service
	Billing       *billing.Service
	Observability *observability.Provider
}

// Build constructs the full graph. Redis is optional: when the cache is
// disabled or unreachable the services run against the Sheets API directly.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	obs, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("setup observability: %w", err)
	}

	sheetsOpts := sheets.Options{Config: cfg.Sheets}
	if obs != nil {
		sheetsOpts.Metrics = obs
	}
	sheetsClient, err := sheets.New(ctx, sheetsOpts)
	if err != nil {
		return nil, fmt.Errorf("build sheets client: %w", err)
	}

	var (
		redisClient *redis.Client
		gridCache   *cache.GridCache
	)
	if cfg.Cache.Enabled && cfg.Redis.URL != "" {
		redisClient = redisclient.New(cfg.Redis)
		if err := redisclient.Ping(ctx, redisClient); err != nil {
			logger.Warn("redis unreachable, continuing without grid cache", slog.String("error", err.Error()))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			gridCache = cache.NewGridCache(redisClient, cfg.Cache.GridTTL)
		}
	}

	layout := grid.Layout{
		ClientColumn:        cfg.Layout.ClientColumn,
		TypeColumn:          cfg.Layout.TypeColumn,
		DeliveryPriceColumn: cfg.Layout.DeliveryPriceColumn,
		FirstDateColumn:     cfg.Layout.FirstDateColumn,
		BlockWidth:          cfg.Layout.BlockWidth,
	}

	usageSvc := usage.NewService(sheetsClient, gridCache, layout, cfg.Layout.MaxRows)
	ledgerSvc := ledger.NewService(sheetsClient, cfg.Sheets.BillingTab, nil)
	calc := invoice.NewCalculator(cfg.Pricing)
	billingSvc := billing.NewService(ledgerSvc, usageSvc, calc, cfg.Cycle.BillingLength, logger)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		Redis:         redisClient,
		Sheets:        sheetsClient,
		GridCache:     gridCache,
		Usage:         usageSvc,
		Ledger:        ledgerSvc,
		Billing:       billingSvc,
		Observability: obs,
	}, nil
}

// Close releases held connections and flushes telemetry.
func (c *Container) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Observability != nil {
		_ = c.Observability.Shutdown(ctx)
	}
}
