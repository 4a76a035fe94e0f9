package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/heartmarshall/mealink-backend/internal/adapter/nats"
	"github.com/heartmarshall/mealink-backend/internal/adapter/postgres"
	pgingredient "github.com/heartmarshall/mealink-backend/internal/adapter/postgres/ingredient"
	pginventory "github.com/heartmarshall/mealink-backend/internal/adapter/postgres/inventory"
	"github.com/heartmarshall/mealink-backend/internal/adapter/postgrest"
	"github.com/heartmarshall/mealink-backend/internal/adapter/sqlite"
	"github.com/heartmarshall/mealink-backend/internal/config"
	"github.com/heartmarshall/mealink-backend/internal/domain"
	"github.com/heartmarshall/mealink-backend/internal/identity"
	"github.com/heartmarshall/mealink-backend/internal/metrics"
	"github.com/heartmarshall/mealink-backend/internal/service/ingredient"
	"github.com/heartmarshall/mealink-backend/internal/service/inventory"
)

type catalogStore interface {
	Search(ctx context.Context, keyword string, requesterID uuid.UUID, limit int) ([]domain.Ingredient, error)
	FindExact(ctx context.Context, normalized string, requesterID uuid.UUID) (*domain.Ingredient, error)
	Create(ctx context.Context, name string, requesterID uuid.UUID) (*domain.Ingredient, error)
}

type ledgerStore interface {
	InsertBatch(ctx context.Context, records []domain.InventoryRecord) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.InventoryItem, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type recordedNotifier interface {
	InventoryRecorded(ctx context.Context, ownerID uuid.UUID, records []domain.InventoryRecord) error
}

// Core is the wired domain layer shared by the server and the CLI.
type Core struct {
	Config    *config.Config
	Metrics   *metrics.Metrics
	Catalog   *ingredient.Service
	Inventory *inventory.Service
	Identity  identity.Provider

	// Store is nil when no store backend is configured.
	Store pinger

	closers []func()
}

// Close releases every resource opened by NewCore, in reverse order.
func (c *Core) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// NewCore opens the configured store, identity source and event publisher and
// builds the services on top of them. reg may be nil to skip metrics.
func NewCore(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (_ *Core, err error) {
	c := &Core{Config: cfg}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	if reg != nil {
		c.Metrics = metrics.New(reg)
	}

	var (
		catalog catalogStore
		ledger  ledgerStore
	)
	if !cfg.Store.Enabled() {
		logger.WarnContext(ctx, "no store backend configured; catalog and inventory are unavailable")
	}
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)
		catalog = pgingredient.New(pool)
		ledger = pginventory.New(pool, postgres.NewTxManager(pool))
		c.Store = pool
	case config.BackendPostgREST:
		client := postgrest.New(cfg.PostgREST, logger)
		catalog, ledger, c.Store = client, client, client
	case config.BackendNone:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	c.Identity, err = c.openIdentity(ctx, cfg.Identity, logger)
	if err != nil {
		return nil, err
	}

	var notifier recordedNotifier
	if cfg.Events.NATSURL != "" {
		pub, nc, err := nats.Connect(cfg.Events.NATSURL, cfg.Events.Subject, logger)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() { _ = nc.Drain() })
		notifier = pub
	}

	c.Catalog = ingredient.NewService(logger, catalog, c.Metrics, cfg.Catalog.SearchLimit)

	var resolver *ingredient.Service
	if catalog != nil {
		resolver = c.Catalog
	}
	c.Inventory = inventory.NewService(logger, resolverOrNil(resolver), ledger, notifier, c.Metrics)

	return c, nil
}

func (c *Core) openIdentity(ctx context.Context, cfg config.IdentityConfig, logger *slog.Logger) (identity.Provider, error) {
	switch cfg.Mode {
	case config.IdentitySession:
		return identity.Session{}, nil
	case config.IdentityDevice:
		settings, err := sqlite.OpenSettings(ctx, cfg.DeviceStorePath)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() {
			if err := settings.Close(); err != nil {
				logger.Warn("close device settings", slog.String("error", err.Error()))
			}
		})
		return identity.NewDevice(logger, settings), nil
	}
	return nil, errors.New("unknown identity mode " + cfg.Mode)
}

type lineResolver interface {
	Resolve(ctx context.Context, line domain.InventoryLine, requesterID uuid.UUID) (*domain.Ingredient, error)
}

// resolverOrNil keeps a nil *ingredient.Service from becoming a non-nil
// interface value.
func resolverOrNil(s *ingredient.Service) lineResolver {
	if s == nil {
		return nil
	}
	return s
}
