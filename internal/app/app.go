// Package app assembles the shop bot: configuration, infrastructure
// bootstrap, domain stores and the Telegram run options.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"shopbot/core/bootstrap"
	"shopbot/core/cmd"
	coredatabase "shopbot/core/database"
	coretelegram "shopbot/core/telegram"
	"shopbot/core/telegram/router"
	"shopbot/internal/bot"
	"shopbot/internal/catalog"
	"shopbot/internal/flow"
	"shopbot/internal/ledger"
	"shopbot/internal/session"
)

// App holds the assembled bot, ready to produce run options.
type App struct {
	cfg      *Config
	handlers *bot.Handlers
	sessions *session.Store
}

// LoadConfig adapts LoadConfigFile to the runner's config hook.
func LoadConfig(path string) (cmd.ConfigCarrier, error) {
	return LoadConfigFile(path)
}

// Bootstrap initializes logging and the catalog source, then wires the
// session store, ledger and flow service.
func Bootstrap(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	ctx := context.Background()

	var dbCfg *coredatabase.Config
	var seeders []bootstrap.Seeder
	if cfg.Shop.CatalogSource == CatalogSourcePostgres {
		dbCfg = &cfg.Database
		seeders = append(seeders, catalogSeeder(cfg.Shop.CatalogFile))
	}

	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   &cfg.Core,
		Database: dbCfg,
		Seeders:  seeders,
	})
	if err != nil {
		return nil, err
	}

	var cat *catalog.Catalog
	if cfg.Shop.CatalogSource == CatalogSourcePostgres {
		cat, err = catalog.LoadDB(ctx, res.DB)
	} else {
		cat, err = catalog.LoadFile(cfg.Shop.CatalogFile)
	}
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(cat)
	orders := ledger.New(cfg.Core.Telegram.AdminID)
	svc := flow.NewService(cat, sessions, orders)

	return &App{
		cfg:      cfg,
		handlers: bot.New(svc, cfg.Shop.USDTWallet),
		sessions: sessions,
	}, nil
}

func catalogSeeder(path string) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
		cat, err := catalog.LoadFile(path)
		if err != nil {
			return err
		}
		return catalog.Seed(ctx, db, cat.ListBrands())
	})
}

// TelegramRunOptions builds the registry, routes and middleware chain.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.handlers.Register(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}

	adminID := a.cfg.Core.Telegram.AdminID

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: adminID})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.handlers, reg, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, _ coretelegram.Runtime) error {
			maxIdle := time.Duration(a.cfg.Shop.SessionMaxIdleHours) * time.Hour
			interval := time.Duration(a.cfg.Shop.JanitorIntervalMinutes) * time.Minute
			a.sessions.StartJanitor(ctx, interval, maxIdle)
			return nil
		},
	}, nil
}
