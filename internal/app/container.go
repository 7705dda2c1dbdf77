// Package app arma el proceso: abre las dependencias (warehouse, cache,
// archivo de usuarios, sesiones) y construye el handler HTTP.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/datagate/internal/access"
	"github.com/dropDatabas3/datagate/internal/cache"
	"github.com/dropDatabas3/datagate/internal/catalog"
	"github.com/dropDatabas3/datagate/internal/config"
	"github.com/dropDatabas3/datagate/internal/domain/repository"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
	"github.com/dropDatabas3/datagate/internal/security/password"
	tokens "github.com/dropDatabas3/datagate/internal/security/token"
	"github.com/dropDatabas3/datagate/internal/session"
	"github.com/dropDatabas3/datagate/internal/store/adapters/fs"
	"github.com/dropDatabas3/datagate/internal/warehouse"
	"github.com/dropDatabas3/datagate/internal/warehouse/bigquery"
	"github.com/dropDatabas3/datagate/internal/warehouse/pg"
)

// Container tiene las dependencias ya abiertas.
type Container struct {
	Config *config.Config

	// Warehouse es nil en modo demo (driver none o cliente que no se pudo crear).
	Warehouse    warehouse.Client
	WarehouseErr error

	Cache          cache.Client
	Users          repository.UserRepository
	Catalog        *catalog.Catalog
	Access         *access.Service
	Sessions       *session.Manager
	PasswordScheme password.Scheme
}

// OpenWarehouse crea el cliente según warehouse.driver. "none" devuelve nil sin error.
func OpenWarehouse(ctx context.Context, cfg *config.Config) (warehouse.Client, error) {
	switch cfg.Warehouse.Driver {
	case "none":
		return nil, nil
	case "postgres":
		c, err := pg.New(ctx, cfg.Warehouse.DSN)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "bigquery", "":
		c, err := bigquery.New(ctx, cfg.Warehouse.Project, cfg.Warehouse.Location)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("app: unknown warehouse driver %q", cfg.Warehouse.Driver)
	}
}

// Open abre todo. Si el warehouse no se puede crear el proceso sigue en modo
// demo; cualquier otra falla es fatal.
func Open(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logger.From(ctx).With(logger.Component("app"), logger.Driver(cfg.Warehouse.Driver))

	wh, whErr := OpenWarehouse(ctx, cfg)
	if whErr != nil {
		log.Warn("warehouse client unavailable, running in demo mode", logger.Err(whErr))
		wh = nil
	}
	c, err := Build(ctx, cfg, wh)
	if err != nil {
		if wh != nil {
			_ = wh.Close()
		}
		return nil, err
	}
	c.WarehouseErr = whErr
	return c, nil
}

// Build arma el container sobre un warehouse ya creado (nil = demo).
func Build(ctx context.Context, cfg *config.Config, wh warehouse.Client) (*Container, error) {
	log := logger.From(ctx).With(logger.Component("app"))

	// Paso 1: cache (sesiones + lista de tablas)
	cc, err := cache.New(cache.Config{
		Driver:   cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("app: cache: %w", err)
	}

	// Paso 2: catálogo + acceso
	mode, err := access.ParseFilterMode(cfg.Access.FilterMode)
	if err != nil {
		_ = cc.Close()
		return nil, err
	}
	cat := catalog.New(wh, cfg.Warehouse.Dataset, cc, cfg.TablesTTL())
	acc := access.NewService(cat, access.NewSource(wh, cfg.QueryTimeout()), mode)

	// Paso 3: sesiones
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if secret, err = tokens.GenerateOpaqueToken(32); err != nil {
			_ = cc.Close()
			return nil, err
		}
		log.Warn("auth.jwt_secret not set, using an ephemeral secret; sessions will not survive a restart")
	}
	sessions, err := session.NewManager(cc, []byte(secret), cfg.SessionTTL())
	if err != nil {
		_ = cc.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	scheme, err := password.ParseScheme(cfg.Security.PasswordScheme)
	if err != nil {
		_ = cc.Close()
		return nil, err
	}

	// Paso 4: archivo de usuarios + admin inicial
	users := fs.NewUserRepo(cfg.UsersFile, cat.AdminTables)
	if err := ensureAdmin(ctx, users, cat, scheme, cfg.Bootstrap.AdminPassword); err != nil {
		_ = cc.Close()
		return nil, err
	}

	return &Container{
		Config:         cfg,
		Warehouse:      wh,
		Cache:          cc,
		Users:          users,
		Catalog:        cat,
		Access:         acc,
		Sessions:       sessions,
		PasswordScheme: scheme,
	}, nil
}

// ensureAdmin crea el archivo con la cuenta admin si todavía no existe. El
// admin recibe la lista de tablas de este momento.
func ensureAdmin(ctx context.Context, users repository.UserRepository, cat *catalog.Catalog, scheme password.Scheme, plain string) error {
	hash, err := password.Hash(scheme, plain)
	if err != nil {
		return fmt.Errorf("app: bootstrap admin: %w", err)
	}
	created, err := users.EnsureAdmin(ctx, hash, cat.AdminTables(ctx))
	if err != nil {
		return fmt.Errorf("app: bootstrap admin: %w", err)
	}
	if created {
		logger.From(ctx).Info("users file initialized with the admin account", logger.Component("app"))
	}
	return nil
}

// Close libera warehouse y cache.
func (c *Container) Close() error {
	var errs []error
	if c.Warehouse != nil {
		errs = append(errs, c.Warehouse.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	return errors.Join(errs...)
}
