package container

import (
	"context"
	"fmt"
	"io"

	"fairdraw/adapters/postgres"
	"fairdraw/adapters/prng"
	"fairdraw/app"
	"fairdraw/internal"
	"fairdraw/internal/config"
	"fairdraw/internal/errors"
	"fairdraw/internal/migration"
	"fairdraw/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Number streams
	Expander ports.Expander
	Draws    *app.DrawService

	// Infrastructure, set by InitWithDatabase
	DB      *sqlx.DB
	DrawLog ports.DrawLogRepository
}

// New creates a container from configuration. Log output goes to logOut.
func New(cfg *config.Config, logOut io.Writer) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	if logOut != nil {
		logger.SetOutput(logOut)
	}

	expander, err := prng.NewExpander(cfg.PRNG.Hash)
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Expander: expander,
		Draws:    app.NewDrawService(expander, cfg.PRNG.Policy, logger),
	}, nil
}

// InitWithDatabase connects to the draw log database, migrates its schema
// and initializes the repositories
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		return errors.ConfigInvalid("DATABASE_URL must be set to use the draw log")
	}

	connectCtx, cancel := context.WithTimeout(ctx, c.Config.Database.ConnectTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(connectCtx, "postgres", c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to draw log", err)
	}

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		db.Close()
		return errors.WithCode(errors.CodeDatabaseError, err)
	}

	c.DB = db
	c.DrawLog = postgres.NewDrawLogRepository(db)
	c.Logger.Debug("draw log ready (schema %s)", runner.Version())
	return nil
}

// BatchService builds a batch service drawing seeds from seeds. Batches are
// recorded when the database has been initialized.
func (c *Container) BatchService(seeds ports.SeedSource) *app.BatchService {
	return app.NewBatchService(c.Draws, seeds, c.DrawLog, c.Config.Batch.Workers, c.Logger)
}

// Shutdown releases resources held by the container
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
