package main

import (
	"context"

	"go.uber.org/zap"

	"orgdir/internal/config"
	"orgdir/internal/domain/account"
	"orgdir/internal/domain/department"
	"orgdir/internal/repository/memory"
	pg "orgdir/internal/repository/postgres"
)

type stores struct {
	Accounts    account.Repo
	Departments department.Repo

	db *pg.DB // nil in memory mode
}

// initStores wires the postgres repositories, or the in-memory ones when no
// DSN is configured.
func initStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.DB.DSN == "" {
		logger.Warn("no db dsn configured, using in-memory store")
		return &stores{
			Accounts:    memory.NewAccountRepo(),
			Departments: memory.NewDepartmentRepo(),
		}, nil
	}

	db, err := pg.New(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &stores{
		Accounts:    pg.NewAccountRepo(db),
		Departments: pg.NewDepartmentRepo(db),
		db:          db,
	}, nil
}

func (s *stores) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *stores) Health(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Pool.Ping(ctx)
}
