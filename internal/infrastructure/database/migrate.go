package database

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// RunMigrations applies every pending migration from dir against the
// connection's database.
func (p *Postgres) RunMigrations(dir string) error {
	m, err := migrate.New(fmt.Sprintf("file://%s", dir), p.cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("error running migrations: %w", err)
	}

	p.log.Info("migrations applied", zap.String("dir", dir))
	return nil
}
