package sqlite

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/tally/internal/tally/store/drivers/sqlite/migrations"
)

// ApplyMigrations applies any pending database migrations to the given Store's
// database. It uses the embedded migration files which will be compiled into
// the binary.
//
// The migrate instance is deliberately not closed: closing it would close the
// store's own *sql.DB.
func (m *Store) ApplyMigrations() error {
	// 1. Create the SQLite migration driver
	driver, err := sqlitemigrate.WithInstance(m.db.DB, &sqlitemigrate.Config{})
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").With("driver", "sqlite").Wrap(err)
	}

	// 2. Create the iofs (embedded filesystem) source driver
	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return oops.Code("MIGRATION_SOURCE_FAILED").With("driver", "sqlite").Wrap(err)
	}

	// 3. Create the migrate instance to run migrations
	instance, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").With("driver", "sqlite").Wrap(err)
	}

	// 4. Apply all up migrations
	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_UP_FAILED").With("driver", "sqlite").Wrap(err)
	}

	return nil
}
