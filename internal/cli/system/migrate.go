package system

import (
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/migration"
)

// Migrator is implemented by both SQL stores.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaStatus() (migration.Status, error)
}

type MigrateCmd struct {
	Status bool `help:"Only report the current and latest schema versions."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	m, ok := ctx.Store.(Migrator)
	if !ok {
		return fmt.Errorf("storage backend does not support migrations")
	}

	if c.Status {
		st, err := m.SchemaStatus()
		if err != nil {
			return fmt.Errorf("failed to read schema status: %w", err)
		}
		fmt.Printf("Schema version %d of %d (%d pending)\n", st.Current, st.Latest, st.Pending())
		return nil
	}

	if ctx.IsSQLite() {
		ctx.PerformAutomaticBackup()
	}

	count, err := m.Migrate(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
