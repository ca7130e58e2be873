package sql

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/fxcross/cmd/env"
	dbpkg "github.com/sig-0/fxcross/storage/sql"
)

// migrateCfg wraps the migrate configuration
type migrateCfg struct {
	rootCfg *sqlCfg

	steps int
}

// newMigrateCmd creates the migrate command
func newMigrateCmd(rootCfg *sqlCfg) *ffcli.Command {
	cfg := &migrateCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	rootCfg.RegisterFlags(fs)

	fs.IntVar(
		&cfg.steps,
		"steps",
		0,
		"the number of migrations to apply (negative rolls back). 0 applies all pending",
	)

	return &ffcli.Command{
		Name:       "migrate",
		ShortUsage: "sql migrate [flags]",
		LongHelp:   "Runs the embedded DB migrations",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *migrateCfg) exec(ctx context.Context, _ []string) error {
	// Load .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded")
	}

	dsn := c.rootCfg.dsn
	if dsn == "" {
		dsn = os.Getenv(env.Name(env.DBURLSuffix))
	}

	if dsn == "" {
		return fmt.Errorf("missing %s", env.Name(env.DBURLSuffix))
	}

	// Open the DB
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}

	defer func() {
		if err := db.Close(); err != nil {
			fmt.Printf("Unable to gracefully close DB: %s\n", err.Error())
		}
	}()

	// Ping the DB
	if err = db.PingContext(ctx); err != nil {
		return fmt.Errorf("unable to ping DB: %w", err)
	}

	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	if c.steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(c.steps)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No new migrations to apply")

		return nil
	}

	if err != nil {
		return fmt.Errorf("unable to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("unable to read migration version: %w", err)
	}

	fmt.Printf("Migrations complete! Version %d (dirty: %t)\n", version, dirty)

	return nil
}

// newMigrator creates the migrator over the embedded schema
func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(dbpkg.SchemaFS, dbpkg.SchemaDir)
	if err != nil {
		return nil, fmt.Errorf("unable to open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("unable to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("unable to create migrator: %w", err)
	}

	return m, nil
}
