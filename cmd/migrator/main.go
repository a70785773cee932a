package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/UnknownOlympus/themis/internal/config"
	"github.com/UnknownOlympus/themis/internal/repository"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose"
	"github.com/spf13/cobra"
)

var migrationsDir string

var rootCmd = &cobra.Command{
	Use:   "migrator",
	Short: "Apply or roll back the themis database schema",
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDB(func(db *sql.DB) error {
			if err := goose.Up(db, migrationsDir); err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
			fmt.Println("✅ Migrations applied successfully")
			return nil
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDB(func(db *sql.DB) error {
			if err := goose.Down(db, migrationsDir); err != nil {
				return fmt.Errorf("failed to roll back migration: %w", err)
			}
			fmt.Println("✅ Migration rolled back successfully")
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status of every migration",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDB(func(db *sql.DB) error {
			if err := goose.Status(db, migrationsDir); err != nil {
				return fmt.Errorf("failed to read migration status: %w", err)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&migrationsDir, "dir", "d", "migrations", "Directory with the SQL migrations")
	rootCmd.AddCommand(upCmd, downCmd, statusCmd)
}

// withDB opens the configured database for the duration of fn.
func withDB(fn func(db *sql.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dbpool, err := repository.NewDatabase(
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Dbname)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer dbpool.Close()

	if err = goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	dtb := stdlib.OpenDBFromPool(dbpool)
	defer dtb.Close()

	return fn(dtb)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
