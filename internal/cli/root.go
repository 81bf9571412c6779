// Package cli implements the venda command line.
package cli

import (
	"fmt"
	"os"

	"github.com/sliramanoel/venda/internal/config"
	"github.com/sliramanoel/venda/internal/infrastructure"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// NewRootCommand builds the venda command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "venda",
		Short: "Single product storefront backend",
		Long: `venda runs the storefront API (orders, PIX payments, provider webhooks,
site content and traffic analytics) and the maintenance commands around it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (default ./venda.yaml when present)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newAdminCmd())
	rootCmd.AddCommand(newOrdersCmd())
	rootCmd.AddCommand(newPixCmd())

	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd := NewRootCommand()
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// openDatabase connects and brings the schema up to date
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := infrastructure.ConnectDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := infrastructure.MigrateAllSchemas(db); err != nil {
		closeDatabase(db)
		return nil, fmt.Errorf("failed to migrate database schemas: %w", err)
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
