// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the auth server CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authserver",
		Short: "GraphQL authentication server",
		Long: `A GraphQL authentication server providing signup, login, and logout
mutations backed by bcrypt credentials, a PostgreSQL user store, and
Redis-backed sessions.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
