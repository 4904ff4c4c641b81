// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/envstore/store"
)

func init() {
	rootCmd.AddCommand(organisationsCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(environmentsCmd)
	rootCmd.AddCommand(servicesCmd)
}

// runListing shares the fetch-and-print cycle of the four enumeration
// commands. A level exists while it holds variables or descendants.
func runListing(cmd *cobra.Command, list func(context.Context, *store.Manager) ([]string, error)) error {
	manager, closeFn, err := newManager(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	names, err := list(cmd.Context(), manager)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

var organisationsCmd = &cobra.Command{
	Use:   "organisations",
	Short: "List organisations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runListing(cmd, func(ctx context.Context, m *store.Manager) ([]string, error) {
			return m.GetOrganisations(ctx)
		})
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the projects of the organisation given with --org",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runListing(cmd, func(ctx context.Context, m *store.Manager) ([]string, error) {
			return m.GetProjects(ctx, flagOrg)
		})
	},
}

var environmentsCmd = &cobra.Command{
	Use:   "environments",
	Short: "List the environments of the project given with --org and --project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runListing(cmd, func(ctx context.Context, m *store.Manager) ([]string, error) {
			return m.GetEnvironments(ctx, flagOrg, flagProject)
		})
	},
}

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List the services of the environment given with --org, --project and --environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runListing(cmd, func(ctx context.Context, m *store.Manager) ([]string, error) {
			return m.GetServices(ctx, flagOrg, flagProject, flagEnvironment)
		})
	},
}
