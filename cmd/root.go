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
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/envstore/config"
	"github.com/cardinalhq/envstore/hierarchy"
	"github.com/cardinalhq/envstore/store"
)

var (
	cfgFile         string
	flagOrg         string
	flagProject     string
	flagEnvironment string
	flagService     string

	cliConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "envstore",
	Short: "Hierarchical environment variable store",
	Long: `Manage named variables across four hierarchy levels, organisation,
project, environment and service, with values inherited down the tree.
Omitting every level flag addresses the shared root level.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cliConfig = cfg
		return setupLogging(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default .envstore.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVarP(&flagOrg, "org", "o", "", "Organisation to address")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "Project to address")
	rootCmd.PersistentFlags().StringVarP(&flagEnvironment, "environment", "e", "", "Environment to address")
	rootCmd.PersistentFlags().StringVarP(&flagService, "service", "s", "", "Service to address")
}

// coordinatesFromFlags builds the hierarchy address from the persistent
// level flags. Validation happens in the store, not here.
func coordinatesFromFlags() hierarchy.Coordinates {
	return hierarchy.Coordinates{
		Organisation: flagOrg,
		Project:      flagProject,
		Environment:  flagEnvironment,
		Service:      flagService,
	}
}

// newManager builds the configured backend and a manager over it. The
// returned closer releases backend connections and is safe to defer.
func newManager(ctx context.Context) (*store.Manager, func(), error) {
	adapter, err := store.NewAdapter(ctx, cliConfig)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if closer, ok := adapter.(io.Closer); ok {
			_ = closer.Close()
		}
	}
	return store.NewManager(adapter), closeFn, nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). Address validation
// failures exit 2, everything else operational exits 1.
func Execute() {
	ctx, cancel := handleSignals(context.Background())
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var hierr *hierarchy.Error
		var lvlerr *store.LevelRequiredError
		if errors.As(err, &hierr) || errors.As(err, &lvlerr) || errors.Is(err, store.ErrNameRequired) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
