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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/envstore/store"
)

var (
	noParents        bool
	parentPrecedence bool
)

func init() {
	effectiveCmd.Flags().BoolVar(&noParents, "no-parents", false, "Skip inherited values, list only the level's own variables")
	effectiveCmd.Flags().BoolVar(&parentPrecedence, "parent-precedence", false, "Let inherited values win name collisions")
	rootCmd.AddCommand(effectiveCmd)
}

var effectiveCmd = &cobra.Command{
	Use:   "effective",
	Short: "List the variables visible at the addressed level, inherited values included",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		manager, closeFn, err := newManager(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		var opts []store.ResolveOption
		if noParents {
			opts = append(opts, store.WithoutParents())
		}
		if parentPrecedence {
			opts = append(opts, store.WithParentPrecedence())
		}

		vars, err := manager.EffectiveVariables(cmd.Context(), coordinatesFromFlags(), opts...)
		if err != nil {
			return err
		}
		for _, v := range vars {
			fmt.Printf("%s=%s\n", v.Name, v.Value)
		}
		return nil
	},
}
