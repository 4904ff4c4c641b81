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
	"os"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/envstore/store"
)

var (
	exportFormat string
	exportExact  bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the addressed level's variables to stdout",
	Long: `Export writes the effective variables of the addressed level, parent
values merged in, as dotenv, json, or yaml. With --exact only the
variables set directly at the level are written, which makes the
output suitable for re-importing at another level.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := coordinatesFromFlags()

		manager, closeFn, err := newManager(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		var vars []store.Variable
		if exportExact {
			vars, err = manager.GetVariables(ctx, c)
		} else {
			vars, err = manager.EffectiveVariables(ctx, c)
		}
		if err != nil {
			return err
		}

		data, err := encodeVariables(vars, exportFormat)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", formatDotenv, fmt.Sprintf("Output format: %s, %s, or %s", formatDotenv, formatJSON, formatYAML))
	exportCmd.Flags().BoolVar(&exportExact, "exact", false, "Export only variables set directly at the addressed level")
	rootCmd.AddCommand(exportCmd)
}
