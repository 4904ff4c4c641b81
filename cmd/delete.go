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
)

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete NAME...",
	Short: "Delete variables from the addressed level",
	Long: `Delete one or more variables stored directly at the addressed level.
Deletion is idempotent: names that are not present are reported but do
not fail the command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, closeFn, err := newManager(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		result, err := manager.DeleteVariables(cmd.Context(), coordinatesFromFlags(), args)
		if err != nil {
			return err
		}
		for _, name := range result.Deleted {
			fmt.Printf("deleted %s\n", name)
		}
		for _, name := range result.NotFound {
			fmt.Printf("not found %s\n", name)
		}
		return nil
	},
}
