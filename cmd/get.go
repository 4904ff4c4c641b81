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
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print a variable stored directly at the addressed level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, closeFn, err := newManager(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		c := coordinatesFromFlags()
		value, found, err := manager.GetVariable(cmd.Context(), c, args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("variable %q not found at %s", args[0], c)
		}
		fmt.Println(value)
		return nil
	},
}
