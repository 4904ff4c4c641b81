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
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create NAME VALUE",
	Short: "Create a variable that must not already exist",
	Long: `Create a variable at the addressed level. On backends with a native
create-only write the command fails when the variable already exists;
other backends treat create as a plain set.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, closeFn, err := newManager(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return manager.CreateVariable(cmd.Context(), coordinatesFromFlags(), args[0], args[1])
	},
}
