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
	"io"
	"os"

	"github.com/spf13/cobra"
)

var importFormat string

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Set variables at the addressed level from a file",
	Long: `Import reads variables from FILE and sets them all at the addressed
level in one batch. The format is taken from the file extension
(.json, .yaml, .yml, anything else dotenv) unless --format is given.
Pass - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := coordinatesFromFlags()

		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		vars, err := decodeVariables(data, detectFormat(args[0], importFormat))
		if err != nil {
			return err
		}

		manager, closeFn, err := newManager(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := manager.SetVariables(ctx, c, vars); err != nil {
			return err
		}
		fmt.Printf("imported %d variables to %s\n", len(vars), c)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "", fmt.Sprintf("Input format: %s, %s, or %s (default: by file extension)", formatDotenv, formatJSON, formatYAML))
	rootCmd.AddCommand(importCmd)
}
