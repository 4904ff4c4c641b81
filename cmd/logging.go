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
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	slogmulti "github.com/samber/slog-multi"

	"github.com/cardinalhq/envstore/config"
)

// setupLogging configures the process default logger: human-readable
// text on stderr, plus a JSON handler appending to logging.file when one
// is configured. Command results go to stdout and are never routed
// through the logger, so output stays scriptable.
func setupLogging(cfg *config.Config) error {
	opts := &slog.HandlerOptions{Level: logLevel(cfg.Logging.Level)}

	handlers := []slog.Handler{slog.NewTextHandler(os.Stderr, opts)}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", cfg.Logging.File, err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)).With(
		slog.String("service", "envstore"),
		slog.String("runID", uuid.New().String()),
	))
	return nil
}

// logLevel maps the configured level name, with the DEBUG and
// ENVSTORE_DEBUG environment variables forcing debug.
func logLevel(name string) slog.Level {
	if os.Getenv("DEBUG") != "" || os.Getenv("ENVSTORE_DEBUG") != "" {
		return slog.LevelDebug
	}
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
