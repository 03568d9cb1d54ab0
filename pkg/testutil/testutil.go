// Package testutil holds small helpers shared by tests.
package testutil

import (
	"io"
	"log/slog"
)

// Logger returns a logger that discards output so test logs stay readable.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
