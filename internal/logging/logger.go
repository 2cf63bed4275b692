package logging

import (
	"log/slog"
	"os"
)

// Setup installs the global slog logger (JSON to stdout). Called once at
// boot before the PG handler exists; main swaps in the multi handler after
// the database is up.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
