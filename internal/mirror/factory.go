package mirror

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/config"
	"budget/internal/mirror/archive"
	"budget/internal/mirror/sheets"
)

// Ensure interface conformance
var (
	_ Backend = (*archive.Repository)(nil)
	_ Backend = (*sheets.Client)(nil)
)

// NewBackend builds the mirror backend named by the configuration.
func NewBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.MirrorBackend {
	case config.MirrorSQLite:
		repo, err := archive.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite archive: %w", err)
		}
		logger.Info("Initialized SQLite mirror", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case config.MirrorSheets:
		cli, err := sheets.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize sheets mirror: %w", err)
		}
		logger.Info("Initialized Google Sheets mirror")
		return cli, nil
	default:
		return nil, fmt.Errorf("unsupported mirror backend: %s", cfg.MirrorBackend)
	}
}
