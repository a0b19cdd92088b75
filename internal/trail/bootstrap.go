package trail

import (
	"context"
	"fmt"

	"backend-trailview/internal/logging"

	"go.uber.org/zap"
)

// LoadStore builds the startup catalog. The trails table wins when it
// has rows; otherwise the CSV file is read. With neither source the
// store is empty and every view renders nothing.
func LoadStore(ctx context.Context, svc *Service, csvPath string) (*Store, error) {
	if svc.Enabled() {
		rows, err := svc.List(ctx)
		if err != nil {
			logging.L().Warn("listing trails from postgres failed", zap.Error(err))
		} else if len(rows) > 0 {
			logging.L().Info("trails loaded", zap.String("source", "postgres"), zap.Int("count", len(rows)))
			return NewStore(rows), nil
		}
	}

	if csvPath == "" {
		return NewStore(nil), nil
	}
	rows, err := LoadCSVFile(csvPath)
	if err != nil {
		return NewStore(nil), fmt.Errorf("load %s: %w", csvPath, err)
	}
	logging.L().Info("trails loaded", zap.String("source", csvPath), zap.Int("count", len(rows)))
	return NewStore(rows), nil
}
