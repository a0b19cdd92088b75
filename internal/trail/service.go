package trail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend-trailview/internal/db"
)

var ErrNoDatabase = errors.New("trail database not configured")

// Service persists the trail table in Postgres.
type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Enabled() bool {
	return s != nil && s.db != nil
}

func (s *Service) List(ctx context.Context) ([]Trail, error) {
	if !s.Enabled() {
		return nil, ErrNoDatabase
	}
	rows, err := s.db.Query(ctx, `
		SELECT name, geo_json, total_real_distance, COALESCE(attributes, '{}'::jsonb)
		FROM trails
		ORDER BY position, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trails []Trail
	for rows.Next() {
		var t Trail
		var attrs []byte
		if err := rows.Scan(&t.Name, &t.GeoJSON, &t.TotalRealDistance, &attrs); err != nil {
			return nil, err
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &t.Fields); err != nil {
				return nil, fmt.Errorf("trail %q attributes: %w", t.Name, err)
			}
			if len(t.Fields) == 0 {
				t.Fields = nil
			}
		}
		trails = append(trails, t)
	}
	return trails, rows.Err()
}

// Import upserts trails in one transaction, keeping their order as position.
func (s *Service) Import(ctx context.Context, trails []Trail) (int, error) {
	if !s.Enabled() {
		return 0, ErrNoDatabase
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	for i, t := range trails {
		if t.Name == "" {
			return 0, fmt.Errorf("row %d: name required", i+1)
		}
		attrs, err := json.Marshal(t.Fields)
		if err != nil {
			return 0, err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO trails (name, geo_json, total_real_distance, attributes, position)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (name) DO UPDATE
			SET geo_json=EXCLUDED.geo_json, total_real_distance=EXCLUDED.total_real_distance,
			    attributes=EXCLUDED.attributes, position=EXCLUDED.position
		`, t.Name, t.GeoJSON, t.TotalRealDistance, attrs, i)
		if err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	committed = true
	return len(trails), nil
}
