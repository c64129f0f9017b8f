package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"roadtripgo/pkg/model"
)

// Store persists and summarises tour runs.
type Store interface {
	SaveTour(ctx context.Context, entry *model.HistoryEntry) error
	GetTour(ctx context.Context, id string) (*model.HistoryEntry, error)
	ListTours(ctx context.Context, limit int) ([]*model.HistoryEntry, error)
	Statistics(ctx context.Context) (*model.HistoryStatistics, error)
	Close() error
}

// SQLiteStore implements Store on the sqlite history database.
type SQLiteStore struct {
	db *DB
}

// NewStore opens (or creates) the history database at path.
func NewStore(path string) (*SQLiteStore, error) {
	db, err := Init(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTour inserts or replaces a tour record.
func (s *SQLiteStore) SaveTour(ctx context.Context, entry *model.HistoryEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("history: entry has no ID")
	}

	names, err := json.Marshal(entry.POINames)
	if err != nil {
		return fmt.Errorf("history: marshal poi names: %w", err)
	}
	route, err := json.Marshal(entry.Route)
	if err != nil {
		return fmt.Errorf("history: marshal route: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tour_history
			(id, tour_name, started_at, ended_at, miles, duration_secs, pois_visited, poi_names, route)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.TourName,
		entry.StartedAt.UTC(),
		entry.EndedAt.UTC(),
		entry.Miles,
		int64(entry.Duration.Seconds()),
		entry.POIsVisited,
		string(names),
		string(route),
	)
	if err != nil {
		return fmt.Errorf("history: save tour %s: %w", entry.ID, err)
	}
	return nil
}

// GetTour returns one tour record, or nil when absent.
func (s *SQLiteStore) GetTour(ctx context.Context, id string) (*model.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tour_name, started_at, ended_at, miles, duration_secs, pois_visited, poi_names, route
		FROM tour_history WHERE id = ?`, id)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return entry, err
}

// ListTours returns the most recent tours, newest first.
func (s *SQLiteStore) ListTours(ctx context.Context, limit int) ([]*model.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tour_name, started_at, ended_at, miles, duration_secs, pois_visited, poi_names, route
		FROM tour_history ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list tours: %w", err)
	}
	defer rows.Close()

	var entries []*model.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Statistics aggregates all recorded tours.
func (s *SQLiteStore) Statistics(ctx context.Context) (*model.HistoryStatistics, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT miles, duration_secs, pois_visited FROM tour_history`)
	if err != nil {
		return nil, fmt.Errorf("history: statistics: %w", err)
	}
	defer rows.Close()

	var (
		miles   []float64
		pois    []float64
		totSecs int64
		totPOIs int
	)
	for rows.Next() {
		var m float64
		var secs int64
		var p int
		if err := rows.Scan(&m, &secs, &p); err != nil {
			return nil, err
		}
		miles = append(miles, m)
		pois = append(pois, float64(p))
		totSecs += secs
		totPOIs += p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := &model.HistoryStatistics{
		TotalTours:    len(miles),
		TotalDuration: time.Duration(totSecs) * time.Second,
		TotalPOIs:     totPOIs,
	}
	if len(miles) == 0 {
		return stats, nil
	}

	for _, m := range miles {
		stats.TotalMiles += m
	}
	stats.MeanMiles = stat.Mean(miles, nil)
	stats.MeanPOIsPerTour = stat.Mean(pois, nil)

	sorted := append([]float64(nil), miles...)
	sort.Float64s(sorted)
	stats.MedianMiles = stat.Quantile(0.5, stat.Empirical, sorted, nil)

	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*model.HistoryEntry, error) {
	var (
		entry    model.HistoryEntry
		secs     int64
		namesRaw string
		routeRaw string
	)
	err := row.Scan(
		&entry.ID,
		&entry.TourName,
		&entry.StartedAt,
		&entry.EndedAt,
		&entry.Miles,
		&secs,
		&entry.POIsVisited,
		&namesRaw,
		&routeRaw,
	)
	if err != nil {
		return nil, err
	}
	entry.Duration = time.Duration(secs) * time.Second

	if namesRaw != "" {
		if err := json.Unmarshal([]byte(namesRaw), &entry.POINames); err != nil {
			return nil, fmt.Errorf("history: decode poi names for %s: %w", entry.ID, err)
		}
	}
	if routeRaw != "" {
		if err := json.Unmarshal([]byte(routeRaw), &entry.Route); err != nil {
			return nil, fmt.Errorf("history: decode route for %s: %w", entry.ID, err)
		}
	}
	return &entry, nil
}
