// Package poi tracks known points of interest in an H3 spatial index.
package poi

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/uber/h3-go/v4"

	"roadtripgo/pkg/geo"
	"roadtripgo/pkg/model"
)

// indexResolution is H3 resolution 5, whose cells have an edge length of
// roughly 5.3 miles. Coarse enough that a 50 mile charger search stays
// around k=10 rings, fine enough that a ring lookup near the vehicle does
// not pull in half the state.
const indexResolution = 5

// cellEdgeMiles approximates the res-5 cell edge for ring sizing.
const cellEdgeMiles = 5.3

// Manager holds POIs in memory, indexed by H3 cell for radius queries.
type Manager struct {
	mu    sync.RWMutex
	byID  map[string]*model.POI
	cells map[h3.Cell][]string
}

// NewManager creates an empty POI manager.
func NewManager() *Manager {
	return &Manager{
		byID:  make(map[string]*model.POI),
		cells: make(map[h3.Cell][]string),
	}
}

// Add registers a POI, replacing any previous POI with the same ID.
func (m *Manager) Add(poi *model.POI) error {
	if poi == nil || poi.ID == "" {
		return fmt.Errorf("poi: cannot add POI without an ID")
	}
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: poi.Lat, Lng: poi.Lon}, indexResolution)
	if err != nil {
		return fmt.Errorf("poi: index %q: %w", poi.ID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.byID[poi.ID]; ok {
		m.removeFromCellLocked(old)
	}
	m.byID[poi.ID] = poi
	m.cells[cell] = append(m.cells[cell], poi.ID)
	slog.Debug("POI: Added", "id", poi.ID, "name", poi.Name, "category", poi.Category)
	return nil
}

// AddAll registers a batch of POIs, stopping at the first failure.
func (m *Manager) AddAll(pois []*model.POI) error {
	for _, p := range pois {
		if err := m.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the POI with the given ID, or nil.
func (m *Manager) Get(id string) *model.POI {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[id]
}

// Remove drops the POI with the given ID. Returns true if it existed.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	poi, ok := m.byID[id]
	if !ok {
		return false
	}
	m.removeFromCellLocked(poi)
	delete(m.byID, id)
	return true
}

// Count returns the number of tracked POIs.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// FindNearby returns POIs within radiusMiles of loc, sorted nearest first.
// If categories is non-empty, only POIs in one of those categories match.
// The H3 grid disk prunes candidates; exact great-circle distance decides.
func (m *Manager) FindNearby(ctx context.Context, loc geo.Point, radiusMiles float64, categories []string) ([]*model.POI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	origin, err := h3.LatLngToCell(h3.LatLng{Lat: loc.Lat, Lng: loc.Lon}, indexResolution)
	if err != nil {
		return nil, fmt.Errorf("poi: index query point: %w", err)
	}

	k := int(radiusMiles/cellEdgeMiles) + 1
	disk, err := h3.GridDisk(origin, k)
	if err != nil {
		return nil, fmt.Errorf("poi: grid disk k=%d: %w", k, err)
	}

	catSet := make(map[string]bool, len(categories))
	for _, c := range categories {
		catSet[c] = true
	}

	type hit struct {
		poi  *model.POI
		dist float64
	}

	m.mu.RLock()
	var hits []hit
	for _, cell := range disk {
		for _, id := range m.cells[cell] {
			poi := m.byID[id]
			if len(catSet) > 0 && !catSet[poi.Category] {
				continue
			}
			d := geo.DistanceMiles(loc, geo.Point{Lat: poi.Lat, Lon: poi.Lon})
			if d <= radiusMiles {
				hits = append(hits, hit{poi: poi, dist: d})
			}
		}
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	out := make([]*model.POI, len(hits))
	for i, h := range hits {
		out[i] = h.poi
	}
	return out, nil
}

// removeFromCellLocked unlinks a POI from its cell bucket. Caller holds mu.
func (m *Manager) removeFromCellLocked(poi *model.POI) {
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: poi.Lat, Lng: poi.Lon}, indexResolution)
	if err != nil {
		return
	}
	ids := m.cells[cell]
	for i, id := range ids {
		if id == poi.ID {
			m.cells[cell] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(m.cells[cell]) == 0 {
		delete(m.cells, cell)
	}
}
