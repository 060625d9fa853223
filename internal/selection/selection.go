// Package selection tracks which rows of a remote book the user has checked.
// Membership is keyed by stable row identity, never by position, so a
// background refresh that reorders the book or a search query that narrows
// the visible rows cannot change what a later batch operation acts on.
package selection

import (
	"strings"
	"sync"

	"multibroker-console/internal/types"
)

// RowID returns the stable identity for an order row: the backend-assigned
// order id when present, else a composite of fields that survive a refresh.
func RowID(o types.Order) string {
	if o.OrderID != "" {
		return o.OrderID
	}
	return o.Name + "|" + o.Symbol + "|" + o.Status
}

// PositionID returns the stable identity for a position row. Positions carry
// no backend id, so identity is the owning account plus symbol.
func PositionID(p types.Position) string {
	return p.Name + "|" + p.Symbol + "|" + p.ClientID
}

// Set is an in-memory selection keyed by row identity. Methods never perform
// I/O. Safe for use from UI callbacks and a refresh goroutine.
type Set struct {
	mu     sync.RWMutex
	picked map[string]bool
}

func NewSet() *Set {
	return &Set{picked: make(map[string]bool)}
}

// Toggle flips membership for one row.
func (s *Set) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.picked[id] {
		delete(s.picked, id)
	} else {
		s.picked[id] = true
	}
}

// SelectAll marks every given id selected.
func (s *Set) SelectAll(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.picked[id] = true
	}
}

func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picked = make(map[string]bool)
}

func (s *Set) Selected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.picked[id]
}

func (s *Set) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.picked)
}

// SelectedOrders resolves the selection against the full, unfiltered order
// list and returns copies of the matching rows in list order. Ids selected
// while a row was visible still resolve after the displayed list was
// filtered past them; ids no longer present in the book resolve to nothing.
func (s *Set) SelectedOrders(full []types.Order) []types.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var picked []types.Order
	for _, o := range full {
		if s.picked[RowID(o)] {
			picked = append(picked, o)
		}
	}
	return picked
}

// SelectedPositions resolves the selection against the full open-position
// list, returning copies in list order.
func (s *Set) SelectedPositions(full []types.Position) []types.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var picked []types.Position
	for _, p := range full {
		if s.picked[PositionID(p)] {
			picked = append(picked, p)
		}
	}
	return picked
}

// MatchesQuery reports whether a symbol matches a free-text search query.
// The query is split on whitespace and every token must appear in the
// symbol, case-insensitively. An empty query matches everything. Filtering
// the displayed rows with this never affects SelectedOrders.
func MatchesQuery(sym, query string) bool {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return true
	}
	up := strings.ToUpper(sym)
	for _, t := range tokens {
		if !strings.Contains(up, strings.ToUpper(t)) {
			return false
		}
	}
	return true
}
