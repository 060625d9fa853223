package selection

import (
	"testing"

	"multibroker-console/internal/types"
)

func pendingFixture() []types.Order {
	return []types.Order{
		{Name: "A", Symbol: "RELIANCE 28 NOV 2024 FUT", OrderID: "1001", Status: "PENDING", Price: 2800, Quantity: 50},
		{Name: "B", Symbol: "TCS 28 NOV 2024 FUT", OrderID: "1002", Status: "PENDING", Price: 4100, Quantity: 25},
		{Name: "C", Symbol: "NIFTY NOV 2024 FUT", OrderID: "1003", Status: "PENDING", Price: 24200, Quantity: 75},
	}
}

func TestRowIDPrefersOrderID(t *testing.T) {
	o := types.Order{Name: "A", Symbol: "X", OrderID: "42", Status: "PENDING"}
	if got := RowID(o); got != "42" {
		t.Errorf("Expected order id as row id, got %s", got)
	}

	o.OrderID = ""
	if got := RowID(o); got != "A|X|PENDING" {
		t.Errorf("Expected composite fallback, got %s", got)
	}
}

func TestToggleAndCount(t *testing.T) {
	s := NewSet()
	s.Toggle("1001")
	s.Toggle("1002")
	if s.Count() != 2 {
		t.Fatalf("Expected 2 selected, got %d", s.Count())
	}

	s.Toggle("1001")
	if s.Selected("1001") {
		t.Error("Expected second toggle to deselect")
	}
	if s.Count() != 1 {
		t.Errorf("Expected 1 selected, got %d", s.Count())
	}
}

func TestSelectedOrdersResolvesAgainstFullList(t *testing.T) {
	full := pendingFixture()
	s := NewSet()
	s.Toggle("1001")
	s.Toggle("1003")

	got := s.SelectedOrders(full)
	if len(got) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(got))
	}
	if got[0].OrderID != "1001" || got[1].OrderID != "1003" {
		t.Errorf("Expected list-order resolution, got %s then %s", got[0].OrderID, got[1].OrderID)
	}
}

func TestSelectionSurvivesFiltering(t *testing.T) {
	full := pendingFixture()
	s := NewSet()
	s.Toggle("1001")

	// A search query that hides RELIANCE from the display must not drop it
	// from the resolved selection.
	var visible []types.Order
	for _, o := range full {
		if MatchesQuery(o.Symbol, "TCS") {
			visible = append(visible, o)
		}
	}
	if len(visible) != 1 {
		t.Fatalf("Expected 1 visible row, got %d", len(visible))
	}

	got := s.SelectedOrders(full)
	if len(got) != 1 || got[0].OrderID != "1001" {
		t.Errorf("Expected hidden-but-selected row to resolve, got %v", got)
	}
}

func TestSelectionSurvivesReordering(t *testing.T) {
	full := pendingFixture()
	s := NewSet()
	s.Toggle("1002")

	reordered := []types.Order{full[2], full[0], full[1]}
	got := s.SelectedOrders(reordered)
	if len(got) != 1 || got[0].OrderID != "1002" {
		t.Errorf("Expected identity-based resolution after reorder, got %v", got)
	}
}

func TestSelectAllAndClear(t *testing.T) {
	full := pendingFixture()
	ids := make([]string, 0, len(full))
	for _, o := range full {
		ids = append(ids, RowID(o))
	}

	s := NewSet()
	s.SelectAll(ids)
	if s.Count() != 3 {
		t.Fatalf("Expected 3 selected, got %d", s.Count())
	}

	s.Clear()
	if s.Count() != 0 {
		t.Errorf("Expected empty set after clear, got %d", s.Count())
	}
	if rows := s.SelectedOrders(full); len(rows) != 0 {
		t.Errorf("Expected no rows after clear, got %d", len(rows))
	}
}

func TestMatchesQueryTokenAnd(t *testing.T) {
	sym := "BANKNIFTY 28 NOV 2024 FUT"
	if !MatchesQuery(sym, "banknifty nov") {
		t.Error("Expected all-token match to succeed")
	}
	if MatchesQuery(sym, "banknifty dec") {
		t.Error("Expected miss when any token is absent")
	}
	if !MatchesQuery(sym, "") {
		t.Error("Expected empty query to match")
	}
}
