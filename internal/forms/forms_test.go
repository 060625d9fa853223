package forms

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.json")
	s := NewFileStore(path)

	d := DefaultDraft()
	d.Symbol = "RELIANCE-EQ"
	d.Price = 2800.5
	d.SelectedClients = []string{"C1", "C2"}
	d.PerClientQty = map[string]string{"C1": "15"}

	if err := s.Save(d); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Symbol != "RELIANCE-EQ" || got.Price != 2800.5 {
		t.Errorf("Unexpected draft %+v", got)
	}
	if len(got.SelectedClients) != 2 || got.PerClientQty["C1"] != "15" {
		t.Errorf("Selections not preserved: %+v", got)
	}
}

func TestFileStoreMissingFileLoadsDefaults(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	d, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if d.Action != "BUY" || d.Exchange != "NSE" || d.Qty != "1" {
		t.Errorf("Expected defaults, got %+v", d)
	}
}

func TestFileStoreCorruptFileLoadsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if d.Action != "BUY" {
		t.Errorf("Expected a corrupt draft to fall back to defaults, got %+v", d)
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.json")
	s := NewFileStore(path)
	if err := s.Save(DefaultDraft()); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected draft file removed")
	}
	// Clearing twice is fine.
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
}
