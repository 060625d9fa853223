package forms

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Draft is the trade-ticket snapshot persisted between sessions, one field
// per form control. Corrupt or missing drafts load as the zero draft.
type Draft struct {
	Action       string `json:"action"`
	ProductType  string `json:"productType"`
	OrderType    string `json:"orderType"`
	QtySelection string `json:"qtySelection"`

	GroupAcc   bool `json:"groupAcc"`
	DiffQty    bool `json:"diffQty"`
	Multiplier bool `json:"multiplier"`

	Qty          string  `json:"qty"`
	Exchange     string  `json:"exchange"`
	Symbol       string  `json:"symbol"`
	Price        float64 `json:"price"`
	TrigPrice    float64 `json:"trigPrice"`
	DisclosedQty int     `json:"disclosedQty"`

	TimeForce string `json:"timeForce"`
	AMO       bool   `json:"amo"`

	SelectedClients []string          `json:"selectedClients"`
	SelectedGroups  []string          `json:"selectedGroups"`
	PerClientQty    map[string]string `json:"perClientQty"`
	PerGroupQty     map[string]string `json:"perGroupQty"`
}

// DefaultDraft mirrors the ticket's initial state.
func DefaultDraft() Draft {
	return Draft{
		Action:       "BUY",
		ProductType:  "VALUEPLUS",
		OrderType:    "LIMIT",
		QtySelection: "manual",
		Qty:          "1",
		Exchange:     "NSE",
		TimeForce:    "DAY",
	}
}

// Store persists the draft.
type Store interface {
	Load() (Draft, error)
	Save(d Draft) error
	Clear() error
}

// FileStore keeps the draft in a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the saved draft. A missing or unreadable file is not an error:
// the ticket just starts from defaults.
func (s *FileStore) Load() (Draft, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultDraft(), nil
		}
		return DefaultDraft(), err
	}
	d := DefaultDraft()
	if err := json.Unmarshal(b, &d); err != nil {
		return DefaultDraft(), nil
	}
	return d, nil
}

// Save writes the draft atomically so a crash mid-write cannot corrupt it.
func (s *FileStore) Save(d Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the saved draft. Clearing an absent draft is a no-op.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
