package ledger

import (
	"encoding/json"
	"fmt"

	"moneta/internal/core"
)

// Snapshot is the full persisted state of one user's ledger. It is the shape
// the persistence collaborator loads and saves and the backup export emits.
type Snapshot struct {
	Records    []core.Record   `json:"records"`
	Budgets    []core.Budget   `json:"budgets"`
	Accounts   []core.Account  `json:"accounts"`
	Categories []core.Category `json:"categories"`
}

// normalize fills missing collections with empty slices so core logic never
// sees nil. Partially-initialized data from older versions stays loadable.
func (s *Snapshot) normalize() {
	if s.Records == nil {
		s.Records = []core.Record{}
	}
	if s.Budgets == nil {
		s.Budgets = []core.Budget{}
	}
	if s.Accounts == nil {
		s.Accounts = []core.Account{}
	}
	if s.Categories == nil {
		s.Categories = []core.Category{}
	}
}

// DecodeSnapshot parses persisted or restored ledger state. Empty input is a
// fresh ledger; malformed input surfaces an import error without producing a
// partial snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if len(data) == 0 {
		s.normalize()
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode snapshot: %v", core.ErrImport, err)
	}
	s.normalize()
	return s, nil
}

// Encode renders the snapshot as indented JSON, the backup file format.
func (s Snapshot) Encode() ([]byte, error) {
	out := s
	out.normalize()
	return json.MarshalIndent(out, "", "  ")
}
