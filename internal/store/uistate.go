package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"cyberorganism/internal/model"
)

const uiStateFileName = "ui_state.json"

// UIState stores small, user-facing UI state for restoring the last
// screen on relaunch.
//
// It is intentionally "best effort": callers should tolerate missing or
// invalid data.
type UIState struct {
	Version int `json:"version"`

	ActiveContainer model.Container `json:"active_container,omitempty"`
	FoldedIDs       []int           `json:"folded_ids,omitempty"`
}

func (s *Store) uiStatePath() string {
	return filepath.Join(s.Dir, uiStateFileName)
}

func (s *Store) LoadUIState() (*UIState, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &UIState{Version: 1}, nil
	}
	b, err := os.ReadFile(s.uiStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &UIState{Version: 1}, nil
		}
		return nil, err
	}
	var st UIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Best effort; if corrupted, treat as missing.
		return &UIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	if !st.ActiveContainer.Valid() {
		st.ActiveContainer = ""
	}
	return &st, nil
}

func (s *Store) SaveUIState(st *UIState) error {
	if st == nil {
		return nil
	}
	if strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.uiStatePath(), b)
}
