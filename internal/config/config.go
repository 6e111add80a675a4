package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/ankouros/rosterwatch/internal/model"
	"github.com/tidwall/jsonc"
)

const (
	ConfigDirName  = "rosterwatch"
	ConfigFileName = "settings.json"

	SettingsVersionCurrent = 1
)

// -----------------------------
// Defaults
// -----------------------------

func DefaultSettings() model.Settings {
	return model.Settings{
		Version: SettingsVersionCurrent,
		Filters: []string{},
	}
}

// -----------------------------
// Paths
// -----------------------------

// DefaultPath returns ~/.config/rosterwatch/settings.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", ConfigDirName, ConfigFileName), nil
}

// -----------------------------
// Store
// -----------------------------

// Store owns the settings document. All accessors work on the in-memory copy;
// mutators persist immediately.
type Store struct {
	mu   sync.Mutex
	path string
	cur  model.Settings
}

func NewStore(path string) *Store {
	return &Store{path: path, cur: DefaultSettings()}
}

func (s *Store) Path() string { return s.path }

// Load reads the settings file into the store. A missing file yields defaults
// and is not an error. A file that needed normalizing is written back.
func (s *Store) Load() (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.cur = DefaultSettings()
		return cloneSettings(s.cur), nil
	}
	if err != nil {
		return cloneSettings(s.cur), fmt.Errorf("read settings: %w", err)
	}

	var st model.Settings
	if err := json.Unmarshal(jsonc.ToJSON(b), &st); err != nil {
		return cloneSettings(s.cur), fmt.Errorf("invalid settings JSON: %w", err)
	}
	if st.Version > SettingsVersionCurrent {
		return cloneSettings(s.cur), fmt.Errorf(
			"unsupported settings version %d (expected %d)",
			st.Version,
			SettingsVersionCurrent,
		)
	}
	changed := normalize(&st)
	s.cur = st
	if changed {
		if err := s.saveLocked(); err != nil {
			return cloneSettings(s.cur), fmt.Errorf("rewrite normalized settings: %w", err)
		}
	}
	return cloneSettings(s.cur), nil
}

// Save replaces the whole document.
func (s *Store) Save(st model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalize(&st)
	s.cur = cloneSettings(st)
	return s.saveLocked()
}

func (s *Store) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSettings(s.cur)
}

func (s *Store) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.UserSession
}

// SetCredential stores the trimmed token. The in-memory value is replaced even
// if writing the file fails.
func (s *Store) SetCredential(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur.UserSession = strings.TrimSpace(token)
	return s.saveLocked()
}

func (s *Store) FilterSet() model.FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.FilterSet()
}

func (s *Store) SaveFilterSet(fs model.FilterSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur.Filters = append([]string(nil), fs.Filters...)
	s.cur.ExactMatch = fs.ExactMatch
	normalize(&s.cur)
	return s.saveLocked()
}

func (s *Store) ShowFilteredOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.ShowFilteredOnly
}

func (s *Store) SetShowFilteredOnly(v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur.ShowFilteredOnly = v
	return s.saveLocked()
}

// -----------------------------
// Normalization
// -----------------------------

func normalize(st *model.Settings) bool {
	changed := false
	if st.Version != SettingsVersionCurrent {
		st.Version = SettingsVersionCurrent
		changed = true
	}
	if t := strings.TrimSpace(st.UserSession); t != st.UserSession {
		st.UserSession = t
		changed = true
	}
	if normalizeFilters(st) {
		changed = true
	}
	return changed
}

// normalizeFilters trims entries and drops empty and case-insensitive
// duplicates. First occurrence wins.
func normalizeFilters(st *model.Settings) bool {
	changed := st.Filters == nil
	seen := make(map[string]struct{}, len(st.Filters))
	keep := make([]string, 0, len(st.Filters))
	for _, f := range st.Filters {
		t := strings.TrimSpace(f)
		if t != f {
			changed = true
		}
		if t == "" {
			changed = true
			continue
		}
		k := strings.ToLower(t)
		if _, ok := seen[k]; ok {
			changed = true
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, t)
	}
	st.Filters = keep
	return changed
}

func cloneSettings(st model.Settings) model.Settings {
	st.Filters = append([]string{}, st.Filters...)
	return st
}

// -----------------------------
// Persistence
// -----------------------------

// saveLocked writes the settings atomically (tmp + fsync + rename).
func (s *Store) saveLocked() error {
	if s.path == "" {
		return errors.New("settings path is empty")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	s.cur.Version = SettingsVersionCurrent

	b, err := json.MarshalIndent(s.cur, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	if _, err := f.Write(b); err != nil {
		f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}

	// fsync directory for durability
	if df, err := os.Open(dir); err == nil {
		_ = syscall.Fsync(int(df.Fd()))
		df.Close()
	}

	return nil
}
