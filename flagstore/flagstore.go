// Package flagstore provides durable flag stores for the has-active-session
// indicator. Flags survive process restarts; identity data never goes here.
package flagstore

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/adrg/xdg"

	access "github.com/fieldline/access-go"
)

// FileStore persists flags as a JSON map in a single file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// compile-time check
var _ access.FlagStore = (*FileStore)(nil)

// NewFile creates a file store under the user state directory
// (e.g. ~/.local/state/fieldline/flags.json).
func NewFile() (*FileStore, error) {
	path, err := xdg.StateFile("fieldline/flags.json")
	if err != nil {
		return nil, fmt.Errorf("flagstore: resolving state file: %w", err)
	}
	return NewFileAt(path), nil
}

// NewFileAt creates a file store at an explicit path.
func NewFileAt(path string) *FileStore {
	return &FileStore{path: path}
}

// Set records a flag with the given timestamp.
func (f *FileStore) Set(key string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	flags, err := f.load()
	if err != nil {
		return err
	}
	flags[key] = at
	return f.save(flags)
}

// Get returns the flag's timestamp and whether it is set.
func (f *FileStore) Get(key string) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	flags, err := f.load()
	if err != nil {
		return time.Time{}, false, err
	}
	at, ok := flags[key]
	return at, ok, nil
}

// Remove clears a flag. Removing an absent flag is not an error.
func (f *FileStore) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	flags, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := flags[key]; !ok {
		return nil
	}
	delete(flags, key)
	return f.save(flags)
}

func (f *FileStore) load() (map[string]time.Time, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]time.Time), nil
	}
	if err != nil {
		return nil, fmt.Errorf("flagstore: reading %s: %w", f.path, err)
	}

	flags := make(map[string]time.Time)
	if err := json.Unmarshal(data, &flags); err != nil {
		return nil, fmt.Errorf("flagstore: parsing %s: %w", f.path, err)
	}
	return flags, nil
}

func (f *FileStore) save(flags map[string]time.Time) error {
	data, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("flagstore: encoding flags: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("flagstore: writing %s: %w", f.path, err)
	}
	return nil
}

// Mem is an in-memory FlagStore for tests.
type Mem struct {
	mu    sync.Mutex
	flags map[string]time.Time
}

// compile-time check
var _ access.FlagStore = (*Mem)(nil)

// NewMem creates an empty in-memory flag store.
func NewMem() *Mem {
	return &Mem{flags: make(map[string]time.Time)}
}

// Set records a flag with the given timestamp.
func (m *Mem) Set(key string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[key] = at
	return nil
}

// Get returns the flag's timestamp and whether it is set.
func (m *Mem) Get(key string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.flags[key]
	return at, ok, nil
}

// Remove clears a flag.
func (m *Mem) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flags, key)
	return nil
}
