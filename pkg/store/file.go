package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cofina/leads/pkg/constants"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/logging"
)

// identitiesKey is the top-level key of the accepted identity set. Every
// other top-level key is a category name.
const identitiesKey = "linkedin_accepted_urls"

// blob is the on-disk layout of a File repository: one object per category
// at the top level, next to the accepted identity list.
type blob struct {
	Categories         map[string]*State
	AcceptedIdentities []string
}

func (b *blob) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Categories)+1)
	for name, st := range b.Categories {
		out[name] = st
	}
	ids := b.AcceptedIdentities
	if ids == nil {
		ids = []string{}
	}
	out[identitiesKey] = ids
	return json.Marshal(out)
}

func (b *blob) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	b.Categories = make(map[string]*State, len(top))
	for key, raw := range top {
		if key == identitiesKey {
			if err := json.Unmarshal(raw, &b.AcceptedIdentities); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			continue
		}
		st := NewState()
		if err := json.Unmarshal(raw, st); err != nil {
			return fmt.Errorf("category %q: %w", key, err)
		}
		st.ensure()
		b.Categories[key] = st
	}
	return nil
}

// File is a Repository backed by a single JSON document.
// Every write replaces the document atomically.
type File struct {
	mu     sync.Mutex
	path   string
	logger *zerolog.Logger
}

// FileOption configures a File repository.
type FileOption func(*File)

// WithFileLogger sets the logger used by the file repository.
func WithFileLogger(l *zerolog.Logger) FileOption {
	return func(f *File) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFile returns a repository stored at path. The file is created on first save.
func NewFile(path string, opts ...FileOption) *File {
	f := &File{path: path}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logging.Default()
	}
	return f
}

// Path returns the location of the JSON document.
func (f *File) Path() string { return f.path }

// Load implements Repository.
func (f *File) Load(_ context.Context, category string) (*State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := f.read()
	if err != nil {
		return nil, err
	}
	if st, ok := b.Categories[category]; ok && st != nil {
		return st.Clone(), nil
	}
	return NewState(), nil
}

// Save implements Repository.
func (f *File) Save(_ context.Context, category string, change *Change) error {
	return f.modify(category, change, (*State).Merge)
}

// Replace implements Repository.
func (f *File) Replace(_ context.Context, category string, change *Change) error {
	return f.modify(category, change, (*State).Overlay)
}

func (f *File) modify(category string, change *Change, apply func(*State, *State)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := f.read()
	if err != nil {
		return err
	}
	st, ok := b.Categories[category]
	if !ok || st == nil {
		st = NewState()
		b.Categories[category] = st
	}
	apply(st, change)

	if err := f.write(b); err != nil {
		return err
	}
	f.logger.Debug().
		Str("category", category).
		Int("entries", change.Len()).
		Str("path", f.path).
		Msg("Saved category state")
	return nil
}

// AcceptedIdentities implements Repository.
func (f *File) AcceptedIdentities(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := f.read()
	if err != nil {
		return nil, err
	}
	return sortedSet(b.AcceptedIdentities), nil
}

// SetAcceptedIdentities implements Repository.
func (f *File) SetAcceptedIdentities(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := f.read()
	if err != nil {
		return err
	}
	b.AcceptedIdentities = sortedSet(ids)
	return f.write(b)
}

// Close implements Repository.
func (f *File) Close() error { return nil }

func (f *File) read() (*blob, error) {
	b := &blob{Categories: make(map[string]*State)}

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return b, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", f.path, err)
	}
	if len(data) == 0 {
		return b, nil
	}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, errors.WrapParse("json", f.path, err)
	}
	return b, nil
}

func (f *File) write(b *blob) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return errors.WrapParse("json", f.path, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state_*.json")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.WrapIO("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("write", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("chmod", tmpPath, err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("move", f.path, err)
	}
	return nil
}
