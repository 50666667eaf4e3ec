// Package archive keeps generated scripts on disk so they can be replayed
// without another model call. Each run is a zstd-compressed JSON record
// named after the script ID, listed in a JSON index.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Yates-Labs/sitcom/internal/script"
	"github.com/klauspost/compress/zstd"
)

var (
	ErrNotFound  = errors.New("archived run not found")
	ErrAmbiguous = errors.New("run id prefix is ambiguous")
)

// IndexFile is the name of the index inside the archive directory.
const IndexFile = "index.json"

// Record is one archived run.
type Record struct {
	Script *script.Script `json:"script"`

	// Raw is the unparsed model reply
	Raw string `json:"raw,omitempty"`
}

// Entry summarises a run in the index.
type Entry struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Lines     int       `json:"lines"`
	Speakers  []string  `json:"speakers,omitempty"`
	File      string    `json:"file"` // Relative to the archive dir
}

// Store reads and writes runs under one directory. It is safe for
// concurrent use.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open returns a store rooted at dir. The directory is created on the
// first Save.
func Open(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the archive directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the record path for a script ID.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+".json.zst")
}

// Save compresses rec and adds it to the index.
func (s *Store) Save(rec Record) (Entry, error) {
	if rec.Script == nil || rec.Script.ID == "" {
		return Entry{}, fmt.Errorf("archive: record has no script id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("create archive dir: %w", err)
	}

	path := s.Path(rec.Script.ID)
	if err := writeRecord(path, rec); err != nil {
		return Entry{}, err
	}

	entries, err := s.readIndex()
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:        rec.Script.ID,
		Prompt:    rec.Script.Prompt,
		Model:     rec.Script.Model,
		CreatedAt: rec.Script.CreatedAt,
		Lines:     rec.Script.Len(),
		Speakers:  rec.Script.Speakers(),
		File:      filepath.Base(path),
	}
	entries[entry.ID] = entry

	if err := s.writeIndex(entries); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Load reads the run with the given ID. A unique prefix of an ID is
// accepted too.
func (s *Store) Load(id string) (*Record, error) {
	entry, err := s.Find(id)
	if err != nil {
		return nil, err
	}
	return readRecord(filepath.Join(s.dir, entry.File))
}

// Find resolves id, or a unique prefix of it, to its index entry.
func (s *Store) Find(id string) (Entry, error) {
	if id == "" {
		return Entry{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	s.mu.Lock()
	entries, err := s.readIndex()
	s.mu.Unlock()
	if err != nil {
		return Entry{}, err
	}

	if e, ok := entries[id]; ok {
		return e, nil
	}

	var matches []Entry
	for key, e := range entries {
		if strings.HasPrefix(key, id) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return Entry{}, fmt.Errorf("%w: %s matches %d runs", ErrAmbiguous, id, len(matches))
	}
}

// List returns every indexed run, newest first.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	entries, err := s.readIndex()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	list := make([]Entry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *Store) readIndex() (map[string]Entry, error) {
	entries := make(map[string]Entry)

	data, err := os.ReadFile(filepath.Join(s.dir, IndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return entries, nil
}

func (s *Store) writeIndex(entries map[string]Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, IndexFile), data, 0o644)
}

func writeRecord(path string, rec Record) error {
	dest, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}

	if err := json.NewEncoder(encoder).Encode(rec); err != nil {
		encoder.Close()
		return fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}
	return nil
}

func readRecord(path string) (*Record, error) {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	decoder, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var rec Record
	if err := json.NewDecoder(decoder).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	if rec.Script == nil {
		return nil, fmt.Errorf("decompress: %s holds no script", filepath.Base(path))
	}
	return &rec, nil
}
