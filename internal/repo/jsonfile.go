package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/metrics"
)

// Record is one entry of a collection, kept exactly as submitted.
type Record = map[string]any

// Collection is an ordered list of records persisted as one JSON document.
// Every mutation runs read-modify-write under the collection's lock, and the
// document is replaced by rename, so readers never see a partial file and
// concurrent appends are never lost.
type Collection struct {
	name string
	path string
	mu   sync.Mutex
}

func NewCollection(dir, name string) *Collection {
	return &Collection{name: name, path: filepath.Join(dir, name+".json")}
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Path() string { return c.path }

// List returns every record. A missing or unreadable document yields an
// empty list; the failure is logged, never returned.
func (c *Collection) List(ctx context.Context) []Record {
	return c.read(ctx)
}

func (c *Collection) Append(ctx context.Context, rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := c.read(ctx)
	records = append(records, rec)
	return c.write(records)
}

// UpdateFirst applies mutate to the first record matching match and
// rewrites the document. It reports false, without writing, when nothing
// matches.
func (c *Collection) UpdateFirst(ctx context.Context, match func(Record) bool, mutate func(Record)) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := c.read(ctx)
	for _, rec := range records {
		if match(rec) {
			mutate(rec)
			return true, c.write(records)
		}
	}
	return false, nil
}

func (c *Collection) read(ctx context.Context) []Record {
	l := logging.FromContext(ctx).With("collection", c.name)

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.Debug("collection_missing", "path", c.path)
		} else {
			l.Error("collection_read_failed", "path", c.path, "error", err)
		}
		return []Record{}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []Record
	if err := dec.Decode(&records); err != nil {
		l.Error("collection_decode_failed", "path", c.path, "error", err)
		return []Record{}
	}
	if records == nil {
		records = []Record{}
	}
	return records
}

func (c *Collection) write(records []Record) error {
	err := c.rewrite(records)
	metrics.ObserveWrite(c.name, err)
	return err
}

// rewrite replaces the document through a temp file so readers never see
// a partial write.
func (c *Collection) rewrite(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+c.name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", c.name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", c.name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", c.name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", c.name, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("replace %s: %w", c.name, err)
	}
	return nil
}
