// Package journal persists pre-operation document snapshots so that a
// mutating command can be undone.
//
// The journal is a single msgpack-encoded file holding the most recent
// records, oldest first. Every change rewrites the file atomically.
package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/eykd/entitygraph-go/internal/fsutil"
)

// ErrEmpty is returned by Pop when there is nothing to undo.
var ErrEmpty = errors.New("journal is empty")

// Record is one undoable operation.
type Record struct {
	ID     string `msgpack:"id"`
	Op     string `msgpack:"op"`
	Target string `msgpack:"target"`
	At     string `msgpack:"at"`
	// Snapshot is the encoded document as it was before the operation.
	Snapshot []byte `msgpack:"snapshot"`
}

// NewRecord builds a record stamped with a fresh id and the current time.
func NewRecord(op, target string, snapshot []byte) Record {
	return Record{
		ID:       uuid.NewString(),
		Op:       op,
		Target:   target,
		At:       NowUTC(),
		Snapshot: snapshot,
	}
}

// NowUTC returns the current UTC time formatted as RFC3339 with second-level
// precision and a "Z" suffix, e.g. "2006-01-02T15:04:05Z".
func NowUTC() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}

// Journal is a bounded undo stack stored at Path.
type Journal struct {
	Path string
	// Limit is the number of records kept; older ones are discarded.
	Limit int
}

// Open returns the journal stored at path.
func Open(path string, limit int) *Journal {
	return &Journal{Path: path, Limit: limit}
}

// List returns the stored records, oldest first. A missing file is an empty
// journal.
func (j *Journal) List() ([]Record, error) {
	data, err := os.ReadFile(j.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	var recs []Record
	if err := msgpack.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decoding journal %s: %w", j.Path, err)
	}
	return recs, nil
}

// Append pushes rec, dropping the oldest records beyond Limit.
func (j *Journal) Append(rec Record) error {
	recs, err := j.List()
	if err != nil {
		return err
	}
	recs = append(recs, rec)
	if j.Limit > 0 && len(recs) > j.Limit {
		recs = recs[len(recs)-j.Limit:]
	}
	return j.save(recs)
}

// Last returns the most recent record without removing it.
func (j *Journal) Last() (Record, error) {
	recs, err := j.List()
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, ErrEmpty
	}
	return recs[len(recs)-1], nil
}

// Pop removes and returns the most recent record.
func (j *Journal) Pop() (Record, error) {
	recs, err := j.List()
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, ErrEmpty
	}
	last := recs[len(recs)-1]
	if err := j.save(recs[:len(recs)-1]); err != nil {
		return Record{}, err
	}
	return last, nil
}

func (j *Journal) save(recs []Record) error {
	data, err := msgpack.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encoding journal: %w", err)
	}
	return fsutil.WriteFileAtomic(j.Path, data)
}
