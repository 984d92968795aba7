// Package session provides exclusive access to one entity document. Every
// engine call made through a Session holds its lock for the duration of the
// call, so edits from several sources (commands, the file watcher) never
// interleave.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/eykd/entitygraph-go/internal/entity"
	"github.com/eykd/entitygraph-go/internal/entity/ops"
	"github.com/eykd/entitygraph-go/internal/journal"
)

// Recorder stores undo records. *journal.Journal implements it.
type Recorder interface {
	Append(rec journal.Record) error
}

// Options configure a Session.
type Options struct {
	// Name identifies the document in log records, usually its path.
	Name string
	// Logger receives operation logs. Nil discards them.
	Logger *slog.Logger
	// Recorder, when set, receives the prior snapshot of each successful
	// mutation once Commit has written the result.
	Recorder Recorder
	// MaxIDAttempts is passed to Paste.
	MaxIDAttempts int
}

// Session owns a document.
type Session struct {
	mu   sync.Mutex
	doc  *entity.Entity
	opts Options
	log  *slog.Logger
	// pending holds undo records for mutations not yet committed.
	pending []journal.Record
}

// New returns a session owning doc. The caller must not use doc afterwards
// except through the session.
func New(doc *entity.Entity, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		doc:  doc,
		opts: opts,
		log:  logger.With("component", "session", "document", opts.Name),
	}
}

// View runs fn with read access to the document. fn must not retain or
// modify it.
func (s *Session) View(fn func(doc *entity.Entity) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.doc)
}

// Swap replaces the owned document, as after an undo or an external reload.
func (s *Session) Swap(doc *entity.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.log.Debug("document swapped", "entities", doc.Entities.Len())
}

// Encode serialises the owned document.
func (s *Session) Encode() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entity.Encode(s.doc)
}

// Commit encodes the document and passes it to write. Pending undo records
// reach the Recorder only when write succeeds; a failed write discards them.
func (s *Session) Commit(write func(data []byte) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := entity.Encode(s.doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	pending := s.pending
	s.pending = nil
	if err := write(data); err != nil {
		s.log.Debug("write failed, dropping undo records", "records", len(pending), "error", err)
		return err
	}
	for _, rec := range pending {
		if err := s.opts.Recorder.Append(rec); err != nil {
			// The edit stands; a lost undo record is only logged.
			s.log.Warn("journal append failed", "op", rec.Op, "error", err)
		}
	}
	return nil
}

// Delete removes target and its subtree.
func (s *Session) Delete(target string) (ops.DeleteResult, error) {
	var res ops.DeleteResult
	err := s.mutate("delete", target, func(doc *entity.Entity) error {
		var err error
		res, err = ops.Delete(doc, target)
		return err
	})
	if err == nil {
		s.log.Info("deleted subtree", "node", target, "removed", len(res.Removed), "repaired", res.ReferencesRepaired)
	}
	return res, err
}

// Paste inserts data under parent.
func (s *Session) Paste(parent string, data *entity.CopiedData) (ops.PasteResult, error) {
	var res ops.PasteResult
	err := s.mutate("paste", parent, func(doc *entity.Entity) error {
		var err error
		res, err = ops.Paste(doc, ops.PasteParams{Parent: parent, Data: data, MaxIDAttempts: s.opts.MaxIDAttempts})
		return err
	})
	if err == nil {
		s.log.Info("pasted subtree", "node", res.Root, "parent", parent,
			"entities", len(res.Changelist), "scenesAdded", res.ExternalScenesAdded, "dropped", res.ReferencesDropped)
	}
	return res, err
}

// Reparent moves id under parent.
func (s *Session) Reparent(id, parent string) error {
	err := s.mutate("reparent", id, func(doc *entity.Entity) error {
		return ops.Reparent(doc, id, parent)
	})
	if err == nil {
		s.log.Info("reparented", "node", id, "parent", parent)
	}
	return err
}

// Replace swaps the sub-entity id for sub after validation. An invalid
// replacement leaves the document untouched and records nothing.
func (s *Session) Replace(id string, sub *entity.SubEntity) (ops.ValidationResult, error) {
	var res ops.ValidationResult
	err := s.mutate("replace", id, func(doc *entity.Entity) error {
		var err error
		res, err = ops.Replace(doc, id, sub)
		if err == nil && !res.Valid {
			return errRejected
		}
		return err
	})
	if errors.Is(err, errRejected) {
		s.log.Warn("replacement rejected", "node", id, "reason", res.Reason)
		return res, nil
	}
	return res, err
}

// Copy lifts target's subtree out as clipboard data.
func (s *Session) Copy(target string) (*entity.CopiedData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ops.Copy(s.doc, target)
}

// Audit runs ValidateDocument.
func (s *Session) Audit() []ops.Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ops.ValidateDocument(s.doc)
}

// errRejected marks a mutation that completed without changing anything.
var errRejected = errors.New("rejected")

// mutate runs fn under the lock, queueing the prior document for the
// journal when fn succeeds. The engine leaves the document untouched on
// error, so nothing is queued then.
func (s *Session) mutate(op, target string, fn func(doc *entity.Entity) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var before []byte
	if s.opts.Recorder != nil {
		var err error
		if before, err = entity.Encode(s.doc); err != nil {
			return fmt.Errorf("snapshot before %s: %w", op, err)
		}
	}
	if err := fn(s.doc); err != nil {
		s.log.Debug("operation failed", "op", op, "node", target, "error", err)
		return err
	}
	if s.opts.Recorder != nil {
		s.pending = append(s.pending, journal.NewRecord(op, target, before))
	}
	return nil
}
