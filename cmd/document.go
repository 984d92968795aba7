package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/config"
	"github.com/eykd/entitygraph-go/internal/entity"
	"github.com/eykd/entitygraph-go/internal/fsutil"
	"github.com/eykd/entitygraph-go/internal/journal"
	"github.com/eykd/entitygraph-go/internal/session"
)

// JournalStore is the undo journal as seen by the commands.
type JournalStore interface {
	Append(rec journal.Record) error
	Last() (journal.Record, error)
	Pop() (journal.Record, error)
}

// DocumentIO handles I/O shared by the document commands.
type DocumentIO interface {
	// ReadDocument reads the file at path.
	ReadDocument(ctx context.Context, path string) ([]byte, error)
	// WriteDocumentAtomic writes data to path atomically via a temp file.
	WriteDocumentAtomic(ctx context.Context, path string, data []byte) error
	// LoadConfig loads override when set, else the config next to docPath.
	LoadConfig(docPath, override string) (*config.Config, error)
	// Journal opens the undo journal stored at path.
	Journal(path string, limit int) JournalStore
}

// runtime is the per-invocation environment of a document command.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
}

// loadRuntime reads configuration for docPath and builds the logger.
func loadRuntime(cmd *cobra.Command, io DocumentIO, docPath string) (*runtime, error) {
	override, _ := cmd.Flags().GetString("config")
	cfg, err := io.LoadConfig(docPath, override)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger(cmd, cmd.ErrOrStderr(), cfg.SlogLevel()).With("document", docPath)
	return &runtime{cfg: cfg, logger: logger}, nil
}

// readDocument reads and decodes the document at path.
func readDocument(ctx context.Context, io DocumentIO, path string) (*entity.Entity, error) {
	data, err := io.ReadDocument(ctx, path)
	if err != nil {
		return nil, err
	}
	return entity.Decode(data)
}

// mutation is one engine call made by a mutating command. It returns the
// command's result payload and any warnings.
type mutation func(s *session.Session) (result any, warnings []entity.Diagnostic, err error)

// runMutation loads the document, applies op through a session (journaling
// the prior state when enabled), and writes the document back only when op
// succeeds. It reports the outcome as an OpResult.
func runMutation(cmd *cobra.Command, io DocumentIO, docPath string, jsonMode bool, op mutation) (any, error) {
	ctx := cmd.Context()
	rt, err := loadRuntime(cmd, io, docPath)
	if err != nil {
		return nil, emitIOFailureAndError(cmd, jsonMode, err)
	}
	doc, err := readDocument(ctx, io, docPath)
	if err != nil {
		return nil, emitIOFailureAndError(cmd, jsonMode, err)
	}

	opts := session.Options{
		Name:          docPath,
		Logger:        rt.logger,
		MaxIDAttempts: rt.cfg.MaxIDAttempts(),
	}
	if rt.cfg.JournalEnabled() {
		opts.Recorder = io.Journal(rt.cfg.JournalPath(docPath), rt.cfg.JournalLimit())
	}
	s := session.New(doc, opts)

	result, warnings, opErr := op(s)
	if opErr != nil {
		diags := []entity.Diagnostic{entity.ErrorDiagnostic(opErr)}
		if err := writeResult(cmd, jsonMode, entity.OpResult{Diagnostics: diags}); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s failed: %w", cmd.Name(), opErr)
	}
	encoded := false
	err = s.Commit(func(data []byte) error {
		encoded = true
		return io.WriteDocumentAtomic(ctx, docPath, data)
	})
	if err != nil && !encoded {
		return nil, emitIOFailureAndError(cmd, jsonMode, err)
	}
	if err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}
	return result, writeResult(cmd, jsonMode, entity.OpResult{Changed: true, Diagnostics: warnings, Result: result})
}

// fileDocumentIO implements DocumentIO using OS file I/O.
type fileDocumentIO struct{}

func newDefaultDocumentIO() *fileDocumentIO {
	return &fileDocumentIO{}
}

// ReadDocument reads the file at path.
func (f *fileDocumentIO) ReadDocument(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteDocumentAtomic writes data to path atomically via a temp file.
func (f *fileDocumentIO) WriteDocumentAtomic(_ context.Context, path string, data []byte) error {
	return fsutil.WriteFileAtomic(path, data)
}

// LoadConfig loads the configuration file.
func (f *fileDocumentIO) LoadConfig(docPath, override string) (*config.Config, error) {
	if override != "" {
		if _, err := os.Stat(override); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %s does not exist", override)
		}
		return config.Load(override)
	}
	return config.LoadForDocument(docPath)
}

// Journal opens the undo journal at path.
func (f *fileDocumentIO) Journal(path string, limit int) JournalStore {
	return journal.Open(path, limit)
}
