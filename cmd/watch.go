package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/entity"
	"github.com/eykd/entitygraph-go/internal/session"
)

// Watcher delivers file system events.
type Watcher interface {
	Events() <-chan fsnotify.Event
	Errors() <-chan error
	Close() error
}

// WatchIO handles I/O for the watch command.
type WatchIO interface {
	DocumentIO
	// NewWatcher starts watching the directory holding path.
	NewWatcher(path string) (Watcher, error)
}

// NewWatchCmd creates the watch subcommand.
func NewWatchCmd(wio WatchIO) *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:          "watch <document>",
		Short:        "Re-validate a document every time it changes on disk",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			docPath := filepath.Clean(args[0])
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			rt, err := loadRuntime(cmd, wio, docPath)
			if err != nil {
				return emitIOFailureAndError(cmd, jsonMode, err)
			}
			doc, err := readDocument(ctx, wio, docPath)
			if err != nil {
				return emitIOFailureAndError(cmd, jsonMode, err)
			}

			w, err := wio.NewWatcher(docPath)
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer w.Close()

			dw := &documentWatcher{
				path:     docPath,
				io:       wio,
				session:  session.New(doc, session.Options{Name: docPath, Logger: rt.logger}),
				logger:   rt.logger.With("component", "watch"),
				out:      cmd.OutOrStdout(),
				jsonMode: jsonMode,
			}
			if err := dw.report(); err != nil {
				return err
			}
			return dw.run(ctx, w)
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output one result per change as JSON lines")

	return cmd
}

// documentWatcher keeps a session in step with a document on disk.
type documentWatcher struct {
	path     string
	io       DocumentIO
	session  *session.Session
	logger   *slog.Logger
	out      io.Writer
	jsonMode bool
}

// run processes events until ctx is done or the watcher closes.
func (dw *documentWatcher) run(ctx context.Context, w Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			if err := dw.handleEvent(ctx, event); err != nil {
				return err
			}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			dw.logger.Warn("watcher error", "error", err)
		}
	}
}

// handleEvent reloads the document when the event concerns it. A document
// that fails to read or decode leaves the last good state in place.
func (dw *documentWatcher) handleEvent(ctx context.Context, event fsnotify.Event) error {
	if filepath.Clean(event.Name) != dw.path {
		return nil
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		doc, err := readDocument(ctx, dw.io, dw.path)
		if err != nil {
			dw.logger.Warn("document unreadable, keeping last good state", "error", err)
			return nil
		}
		dw.session.Swap(doc)
		dw.logger.Debug("reloaded document", "entities", doc.Entities.Len())
		return dw.report()

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// Atomic writers rename over the document; the Create that follows reloads it.
		dw.logger.Debug("document replaced or removed", "op", event.Op.String())
	}
	return nil
}

// report audits the current document and writes the findings.
func (dw *documentWatcher) report() error {
	var diags []entity.Diagnostic
	for _, f := range dw.session.Audit() {
		diags = append(diags, findingDiagnostic(f))
	}
	if diags == nil {
		diags = []entity.Diagnostic{}
	}

	if dw.jsonMode {
		out := entity.OpResult{Version: "1", Diagnostics: diags}
		if err := json.NewEncoder(dw.out).Encode(out); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		return nil
	}
	if len(diags) == 0 {
		_, err := fmt.Fprintf(dw.out, "%s: ok\n", sanitizeText(dw.path))
		return err
	}
	fmt.Fprintf(dw.out, "%s: %d problem(s)\n", sanitizeText(dw.path), len(diags))
	for _, d := range diags {
		if _, err := fmt.Fprintf(dw.out, "  %s: %s (%s)\n", sanitizeText(d.NodeID), sanitizeText(d.Message), d.Code); err != nil {
			return err
		}
	}
	return nil
}

// fsWatcher adapts *fsnotify.Watcher to Watcher.
type fsWatcher struct {
	w *fsnotify.Watcher
}

func (f *fsWatcher) Events() <-chan fsnotify.Event { return f.w.Events }
func (f *fsWatcher) Errors() <-chan error          { return f.w.Errors }
func (f *fsWatcher) Close() error                  { return f.w.Close() }

// fileWatchIO implements WatchIO on top of a DocumentIO.
type fileWatchIO struct {
	DocumentIO
}

func newDefaultWatchIO(docIO DocumentIO) *fileWatchIO {
	return &fileWatchIO{DocumentIO: docIO}
}

// NewWatcher watches the directory holding path, so the document stays
// watched across atomic replacement.
func (f *fileWatchIO) NewWatcher(path string) (Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &fsWatcher{w: w}, nil
}
