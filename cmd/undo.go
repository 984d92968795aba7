package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/entity"
	"github.com/eykd/entitygraph-go/internal/journal"
)

// undoResult is the JSON result of the undo command.
type undoResult struct {
	Op     string `json:"op"`
	Target string `json:"target"`
	At     string `json:"at"`
}

// NewUndoCmd creates the undo subcommand.
func NewUndoCmd(io DocumentIO) *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:          "undo <document>",
		Short:        "Restore the document as it was before the last journaled operation",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			docPath := args[0]
			ctx := cmd.Context()

			rt, err := loadRuntime(cmd, io, docPath)
			if err != nil {
				return emitIOFailureAndError(cmd, jsonMode, err)
			}
			j := io.Journal(rt.cfg.JournalPath(docPath), rt.cfg.JournalLimit())
			rec, err := j.Last()
			if errors.Is(err, journal.ErrEmpty) {
				if err := writeResult(cmd, jsonMode, entity.OpResult{}); err != nil {
					return err
				}
				if !jsonMode {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to undo")
				}
				return nil
			}
			if err != nil {
				return emitIOFailureAndError(cmd, jsonMode, err)
			}
			// Refuse snapshots that no longer decode rather than writing garbage.
			if _, err := entity.Decode(rec.Snapshot); err != nil {
				return emitIOFailureAndError(cmd, jsonMode, fmt.Errorf("journal record %s: %w", rec.ID, err))
			}
			if err := io.WriteDocumentAtomic(ctx, docPath, rec.Snapshot); err != nil {
				return fmt.Errorf("writing document: %w", err)
			}
			// The record leaves the journal only once its snapshot is on disk.
			if _, err := j.Pop(); err != nil {
				rt.logger.Warn("journal pop failed", "component", "cmd", "record", rec.ID, "error", err)
			}
			rt.logger.Info("undid operation", "component", "cmd", "op", rec.Op, "node", rec.Target, "record", rec.ID)

			res := undoResult{Op: rec.Op, Target: rec.Target, At: rec.At}
			if err := writeResult(cmd, jsonMode, entity.OpResult{Changed: true, Result: res}); err != nil {
				return err
			}
			if !jsonMode {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Undid %s of %s (%s)\n", rec.Op, sanitizeText(rec.Target), rec.At); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")

	return cmd
}
