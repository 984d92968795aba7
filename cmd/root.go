// Package cmd implements the qne CLI commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// NewRootCmd creates the root qne command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "qne",
		Short:         "qne - reference-graph editor for entity documents",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          rootRunE,
	}
	root.PersistentFlags().String("config", "", "configuration file (default: .qne.yaml next to the document)")
	root.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")

	docIO := newDefaultDocumentIO()
	root.AddCommand(NewInitCmd(newDefaultInitIO()))
	root.AddCommand(NewValidateCmd(docIO))
	root.AddCommand(NewRefsCmd(docIO))
	root.AddCommand(NewTreeCmd(docIO))
	root.AddCommand(NewDeleteCmd(docIO))
	root.AddCommand(NewCopyCmd(docIO))
	root.AddCommand(NewPasteCmd(docIO))
	root.AddCommand(NewReparentCmd(docIO))
	root.AddCommand(NewReplaceCmd(docIO))
	root.AddCommand(NewEditCmd(newDefaultEditIO(docIO)))
	root.AddCommand(NewUndoCmd(docIO))
	root.AddCommand(NewWatchCmd(newDefaultWatchIO(docIO)))
	return root
}

func rootRunE(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}

// newLogger builds the command logger. --verbose forces debug level.
func newLogger(cmd *cobra.Command, w io.Writer, level slog.Level) *slog.Logger {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// emitIOFailureAndError writes a QNE007 error diagnostic and returns a non-nil
// error so the caller exits with non-zero code. When jsonMode is true the
// diagnostic is written as an entity.OpResult JSON object to stdout; otherwise
// it is written as a human-readable message to stderr.
func emitIOFailureAndError(cmd *cobra.Command, jsonMode bool, origErr error) error {
	if jsonMode {
		diags := []entity.Diagnostic{{Severity: entity.SeverityError, Code: entity.CodeIOOrDecodeFailure, Message: origErr.Error()}}
		out := entity.OpResult{Version: "1", Changed: false, Diagnostics: diags}
		_ = json.NewEncoder(cmd.OutOrStdout()).Encode(out)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: I/O or decode failure: %v (%s)\n", origErr, entity.CodeIOOrDecodeFailure)
	}
	return fmt.Errorf("operation failed: %w", origErr)
}

// printDiagnostics writes each diagnostic to stderr in human-readable form.
func printDiagnostics(cmd *cobra.Command, diags []entity.Diagnostic) {
	for _, d := range diags {
		if d.NodeID != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s (%s)\n", d.Severity, sanitizeText(d.NodeID), sanitizeText(d.Message), d.Code)
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (%s)\n", d.Severity, sanitizeText(d.Message), d.Code)
	}
}

// writeResult emits the outcome of a command: an OpResult under --json, the
// diagnostics on stderr otherwise.
func writeResult(cmd *cobra.Command, jsonMode bool, out entity.OpResult) error {
	if out.Diagnostics == nil {
		out.Diagnostics = []entity.Diagnostic{}
	}
	out.Version = "1"
	if jsonMode {
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		return nil
	}
	printDiagnostics(cmd, out.Diagnostics)
	return nil
}
