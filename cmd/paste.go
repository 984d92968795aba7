package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/entity"
	"github.com/eykd/entitygraph-go/internal/entity/ops"
	"github.com/eykd/entitygraph-go/internal/session"
)

// NewPasteCmd creates the paste subcommand.
func NewPasteCmd(docIO DocumentIO) *cobra.Command {
	var (
		parent   string
		from     string
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:          "paste <document>",
		Short:        "Paste copied sub-entities under a parent with fresh ids",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			docPath := args[0]
			if parent == "" {
				return fmt.Errorf("--parent is required")
			}

			raw, err := readInput(cmd, docIO, from)
			if err != nil {
				return emitIOFailureAndError(cmd, jsonMode, err)
			}
			data, err := entity.DecodeClipboard(raw)
			if err != nil {
				diags := []entity.Diagnostic{entity.ErrorDiagnostic(err)}
				if werr := writeResult(cmd, jsonMode, entity.OpResult{Diagnostics: diags}); werr != nil {
					return werr
				}
				return fmt.Errorf("paste failed: %w", err)
			}

			result, err := runMutation(cmd, docIO, docPath, jsonMode, func(s *session.Session) (any, []entity.Diagnostic, error) {
				res, err := s.Paste(parent, data)
				if err != nil {
					return nil, nil, err
				}
				return res, pasteWarnings(res), nil
			})
			if err != nil {
				return err
			}

			if !jsonMode {
				res := result.(ops.PasteResult)
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Pasted %d entities under %s as %s\n",
					len(res.Changelist), sanitizeText(parent), res.Root); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Id of the sub-entity receiving the pasted root")
	cmd.Flags().StringVar(&from, "from", "-", "Clipboard file (- for stdin)")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")

	return cmd
}

// pasteWarnings reports the side effects of a paste the user should know
// about.
func pasteWarnings(res ops.PasteResult) []entity.Diagnostic {
	var diags []entity.Diagnostic
	for _, scene := range res.NewExternalScenes {
		diags = append(diags, entity.Diagnostic{
			Severity: entity.SeverityWarning,
			Code:     entity.CodeExternalSceneAdded,
			Message:  "added external scene " + scene,
		})
	}
	if res.ReferencesDropped > 0 {
		diags = append(diags, entity.Diagnostic{
			Severity: entity.SeverityWarning,
			Code:     entity.CodeReferencesDropped,
			Message:  fmt.Sprintf("dropped %d reference(s) to entities missing from the document", res.ReferencesDropped),
		})
	}
	return diags
}

// readInput reads path through docIO, or the command's stdin for "-".
func readInput(cmd *cobra.Command, docIO DocumentIO, path string) ([]byte, error) {
	if path == "-" || path == "" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return docIO.ReadDocument(cmd.Context(), path)
}
