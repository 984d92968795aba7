package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/entity"
	"github.com/eykd/entitygraph-go/internal/entity/ops"
	"github.com/eykd/entitygraph-go/internal/session"
)

// NewDeleteCmd creates the delete subcommand.
func NewDeleteCmd(io DocumentIO) *cobra.Command {
	var (
		id       string
		yes      bool
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:          "delete <document>",
		Short:        "Delete a sub-entity and its subtree, repairing references to it",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			docPath := args[0]
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			if !yes {
				diags := []entity.Diagnostic{{
					Severity: entity.SeverityError,
					Code:     entity.CodeConfirmation,
					Message:  "delete requires --yes",
					NodeID:   id,
				}}
				if err := writeResult(cmd, jsonMode, entity.OpResult{Diagnostics: diags}); err != nil {
					return err
				}
				return fmt.Errorf("delete not confirmed")
			}

			result, err := runMutation(cmd, io, docPath, jsonMode, func(s *session.Session) (any, []entity.Diagnostic, error) {
				res, err := s.Delete(id)
				if err != nil {
					return nil, nil, err
				}
				var warnings []entity.Diagnostic
				if res.ReferencesRepaired > 0 {
					warnings = append(warnings, entity.Diagnostic{
						Severity: entity.SeverityWarning,
						Code:     entity.CodeReferencesRepaired,
						Message:  fmt.Sprintf("removed %d reference(s) to deleted entities", res.ReferencesRepaired),
					})
				}
				return res, warnings, nil
			})
			if err != nil {
				return err
			}

			if !jsonMode {
				res := result.(ops.DeleteResult)
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%d entities) from %s\n",
					sanitizeText(id), len(res.Removed), sanitizeText(docPath)); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Id of the sub-entity to delete")
	cmd.Flags().BoolVar(&yes, "yes", false, "Required confirmation flag")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")

	return cmd
}
