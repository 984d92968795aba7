package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/entity"
	"github.com/eykd/entitygraph-go/internal/session"
)

// reparentResult is the JSON result of the reparent command.
type reparentResult struct {
	ID     string `json:"id"`
	Parent string `json:"parent"`
}

// NewReparentCmd creates the reparent subcommand.
func NewReparentCmd(io DocumentIO) *cobra.Command {
	var (
		id       string
		parent   string
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:          "reparent <document>",
		Short:        "Move a sub-entity under a new parent",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			docPath := args[0]
			if id == "" || parent == "" {
				return fmt.Errorf("--id and --parent are required")
			}

			_, err := runMutation(cmd, io, docPath, jsonMode, func(s *session.Session) (any, []entity.Diagnostic, error) {
				if err := s.Reparent(id, parent); err != nil {
					return nil, nil, err
				}
				return reparentResult{ID: id, Parent: parent}, nil, nil
			})
			if err != nil {
				return err
			}

			if !jsonMode {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Moved %s under %s\n", sanitizeText(id), sanitizeText(parent)); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Id of the sub-entity to move")
	cmd.Flags().StringVar(&parent, "parent", "", "Id of the new parent")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")

	return cmd
}
