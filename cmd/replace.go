package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/entity"
	"github.com/eykd/entitygraph-go/internal/session"
)

// NewReplaceCmd creates the replace subcommand.
func NewReplaceCmd(io DocumentIO) *cobra.Command {
	var (
		id       string
		from     string
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:          "replace <document>",
		Short:        "Replace a sub-entity with an edited version after validating its references",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			docPath := args[0]
			if id == "" {
				return fmt.Errorf("--id is required")
			}

			raw, err := readInput(cmd, io, from)
			if err != nil {
				return emitIOFailureAndError(cmd, jsonMode, err)
			}
			var sub entity.SubEntity
			if err := json.Unmarshal(raw, &sub); err != nil {
				return emitIOFailureAndError(cmd, jsonMode, fmt.Errorf("decoding sub-entity: %w", err))
			}

			if _, err := runMutation(cmd, io, docPath, jsonMode, replaceMutation(id, &sub)); err != nil {
				return err
			}

			if !jsonMode {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Replaced %s\n", sanitizeText(id)); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Id of the sub-entity to replace")
	cmd.Flags().StringVar(&from, "from", "-", "Sub-entity JSON file (- for stdin)")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")

	return cmd
}

// replaceMutation swaps id for sub, failing when sub does not validate.
func replaceMutation(id string, sub *entity.SubEntity) mutation {
	return func(s *session.Session) (any, []entity.Diagnostic, error) {
		res, err := s.Replace(id, sub)
		if err != nil {
			return nil, nil, err
		}
		if !res.Valid {
			return nil, nil, entity.NewOpError("replace", id, "", rejection(res.Code, res.Reason))
		}
		return res, nil, nil
	}
}

// rejection turns a failed validation into an error carrying the matching
// sentinel.
func rejection(code, reason string) error {
	if code == entity.CodeMalformedReference {
		return fmt.Errorf("%w: %s", entity.ErrMalformedReference, reason)
	}
	return fmt.Errorf("%w: %s", entity.ErrDanglingReference, reason)
}
