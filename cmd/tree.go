package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/entity"
	"github.com/eykd/entitygraph-go/internal/entity/ops"
	"github.com/eykd/entitygraph-go/internal/resolve"
)

// NewTreeCmd creates the tree subcommand.
func NewTreeCmd(io DocumentIO) *cobra.Command {
	var (
		id       string
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:          "tree <document>",
		Short:        "Print the subtree under a sub-entity (default: the root entity)",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			docPath := args[0]
			doc, err := readDocument(cmd.Context(), io, docPath)
			if err != nil {
				return emitIOFailureAndError(cmd, jsonMode, err)
			}
			target := id
			if target == "" {
				target = doc.RootEntity
			}

			idx, err := ops.Index(doc)
			if err == nil {
				var ids []string
				ids, err = ops.Descendants(doc, target, idx)
				if err == nil {
					if jsonMode {
						return json.NewEncoder(cmd.OutOrStdout()).Encode(entity.OpResult{
							Version: "1", Diagnostics: []entity.Diagnostic{}, Result: ids,
						})
					}
					return printTree(cmd, doc, ids, target)
				}
			}
			if werr := writeResult(cmd, jsonMode, entity.OpResult{Diagnostics: []entity.Diagnostic{entity.ErrorDiagnostic(err)}}); werr != nil {
				return werr
			}
			return fmt.Errorf("tree failed: %w", err)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Id of the subtree root")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")

	return cmd
}

// printTree writes ids indented by depth below target.
func printTree(cmd *cobra.Command, doc *entity.Entity, ids []string, target string) error {
	depth := map[string]int{target: 0}
	for _, id := range ids {
		if id == target {
			continue
		}
		s, _ := doc.Entities.Get(id)
		parent, _ := s.Parent.LocalTarget()
		depth[id] = depth[parent] + 1
	}
	for _, id := range ids {
		line := strings.Repeat("  ", depth[id]) + sanitizeName(resolve.Describe(doc, id))
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}
