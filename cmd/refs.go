package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/entity"
	"github.com/eykd/entitygraph-go/internal/entity/ops"
	"github.com/eykd/entitygraph-go/internal/resolve"
)

// refLine is one reference reported by the refs command.
type refLine struct {
	Kind     string `json:"kind"`
	Relation string `json:"relation"`
	Node     string `json:"node"`
	Name     string `json:"name"`
}

// refsResult is the JSON result of the refs command.
type refsResult struct {
	ID       string    `json:"id"`
	Incoming []refLine `json:"incoming"`
	Outgoing []refLine `json:"outgoing"`
}

// NewRefsCmd creates the refs subcommand.
func NewRefsCmd(io DocumentIO) *cobra.Command {
	var (
		id       string
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:          "refs <document>",
		Short:        "List the references into and out of a sub-entity",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			docPath := args[0]
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			ctx := cmd.Context()

			rt, err := loadRuntime(cmd, io, docPath)
			if err != nil {
				return emitIOFailureAndError(cmd, jsonMode, err)
			}
			doc, err := readDocument(ctx, io, docPath)
			if err != nil {
				return emitIOFailureAndError(cmd, jsonMode, err)
			}

			res, err := collectRefs(cmd, rt, doc, id)
			if err != nil {
				if werr := writeResult(cmd, jsonMode, entity.OpResult{Diagnostics: []entity.Diagnostic{entity.ErrorDiagnostic(err)}}); werr != nil {
					return werr
				}
				return fmt.Errorf("refs failed: %w", err)
			}

			if err := writeResult(cmd, jsonMode, entity.OpResult{Result: res}); err != nil {
				return err
			}
			if jsonMode {
				return nil
			}
			for _, l := range append(res.Incoming, res.Outgoing...) {
				arrow := "<-"
				if l.Kind == "outgoing" {
					arrow = "->"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s\n", arrow, sanitizeName(l.Name), sanitizeText(l.Relation)); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Id of the sub-entity to inspect")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")

	return cmd
}

// collectRefs gathers the incoming references of id from the reverse index
// and its outgoing references, resolving external targets through the
// scenes named in configuration.
func collectRefs(cmd *cobra.Command, rt *runtime, doc *entity.Entity, id string) (refsResult, error) {
	s, ok := doc.Entities.Get(id)
	if !ok {
		return refsResult{}, entity.NewOpError("refs", id, "", entity.ErrNoSuchNode)
	}
	idx, err := ops.Index(doc)
	if err != nil {
		return refsResult{}, err
	}
	edges, err := ops.References(id, s)
	if err != nil {
		return refsResult{}, err
	}

	res := refsResult{ID: id, Incoming: []refLine{}, Outgoing: []refLine{}}
	for _, rr := range idx[id] {
		res.Incoming = append(res.Incoming, refLine{
			Kind:     "incoming",
			Relation: rr.Relation.String(),
			Node:     rr.From,
			Name:     resolve.Describe(doc, rr.From),
		})
	}

	refs := make([]entity.Ref, len(edges))
	for i, e := range edges {
		refs[i] = e.Ref
	}
	resolver := resolve.New(resolve.NewFileLoader(rt.cfg.ScenePaths()), rt.logger, rt.cfg.Workers())
	names, err := resolver.Names(cmd.Context(), doc, refs)
	if err != nil {
		return refsResult{}, entity.NewOpError("refs", id, "", err)
	}
	for i, e := range edges {
		res.Outgoing = append(res.Outgoing, refLine{
			Kind:     "outgoing",
			Relation: e.Relation.String(),
			Node:     e.Ref.String(),
			Name:     names[i],
		})
	}
	return res, nil
}
