package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eykd/entitygraph-go/internal/entity"
	"github.com/eykd/entitygraph-go/internal/entity/ops"
)

// validateReport is the audit of one document.
type validateReport struct {
	Document    string              `json:"document"`
	Valid       bool                `json:"valid"`
	Diagnostics []entity.Diagnostic `json:"diagnostics"`
}

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd(io DocumentIO) *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:          "validate <document>...",
		Short:        "Check documents for dangling references and parent cycles",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd, io, args[0])
			if err != nil {
				return emitIOFailureAndError(cmd, jsonMode, err)
			}

			reports := make([]validateReport, len(args))
			eg, ctx := errgroup.WithContext(cmd.Context())
			eg.SetLimit(rt.cfg.Workers())
			for i, path := range args {
				eg.Go(func() error {
					reports[i] = validateOne(ctx, io, path)
					return nil
				})
			}
			_ = eg.Wait()

			var (
				all    []entity.Diagnostic
				failed int
			)
			for _, r := range reports {
				if !r.Valid {
					failed++
				}
				for _, d := range r.Diagnostics {
					d.Message = r.Document + ": " + d.Message
					all = append(all, d)
				}
				rt.logger.Debug("validated document", "component", "cmd", "path", r.Document, "findings", len(r.Diagnostics))
			}

			if err := writeResult(cmd, jsonMode, entity.OpResult{Diagnostics: all, Result: reports}); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d document(s) failed validation", failed, len(reports))
			}
			if !jsonMode {
				for _, r := range reports {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", sanitizeText(r.Document))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")

	return cmd
}

// validateOne reads, decodes and audits the document at path. Read and
// decode failures are reported as diagnostics.
func validateOne(ctx context.Context, io DocumentIO, path string) validateReport {
	rep := validateReport{Document: path, Diagnostics: []entity.Diagnostic{}}
	doc, err := readDocument(ctx, io, path)
	if err != nil {
		rep.Diagnostics = append(rep.Diagnostics, entity.Diagnostic{
			Severity: entity.SeverityError,
			Code:     entity.CodeIOOrDecodeFailure,
			Message:  err.Error(),
		})
		return rep
	}
	for _, f := range ops.ValidateDocument(doc) {
		rep.Diagnostics = append(rep.Diagnostics, findingDiagnostic(f))
	}
	rep.Valid = !hasDiagnosticError(rep.Diagnostics)
	return rep
}

// findingDiagnostic converts an audit finding to a diagnostic.
func findingDiagnostic(f ops.Finding) entity.Diagnostic {
	return entity.Diagnostic{
		Severity: entity.SeverityError,
		Code:     f.Code,
		Message:  f.Reason,
		NodeID:   f.NodeID,
	}
}
