package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/entity"
	"github.com/eykd/entitygraph-go/internal/entity/ops"
)

// NewCopyCmd creates the copy subcommand.
func NewCopyCmd(io DocumentIO) *cobra.Command {
	var (
		id  string
		out string
	)

	cmd := &cobra.Command{
		Use:          "copy <document>",
		Short:        "Copy a sub-entity and its subtree as clipboard JSON",
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
				return err
			}
			doc, err := readDocument(ctx, io, docPath)
			if err != nil {
				return emitIOFailureAndError(cmd, false, err)
			}
			cd, err := ops.Copy(doc, id)
			if err != nil {
				printDiagnostics(cmd, []entity.Diagnostic{entity.ErrorDiagnostic(err)})
				return fmt.Errorf("copy failed: %w", err)
			}
			data, err := entity.EncodeClipboard(cd)
			if err != nil {
				return fmt.Errorf("encoding clipboard: %w", err)
			}
			rt.logger.Debug("copied subtree", "component", "cmd", "node", id, "entities", cd.Data.Len())

			if out == "" || out == "-" {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(data)); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
				return nil
			}
			if err := io.WriteDocumentAtomic(ctx, out, data); err != nil {
				return fmt.Errorf("writing clipboard: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Id of the subtree root to copy")
	cmd.Flags().StringVar(&out, "out", "-", "Clipboard file to write (- for stdout)")

	return cmd
}
