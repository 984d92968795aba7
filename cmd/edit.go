package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// EditIO handles I/O for the edit command.
type EditIO interface {
	DocumentIO
	// WriteScratch writes data to a new temporary file named after pattern
	// and returns its path.
	WriteScratch(pattern string, data []byte) (string, error)
	ReadScratch(path string) ([]byte, error)
	RemoveScratch(path string) error
	OpenEditor(editor, path string) error
}

// NewEditCmd creates the edit subcommand.
func NewEditCmd(io EditIO) *cobra.Command {
	return newEditCmdWithGetenv(io, os.Getenv)
}

func newEditCmdWithGetenv(io EditIO, getenv func(string) string) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:          "edit <document>",
		Short:        "Edit a sub-entity as JSON in $EDITOR, then validate and store it",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			docPath := args[0]
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			editor := getenv("EDITOR")
			if len(strings.Fields(editor)) == 0 {
				return fmt.Errorf("$EDITOR is not set")
			}

			doc, err := readDocument(cmd.Context(), io, docPath)
			if err != nil {
				return emitIOFailureAndError(cmd, false, err)
			}
			sub, ok := doc.Entities.Get(id)
			if !ok {
				err := entity.NewOpError("edit", id, "", entity.ErrNoSuchNode)
				printDiagnostics(cmd, []entity.Diagnostic{entity.ErrorDiagnostic(err)})
				return fmt.Errorf("edit failed: %w", err)
			}
			original, err := json.MarshalIndent(sub, "", "\t")
			if err != nil {
				return fmt.Errorf("encoding sub-entity: %w", err)
			}

			scratch, err := io.WriteScratch("qne-"+sanitizeFileName(id)+"-*.json", append(original, '\n'))
			if err != nil {
				return fmt.Errorf("writing scratch file: %w", err)
			}
			defer io.RemoveScratch(scratch) //nolint:errcheck

			if err := io.OpenEditor(editor, scratch); err != nil {
				return fmt.Errorf("editor: %w", err)
			}
			edited, err := io.ReadScratch(scratch)
			if err != nil {
				return fmt.Errorf("reading scratch file: %w", err)
			}
			if bytes.Equal(bytes.TrimSpace(edited), original) {
				fmt.Fprintf(cmd.OutOrStdout(), "No changes to %s\n", sanitizeText(id))
				return nil
			}

			var replacement entity.SubEntity
			if err := json.Unmarshal(edited, &replacement); err != nil {
				return emitIOFailureAndError(cmd, false, fmt.Errorf("decoding edited sub-entity: %w", err))
			}
			if _, err := runMutation(cmd, io, docPath, false, replaceMutation(id, &replacement)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", sanitizeText(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Id of the sub-entity to edit")

	return cmd
}

// sanitizeFileName keeps the characters of s that are safe in a temp file
// name.
func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

// fileEditIO implements EditIO using OS file I/O.
type fileEditIO struct {
	DocumentIO
}

func newDefaultEditIO(docIO DocumentIO) *fileEditIO {
	return &fileEditIO{DocumentIO: docIO}
}

// WriteScratch writes data to a new file in the OS temp directory.
func (f *fileEditIO) WriteScratch(pattern string, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// ReadScratch reads the scratch file at path.
func (f *fileEditIO) ReadScratch(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// RemoveScratch removes the scratch file at path.
func (f *fileEditIO) RemoveScratch(path string) error {
	return os.Remove(path)
}

// OpenEditor launches the editor process, splitting editor on whitespace.
// The first token is the executable; remaining tokens are prepended to path
// as args.
func (f *fileEditIO) OpenEditor(editor, path string) error {
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("EDITOR is empty")
	}
	c := exec.Command(parts[0], append(parts[1:], path)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
