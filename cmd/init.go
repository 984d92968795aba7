package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eykd/entitygraph-go/internal/config"
	"github.com/eykd/entitygraph-go/internal/fsutil"
)

// InitIO handles I/O for the init command.
type InitIO interface {
	StatFile(path string) (bool, error)
	WriteFileAtomic(path, content string) error
}

// NewInitCmd creates the init subcommand.
func NewInitCmd(io InitIO) *cobra.Command {
	return newInitCmdWithGetCWD(io, os.Getwd)
}

func newInitCmdWithGetCWD(io InitIO, getwd func() (string, error)) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:          "init [directory]",
		Short:        "Write a starter " + config.FileName + " next to your documents",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				cwd, err := getwd()
				if err != nil {
					return fmt.Errorf("getting working directory: %w", err)
				}
				dir = cwd
			}

			configPath := filepath.Join(dir, config.FileName)
			exists, err := io.StatFile(configPath)
			if err != nil {
				return fmt.Errorf("checking %s: %w", configPath, err)
			}
			if exists && !force {
				return fmt.Errorf("%s already exists in %s; use --force to overwrite", config.FileName, sanitizeText(dir))
			}
			if err := io.WriteFileAtomic(configPath, config.Template); err != nil {
				return fmt.Errorf("writing %s: %w", config.FileName, err)
			}
			if exists {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: overwriting existing "+config.FileName)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Initialized "+sanitizeText(configPath))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	return cmd
}

// fileInitIO implements InitIO using OS file I/O.
type fileInitIO struct{}

func newDefaultInitIO() *fileInitIO {
	return &fileInitIO{}
}

// StatFile returns true if the file at path exists, false if it does not.
// Returns an error only for unexpected OS errors.
func (f *fileInitIO) StatFile(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// WriteFileAtomic writes content to path atomically via a temp file.
func (f *fileInitIO) WriteFileAtomic(path, content string) error {
	return fsutil.WriteFileAtomic(path, []byte(content))
}
