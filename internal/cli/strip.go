package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joeblew999/plat-mailfix/pkg/pipeline"
)

func newStripCmd() *cobra.Command {
	var inPlace bool
	cmd := &cobra.Command{
		Use:   "strip FILE|-",
		Short: "Remove CMS editor residue before a template is exported",
		Long: `Remove contenteditable, data-qa-*, data-editor-*, editor-only inline styles
and empty class attributes. The cleaned template is printed unless --in-place is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if inPlace && path == stdinName {
				return fmt.Errorf("--in-place needs a file")
			}

			var (
				raw []byte
				err error
			)
			if path == stdinName {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(path)
			}
			if err != nil {
				return err
			}

			out, removed := pipeline.PrepareDownload(string(raw))
			if !inPlace {
				_, err := io.WriteString(cmd.OutOrStdout(), out)
				return err
			}
			if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s removed %d artifact(s) from %s\n", color.GreenString("✓"), removed, path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "Rewrite the file instead of printing")
	return cmd
}
