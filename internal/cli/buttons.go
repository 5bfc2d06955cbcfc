package cli

import (
	"github.com/spf13/cobra"

	"github.com/joeblew999/plat-mailfix/pkg/pipeline"
	"github.com/joeblew999/plat-mailfix/pkg/report"
)

func newButtonsCmd() *cobra.Command {
	var (
		output   string
		dataFile string
	)
	cmd := &cobra.Command{
		Use:   "buttons FILE|DIR|- ...",
		Short: "List call-to-action buttons and their Outlook VML status",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}
			paths, err := collectInputs(args)
			if err != nil {
				return err
			}
			ld, err := newLoader(cmd.InOrStdin(), dataFile)
			if err != nil {
				return err
			}
			for _, path := range paths {
				html, err := ld.load(path)
				if err != nil {
					return err
				}
				if err := report.WriteButtons(cmd.OutOrStdout(), format, displayName(path), pipeline.Buttons(html)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(report.FormatHuman), "Output format (human, json, yaml)")
	cmd.Flags().StringVar(&dataFile, "data", "", "JSON or YAML data for MJML template actions")
	return cmd
}
