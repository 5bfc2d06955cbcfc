package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/joeblew999/plat-mailfix/pkg/config"
	"github.com/joeblew999/plat-mailfix/pkg/pipeline"
	"github.com/joeblew999/plat-mailfix/pkg/placeholder"
	"github.com/joeblew999/plat-mailfix/pkg/report"
)

type repairOptions struct {
	pipeline.Options

	checklist string
	output    string
	verbose   bool
	write     bool
	outDir    string
	dataFile  string
	workers   int
}

func (o *repairOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.checklist, "checklist", config.GetChecklist(), "Checklist variant (standard, themed) [MAILFIX_CHECKLIST]")
	f.StringVar(&o.PreheaderText, "preheader", "", "Preheader text to insert when the template has none")
	f.BoolVar(&o.RemoveFonts, "remove-fonts", false, "Remove web font imports and add fallback font stacks")
	f.StringVar(&o.TitleText, "title", "", "Enforce this document title")
	f.StringVar(&o.HeaderToken, "header-token", placeholder.DefaultHeaderToken, "Header placeholder token")
	f.StringVar(&o.FooterToken, "footer-token", placeholder.DefaultFooterToken, "Footer placeholder token")
	f.StringVar(&o.ThemeWrapperClass, "theme-class", placeholder.DefaultWrapperClass, "Class of the themed wrapper div")
	f.StringVar(&o.ThemeColor, "theme-color", placeholder.DefaultThemeColor, "Background color of the themed wrapper div")
	f.StringVar(&o.Salutation, "salutation", "", "Replace generic greetings with this merge field, e.g. {{FIRST_NAME}}")
	f.StringVarP(&o.output, "output", "o", string(report.FormatHuman), "Output format (human, json, yaml, html)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "List passing and skipped checks")
	f.StringVar(&o.dataFile, "data", "", "JSON or YAML data for MJML template actions")
	f.IntVarP(&o.workers, "workers", "j", runtime.NumCPU(), "Templates processed concurrently")
}

func (o *repairOptions) pipelineOptions() (pipeline.Options, error) {
	checklist, err := pipeline.ParseChecklist(o.checklist)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := o.Options
	opts.Checklist = checklist
	return opts.WithDefaults(), nil
}

func newRepairCmd() *cobra.Command {
	o := &repairOptions{}
	cmd := &cobra.Command{
		Use:   "repair FILE|DIR|- ...",
		Short: "Repair templates and report what changed",
		Long: `Repair one or more HTML (or MJML) email templates.

Examples:
  # Repair a template and write the result to the output directory
  mailfix repair campaign.html --write

  # Repair every template in a directory with the themed checklist
  mailfix repair ./exports --checklist themed --write --out-dir ./fixed

  # Produce an HTML report for review
  mailfix repair ./exports -o html > report.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := o.run(cmd, args)
			if err != nil {
				return err
			}
			return o.print(cmd, summaries)
		},
	}
	o.addFlags(cmd)
	cmd.Flags().BoolVarP(&o.write, "write", "w", false, "Write repaired templates to --out-dir")
	cmd.Flags().StringVar(&o.outDir, "out-dir", config.GetOutDir(), "Directory for repaired templates [MAILFIX_OUT_DIR]")
	return cmd
}

func (o *repairOptions) run(cmd *cobra.Command, args []string) ([]report.Summary, error) {
	opts, err := o.pipelineOptions()
	if err != nil {
		return nil, err
	}
	if _, err := report.ParseFormat(o.output); err != nil {
		return nil, err
	}
	paths, err := collectInputs(args)
	if err != nil {
		return nil, err
	}
	ld, err := newLoader(cmd.InOrStdin(), o.dataFile)
	if err != nil {
		return nil, err
	}
	if o.write {
		if err := os.MkdirAll(o.outDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	stop := startSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Repairing %d template(s)...", len(paths)))
	results, err := runBatch(cmd.Context(), paths, o.workers, func(path string) (*pipeline.Result, error) {
		html, err := ld.load(path)
		if err != nil {
			return nil, err
		}
		return pipeline.Process(html, opts)
	})
	stop()
	if err != nil {
		return nil, err
	}

	summaries := make([]report.Summary, 0, len(results))
	for _, r := range results {
		s := report.Summarize(displayName(r.path), r.value, r.err)
		if r.err == nil && o.write {
			out := outputPath(o.outDir, r.path)
			if err := os.WriteFile(out, []byte(r.value.OptimizedHTML), 0o644); err != nil {
				s.Error = fmt.Sprintf("write %s: %v", out, err)
			} else {
				s.Output = out
			}
		}
		if r.err != nil {
			logx.Errorf("repair %s: %v", r.path, r.err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (o *repairOptions) print(cmd *cobra.Command, summaries []report.Summary) error {
	format, err := report.ParseFormat(o.output)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), format, summaries, report.Options{Verbose: o.verbose})
}

func newValidateCmd() *cobra.Command {
	o := &repairOptions{}
	cmd := &cobra.Command{
		Use:   "validate FILE|DIR|- ...",
		Short: "Run every check without writing anything; exit non-zero on failures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := o.run(cmd, args)
			if err != nil {
				return err
			}
			if err := o.print(cmd, summaries); err != nil {
				return err
			}
			failed := 0
			for _, s := range summaries {
				if s.Failed() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d template(s) failed validation", failed, len(summaries))
			}
			return nil
		},
	}
	o.addFlags(cmd)
	return cmd
}
