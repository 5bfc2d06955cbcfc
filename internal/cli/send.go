package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joeblew999/plat-mailfix/pkg/config"
	"github.com/joeblew999/plat-mailfix/pkg/delivery"
	"github.com/joeblew999/plat-mailfix/pkg/mail"
	"github.com/joeblew999/plat-mailfix/pkg/pipeline"
)

// newSender is replaced in tests.
var newSender = func(c mail.Config) mail.Sender {
	return mail.SMTPSender{Config: c}
}

func newSendCmd() *cobra.Command {
	var (
		to       []string
		subject  string
		noRepair bool
		dataFile string
		retries  int
	)
	cmd := &cobra.Command{
		Use:   "send FILE|DIR|- ... --to ADDRESS",
		Short: "Send templates to a test inbox over SMTP",
		Long: `Send one or more templates to test inboxes as multipart/alternative messages
with a plain-text part derived from the HTML. Templates are repaired first
unless --no-repair is set.

SMTP settings come from SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD,
SMTP_FROM and SMTP_FROM_NAME.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(to) == 0 {
				return fmt.Errorf("at least one --to address is required")
			}
			smtpConfig := mail.ConfigFromEnv()
			if err := smtpConfig.Validate(); err != nil {
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
			checklist, err := pipeline.ParseChecklist(config.GetChecklist())
			if err != nil {
				return err
			}

			jobs := make([]delivery.Job, 0, len(paths))
			for _, path := range paths {
				html, err := ld.load(path)
				if err != nil {
					return err
				}
				if !noRepair {
					res, err := pipeline.Process(html, pipeline.Options{Checklist: checklist}.WithDefaults())
					if err != nil {
						return fmt.Errorf("repair %s: %w", displayName(path), err)
					}
					html = res.OptimizedHTML
				}
				html, _ = pipeline.PrepareDownload(html)

				subj := subject
				if subj == "" {
					subj = "[mailfix] " + filepath.Base(displayName(path))
				}
				msg, err := mail.NewMessage(to, subj, html)
				if err != nil {
					return err
				}
				jobs = append(jobs, delivery.NewJob(displayName(path), msg))
			}

			cfg := delivery.DefaultConfig()
			cfg.MaxRetries = retries
			engine := delivery.NewEngine(newSender(smtpConfig), cfg)

			stop := startSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Sending %d template(s)...", len(jobs)))
			outcomes := engine.Deliver(cmd.Context(), jobs)
			stop()

			failed := 0
			for _, o := range outcomes {
				if o.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %v (after %d attempt(s))\n", color.RedString("✗"), o.Template, o.Err, o.Attempts)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s sent to %d recipient(s)\n", color.GreenString("✓"), o.Template, len(to))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d send(s) failed", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&to, "to", nil, "Recipient address (repeatable)")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject line (default: [mailfix] FILE)")
	cmd.Flags().BoolVar(&noRepair, "no-repair", false, "Send the template as-is")
	cmd.Flags().StringVar(&dataFile, "data", "", "JSON or YAML data for MJML template actions")
	cmd.Flags().IntVar(&retries, "retries", delivery.DefaultConfig().MaxRetries, "Retries for transient SMTP failures")
	return cmd
}
