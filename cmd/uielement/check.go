package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/uielement/internal/app"
	"github.com/vango-dev/uielement/internal/errors"
	"github.com/vango-dev/uielement/pkg/component"
	"github.com/vango-dev/uielement/pkg/dom"
)

func checkCmd(flags *globalFlags) *cobra.Command {
	var (
		tags  []string
		props []string
	)

	cmd := &cobra.Command{
		Use:   "check [page]",
		Short: "Report undefined elements and components that fail to connect",
		Long: `Check connects every component of the page and reports problems.

With --tag or --prop it validates names instead, without loading a page:
  uielement check --tag my-counter --prop count`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			var findings []app.Finding
			if len(tags) > 0 || len(props) > 0 {
				findings = checkNames(tags, props)
			} else {
				cfg, err := loadConfig(flags)
				if err != nil {
					return err
				}
				if err := pageArg(cfg, args); err != nil {
					return err
				}
				a, err := app.New(app.Options{Config: cfg, Logger: newLogger(cfg, cmd.ErrOrStderr())})
				if err != nil {
					return err
				}
				defer a.Close()

				if findings, err = a.Check(); err != nil {
					return err
				}
				if len(findings) == 0 {
					success(w, "%s: %d components defined, no problems", cfg.PagePath(), len(a.Registry().Tags()))
					return nil
				}
			}

			for _, f := range findings {
				warn(w, "%s %s: %s", f.Code, f.Subject, f.Message)
			}
			if len(findings) == 0 {
				success(w, "All names are valid")
				return nil
			}
			return errors.Newf(errors.CategoryCLI, "%d problem(s) found", len(findings))
		},
	}

	cmd.Flags().StringArrayVar(&tags, "tag", nil, "validate a custom element name (repeatable)")
	cmd.Flags().StringArrayVar(&props, "prop", nil, "validate a property name (repeatable)")

	return cmd
}

// checkNames validates element and property names. Properties are checked
// against the first tag, if any.
func checkNames(tags, props []string) []app.Finding {
	var findings []app.Finding
	for _, tag := range tags {
		if !dom.ValidName(tag) {
			ue := errors.New(component.CodeInvalidComponentName)
			findings = append(findings, app.Finding{Code: ue.Code, Subject: tag, Message: ue.Message})
		}
	}

	host := "x-check"
	if len(tags) > 0 && dom.ValidName(tags[0]) {
		host = tags[0]
	}
	for _, prop := range props {
		if err := component.CheckProperty(host, prop); err != nil {
			ue := errors.FromError(err, component.CodeInvalidPropertyName)
			findings = append(findings, app.Finding{Code: ue.Code, Subject: prop, Message: err.Error()})
		}
	}
	return findings
}
