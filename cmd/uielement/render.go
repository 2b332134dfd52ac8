package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/uielement/internal/app"
	"github.com/vango-dev/uielement/internal/config"
	"github.com/vango-dev/uielement/internal/errors"
	"github.com/vango-dev/uielement/internal/live"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		events []string
		inputs []string
		full   bool
		out    string
		wait   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "render [page]",
		Short: "Render a page with its components connected",
		Long: `Render parses the page, upgrades its custom elements, replays the given
events and prints the resulting markup.

Inputs are applied before events, each group in flag order.

Examples:
  uielement render
  uielement render index.html --event "my-counter .increment=click"
  uielement render --input "hello-world input=Ada" --full --out out.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if err := pageArg(cfg, args); err != nil {
				return err
			}

			var msgs []live.Message
			for _, s := range inputs {
				msg, err := app.ParseInput(s)
				if err != nil {
					return err
				}
				msgs = append(msgs, msg)
			}
			for _, s := range events {
				msg, err := app.ParseEvent(s)
				if err != nil {
					return err
				}
				msgs = append(msgs, msg)
			}

			a, err := app.New(app.Options{Config: cfg, Logger: newLogger(cfg, cmd.ErrOrStderr())})
			if err != nil {
				return err
			}
			defer a.Close()

			html, renderErr := a.Render(app.RenderOptions{Events: msgs, Wait: wait, Full: full})
			if html != "" {
				if out != "" {
					if err := os.WriteFile(out, []byte(html), 0644); err != nil {
						return errors.New("UIE442").WithSubject(out).Wrap(err)
					}
					success(cmd.OutOrStdout(), "Wrote %s", out)
				} else {
					cmd.OutOrStdout().Write([]byte(html + "\n"))
				}
			}
			return renderErr
		},
	}

	cmd.Flags().StringArrayVarP(&events, "event", "e", nil, `dispatch an event, "selector=type" (repeatable)`)
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, `set a value and dispatch input, "selector=value" (repeatable)`)
	cmd.Flags().BoolVar(&full, "full", false, "render the whole document instead of the body")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the markup to a file")
	cmd.Flags().DurationVar(&wait, "wait", 0, "wait for async values before rendering (e.g. 500ms)")

	return cmd
}

// pageArg points cfg at the page given on the command line, resolved
// against the working directory.
func pageArg(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return nil
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return errors.New("UIE440").WithSubject(args[0]).Wrap(err)
	}
	cfg.Page = abs
	return nil
}
