package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/uielement/internal/config"
	"github.com/vango-dev/uielement/internal/demo"
	"github.com/vango-dev/uielement/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		useYAML bool
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default configuration and a sample page",
		Long: `Init writes uielement.json (or uielement.yaml with --yaml) and an
index.html using the built-in demo components. Existing files are kept
unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.New("UIE420").WithSubject(dir).Wrap(err)
			}

			w := cmd.OutOrStdout()
			name := config.ConfigFileName
			if useYAML {
				name = "uielement.yaml"
			}

			cfgPath := filepath.Join(dir, name)
			if existing := config.Find(dir); existing != "" && !force {
				warn(w, "%s already exists, skipping", existing)
			} else {
				if err := config.New().SaveTo(cfgPath); err != nil {
					return err
				}
				success(w, "Created %s", cfgPath)
			}

			pagePath := filepath.Join(dir, config.DefaultPage)
			if _, err := os.Stat(pagePath); err == nil && !force {
				warn(w, "%s already exists, skipping", pagePath)
			} else {
				if err := os.WriteFile(pagePath, []byte(demo.Page), 0644); err != nil {
					return errors.New("UIE440").WithSubject(pagePath).Wrap(err)
				}
				success(w, "Created %s", pagePath)
			}

			info(w, "Next: uielement serve --config %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useYAML, "yaml", false, "write uielement.yaml instead of uielement.json")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files")

	return cmd
}
