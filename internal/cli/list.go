package cli

import (
	"lazytodo/internal/format"
	"lazytodo/internal/store"

	"github.com/spf13/cobra"
)

func newListCmd(app *App) *cobra.Command {
	var render bool
	var width int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the document (json|edn|md)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath(cmd, app, nil, true)
			if err != nil {
				return err
			}
			doc, _, err := store.File{Path: path}.Load()
			if err != nil {
				return err
			}
			style := ""
			if render {
				cfg, err := store.LoadConfig()
				if err != nil {
					return err
				}
				style = cfg.Theme
			}
			app.log.Debug("list", "path", path, "items", len(doc), "format", app.Format)
			return format.WriteDocument(cmd.OutOrStdout(), path, doc, format.DocumentOptions{
				Format: app.Format,
				Pretty: app.Pretty,
				Render: render,
				Width:  width,
				Style:  style,
			})
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "Render Markdown output for the terminal (requires --format md)")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}
