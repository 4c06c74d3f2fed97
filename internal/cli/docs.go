package cli

import (
	"fmt"

	"lazytodo/internal/docs"
	"lazytodo/internal/format"
	"lazytodo/internal/store"

	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show help topics (keys, format, config)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"topics": docs.Topics()})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return fmt.Errorf("unknown docs topic: %q (run `lazytodo docs` to list topics)", topic)
			}
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}

			cfg, err := store.LoadConfig()
			if err != nil {
				return err
			}
			out, err := format.RenderMarkdown(body, 0, cfg.Theme)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw Markdown")
	return cmd
}
