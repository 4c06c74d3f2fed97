package cli

import (
	"fmt"

	"lazytodo/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config [key] [value]",
		Short: "Show or change global preferences",
		Long: "With no arguments prints every key. With a key prints its value.\n" +
			"With a key and a value stores the value in the config file.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return err
			}

			switch len(args) {
			case 0:
				out := make(map[string]string, len(store.ConfigKeys()))
				for _, k := range store.ConfigKeys() {
					v, _ := cfg.Get(k)
					out[k] = v
				}
				return writeOut(cmd, app, out)
			case 1:
				v, err := cfg.Get(args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
				return err
			default:
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				app.log.Debug("config set", "key", args[0])
				return store.SaveConfig(cfg)
			}
		},
	}
}
