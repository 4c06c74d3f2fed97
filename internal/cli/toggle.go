package cli

import (
	"fmt"
	"strconv"

	"lazytodo/internal/format"

	"github.com/spf13/cobra"
)

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <index>",
		Short: "Flip completion of the task at a 0-based index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			sess, path, err := openSession(cmd, app, true)
			if err != nil {
				return err
			}
			if !sess.Doc().IsTask(idx) {
				return errNotFound("task", idx)
			}

			sess.SetCursor(idx)
			sess.ToggleTasks()
			if err := sess.Err(); err != nil {
				return err
			}

			listing := format.NewListing(path, sess.Doc())
			return writeOut(cmd, app, listing.Items[idx])
		},
	}
}
