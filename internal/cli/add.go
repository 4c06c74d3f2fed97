package cli

import (
	"errors"
	"strings"

	"lazytodo/internal/format"

	"github.com/spf13/cobra"
)

func newAddCmd(app *App) *cobra.Command {
	var section bool

	cmd := &cobra.Command{
		Use:   "add <text...>",
		Short: "Append a task (or a section) to the document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("missing text")
			}
			sess, path, err := openSession(cmd, app, false)
			if err != nil {
				return err
			}

			end := len(sess.Doc())
			if section {
				sess.StartInsertSectionAt(end)
			} else {
				// New tasks copy the indent and bullet of the last task.
				sess.SetCursor(end - 1)
				sess.StartInsertTaskAt(end)
			}
			sess.Commit(text)
			if err := sess.Err(); err != nil {
				return err
			}

			listing := format.NewListing(path, sess.Doc())
			return writeOut(cmd, app, listing.Items[sess.Cursor()])
		},
	}

	cmd.Flags().BoolVar(&section, "section", false, "Append a section heading instead of a task")
	return cmd
}
