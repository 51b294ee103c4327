package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/util"
	"github.com/harrisonrobin/taskboard/pkg/view"
	"github.com/spf13/cobra"
)

const (
	emptyBoardMessage = "No tasks found. Create your first task!"
	loadingMessage    = "Loading tasks... (a save is in progress or was interrupted)"
)

func newLsCmd(a *app) *cobra.Command {
	var search, status string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks grouped by status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBoard(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer b.Close()

			var only model.Status
			if status != "" {
				if only, err = model.ParseStatus(status); err != nil {
					return err
				}
			}

			if b.store.IsLoading() {
				fmt.Fprintln(cmd.OutOrStdout(), loadingMessage)
			}
			renderList(cmd.OutOrStdout(), b.store.Tasks(), search, only)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "q", "", "Only tasks whose title or description contains this text")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Only tasks with this status")
	return cmd
}

// renderList prints the board: one section per non-empty status in display
// order, each headed by its label and count.
func renderList(w io.Writer, tasks []model.Task, search string, only model.Status) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, emptyBoardMessage)
		return
	}

	filtered := view.FilterBySearch(tasks, search)
	sections := view.Sections(filtered)
	if only != "" {
		var kept []view.Section
		for _, s := range sections {
			if s.Status == only {
				kept = append(kept, s)
			}
		}
		sections = kept
	}
	if len(sections) == 0 {
		if search != "" {
			fmt.Fprintf(w, "No tasks match %q.\n", search)
		} else {
			fmt.Fprintf(w, "No %s tasks.\n", strings.ToLower(only.Label()))
		}
		return
	}

	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", s.Label, len(s.Tasks))
		for _, t := range s.Tasks {
			fmt.Fprintf(w, "  [%s] %s  %s  (%s)\n", util.Initials(t.Title), shortID(t.ID), t.Title, util.FormatDate(t.UpdatedAt))
		}
	}
}
