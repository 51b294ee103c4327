package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/util"
	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	var description, status string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := model.FormData{
				Title:       strings.Join(args, " "),
				Description: description,
				Status:      model.PENDING,
			}
			if status != "" {
				s, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				data.Status = s
			}

			b, err := a.openBoard(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer b.Close()

			task, err := b.submitter(time.Duration(a.cfg.SaveDelay)).Submit("", data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", shortID(task.ID), task.Title)
			warnStoreError(cmd, b)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Initial status (default pending)")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var title, description, status string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title, description or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBoard(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer b.Close()

			task, err := resolveID(b.store.Tasks(), args[0])
			if err != nil {
				return err
			}

			data := task.FormData()
			flags := cmd.Flags()
			if flags.Changed("title") {
				data.Title = title
			}
			if flags.Changed("description") {
				data.Description = description
			}
			if flags.Changed("status") {
				s, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				data.Status = s
			}
			if data == task.FormData() {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to change.")
				return nil
			}

			saved, err := b.submitter(time.Duration(a.cfg.SaveDelay)).Submit(task.ID, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s [%s]\n", shortID(saved.ID), saved.Title, saved.Status.Label())
			warnStoreError(cmd, b)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status: pending, in-progress, completed")
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBoard(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer b.Close()

			task, err := resolveID(b.store.Tasks(), args[0])
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete %q?", task.Title)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			b.store.DeleteTask(task.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", shortID(task.ID), task.Title)
			warnStoreError(cmd, b)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBoard(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer b.Close()

			task, err := resolveID(b.store.Tasks(), args[0])
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), task)
			return nil
		},
	}
}

func printTask(w io.Writer, t model.Task) {
	fmt.Fprintf(w, "[%s] %s\n", util.Initials(t.Title), t.Title)
	fmt.Fprintf(w, "  ID:      %s\n", t.ID)
	fmt.Fprintf(w, "  Status:  %s\n", t.Status.Label())
	fmt.Fprintf(w, "  Created: %s\n", util.FormatDate(t.CreatedAt))
	fmt.Fprintf(w, "  Updated: %s\n", util.FormatDate(t.UpdatedAt))
	if t.Description != "" {
		fmt.Fprintln(w)
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// confirm asks a yes/no question; anything but y/yes is no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// warnStoreError reports an error the mirror left in the store.
func warnStoreError(cmd *cobra.Command, b *board) {
	if msg := b.store.Err(); msg != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", msg)
	}
}
