package cli

import (
	"fmt"
	"os"

	"github.com/harrisonrobin/taskboard/pkg/form"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/orgmode"
	"github.com/harrisonrobin/taskboard/pkg/store"
	"github.com/harrisonrobin/taskboard/pkg/taskwarrior"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tasks from other tools",
	}

	orgCmd := &cobra.Command{
		Use:   "org <file>...",
		Short: "Import TODO headings from Org-mode files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := orgmode.ParseFiles(args)
			if err != nil {
				return err
			}
			return a.importItems(cmd, items)
		},
	}

	var file string
	twCmd := &cobra.Command{
		Use:   "taskwarrior [filter]...",
		Short: "Import tasks from `task export` (or a saved export file)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := taskwarrior.NewClient()
			var tasks []taskwarrior.Task
			var err error
			if file != "" {
				f, openErr := os.Open(file)
				if openErr != nil {
					return openErr
				}
				defer f.Close()
				tasks, err = client.ParseTasks(f)
			} else {
				tasks, err = client.GetTasks(args)
			}
			if err != nil {
				return err
			}

			var items []model.FormData
			for _, t := range tasks {
				if data, ok := taskwarrior.ToFormData(t); ok {
					items = append(items, data)
				}
			}
			return a.importItems(cmd, items)
		},
	}
	twCmd.Flags().StringVarP(&file, "file", "f", "", "Read this export file instead of running task")

	cmd.AddCommand(orgCmd, twCmd)
	return cmd
}

// importItems adds every valid item under one loading span. Invalid items
// are reported and skipped.
func (a *app) importItems(cmd *cobra.Command, items []model.FormData) error {
	b, err := a.openBoard(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer b.Close()

	added, skipped := addAll(b.store, items, func(data model.FormData, err error) {
		a.log.Warn("skipping task", "title", data.Title, "error", err)
	})
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks (%d skipped)\n", added, skipped)
	warnStoreError(cmd, b)
	return nil
}

func addAll(s *store.Store, items []model.FormData, onInvalid func(model.FormData, error)) (added, skipped int) {
	if len(items) == 0 {
		return 0, 0
	}
	s.SetLoading(true)
	defer s.SetLoading(false)

	for _, data := range items {
		if err := form.Validate(data); err != nil {
			onInvalid(data, err)
			skipped++
			continue
		}
		s.AddTask(data)
		added++
	}
	return added, skipped
}
