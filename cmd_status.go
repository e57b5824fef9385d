package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/gateway"
	"github.com/openpaw/pawdeck/pkg/models"
	"github.com/openpaw/pawdeck/pkg/service"
	"github.com/openpaw/pawdeck/pkg/store"
	"github.com/openpaw/pawdeck/pkg/views"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend health and dashboard counters",
	RunE:  runStatus,
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List tasks",
	RunE:  runTasks,
}

func init() {
	tasksCmd.Flags().String("status", models.FilterAll, "Filter by status: all, pending, in_progress, completed, failed")
	tasksCmd.Flags().String("search", "", "Case-insensitive title/description match")
}

func newCLIConsole(cmd *cobra.Command) (*service.Console, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	client := gateway.NewClient(cfg.BackendURL(), gateway.WithTimeout(cfg.BackendTimeout()))
	st := store.New(event.NewEmitter())
	return service.NewConsole(client, st, 0, service.Options{}), nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	console, err := newCLIConsole(cmd)
	if err != nil {
		return err
	}
	defer console.Close()

	_ = console.Dashboard.Refresh(cmd.Context())
	v := console.Dashboard.View()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backend:        %s\n", v.Backend)
	fmt.Fprintf(out, "Vector DB:      %s\n", onlineLabel(v.VectorDBOnline))
	fmt.Fprintf(out, "Conversations:  %d\n", v.Stats.ConversationsCount)
	fmt.Fprintf(out, "Skills:         %d\n", v.Stats.SkillsCount)
	fmt.Fprintf(out, "Documents:      %d\n", v.Stats.DocsCount)
	if v.Stats.TasksCount > 0 {
		fmt.Fprintf(out, "Tasks:          %d (%d pending, %d completed)\n", v.Stats.TasksCount, v.Stats.TasksPending, v.Stats.TasksCompleted)
	}
	return nil
}

func onlineLabel(online bool) string {
	if online {
		return "Online"
	}
	return "Offline"
}

func runTasks(cmd *cobra.Command, args []string) error {
	console, err := newCLIConsole(cmd)
	if err != nil {
		return err
	}
	defer console.Close()

	status, _ := cmd.Flags().GetString("status")
	search, _ := cmd.Flags().GetString("search")
	if err := console.Tasks.SetFilter(status); err != nil {
		return err
	}
	console.Tasks.SetSearch(search)

	if err := console.Tasks.Load(cmd.Context()); err != nil {
		return fmt.Errorf("load tasks: %s", gateway.Message(err))
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tSCHEDULE")
	for _, t := range console.Tasks.Filtered() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Title, schedule(t))
	}
	return w.Flush()
}

func schedule(t models.Task) string {
	parts := []string{views.RecurrenceLabel(t.Recurrence)}
	if t.ScheduledTime != nil {
		parts = append(parts, views.FormatScheduleTime(*t.ScheduledTime))
	}
	if t.ScheduledDate != nil && *t.ScheduledDate != "" {
		parts = append(parts, *t.ScheduledDate)
	}
	return strings.Join(parts, " ")
}
