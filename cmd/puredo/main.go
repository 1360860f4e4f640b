package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kangchainx/puredo/internal/config"
	"github.com/kangchainx/puredo/internal/repo"
	"github.com/kangchainx/puredo/internal/snapshot"
	"github.com/kangchainx/puredo/internal/store"
	"github.com/kangchainx/puredo/internal/task"
	"github.com/kangchainx/puredo/internal/widget"
)

var rootCmd = &cobra.Command{
	Use:   "puredo",
	Short: "puredo - a minimal daily to-do list",
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task for today",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a task's completion state",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show today's tasks",
	RunE:  runList,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show all tasks grouped by day",
	RunE:  runHistory,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show puredo status",
	RunE:  runStatus,
}

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Run the widget reader against the shared snapshot",
	RunE:  runWidget,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config and data directory",
	RunE:  runOnboard,
}

var (
	priorityFlag string
	searchFlag   string
	minimalFlag  bool
)

func init() {
	addCmd.Flags().StringVarP(&priorityFlag, "priority", "p", "blue", "Priority: red, yellow or blue")
	listCmd.Flags().StringVarP(&searchFlag, "search", "s", "", "Filter by name, case-insensitive")
	listCmd.Flags().BoolVar(&minimalFlag, "minimal", false, "Minimal display mode (names only)")
	rootCmd.AddCommand(addCmd, doneCmd, rmCmd, listCmd, historyCmd, statusCmd, widgetCmd, onboardCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openRepo wires the store, the shared-dir publisher and the repository,
// and performs the initial load. A load failure degrades to an empty set
// and is reported, not fatal.
func openRepo(cfg *config.Config) (*repo.Repository, func(), error) {
	st, err := store.Open(cfg.Data.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	blobs, err := snapshot.NewFileStore(cfg.Data.SnapshotDir)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("open shared dir: %w", err)
	}

	r := repo.New(st, snapshot.NewPublisher(blobs))
	if err := r.LoadAll(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: load tasks: %v\n", err)
	}
	return r, func() { st.Close() }, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	p := task.Priority(priorityFlag)
	if !p.Valid() {
		return fmt.Errorf("unknown priority %q (use red, yellow or blue)", priorityFlag)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	r, closeRepo, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	tk, err := r.Add(strings.Join(args, " "), p)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s [%s] %s\n", shortID(tk.ID), tk.Priority, tk.Name)
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	r, closeRepo, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	id, err := resolveID(r.Tasks(), args[0])
	if err != nil {
		return err
	}
	tk, err := r.ToggleComplete(id)
	if err != nil {
		return err
	}
	if tk.IsCompleted {
		fmt.Printf("Completed %s %s\n", shortID(tk.ID), tk.Name)
	} else {
		fmt.Printf("Reopened %s %s\n", shortID(tk.ID), tk.Name)
	}
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	r, closeRepo, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	id, err := resolveID(r.Tasks(), args[0])
	if err != nil {
		return err
	}
	if err := r.Delete(id); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", shortID(id))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	r, closeRepo, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	view := r.FilteredView(searchFlag)
	if len(view) == 0 {
		fmt.Println("No tasks for today.")
		return nil
	}

	minimal := minimalFlag || cfg.UI.MinimalMode
	for _, tk := range view {
		fmt.Println(renderLine(tk, minimal))
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	r, closeRepo, err := openRepo(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	groups := r.HistoricalView()
	if len(groups) == 0 {
		fmt.Println("No tasks yet.")
		return nil
	}
	for _, group := range groups {
		fmt.Printf("%s\n", group.Day.Format("2006-01-02"))
		for _, tk := range group.Tasks {
			fmt.Printf("  %s\n", renderLine(tk, false))
		}
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Database: %s\n", cfg.Data.DBPath)
	fmt.Printf("Shared dir: %s\n", cfg.Data.SnapshotDir)
	fmt.Printf("Widget refresh: %s\n", cfg.Widget.RefreshSpec)
	fmt.Printf("Minimal mode: %v\n", cfg.UI.MinimalMode)

	r, closeRepo, err := openRepo(cfg)
	if err != nil {
		fmt.Printf("Tasks: unavailable (%v)\n", err)
		return nil
	}
	defer closeRepo()

	all := r.Tasks()
	pending := 0
	for _, tk := range all {
		if !tk.IsCompleted {
			pending++
		}
	}
	fmt.Printf("Tasks: %d total, %d pending, %d today\n", len(all), pending, len(r.FilteredView("")))
	return nil
}

func runWidget(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	blobs, err := snapshot.NewFileStore(cfg.Data.SnapshotDir)
	if err != nil {
		return fmt.Errorf("open shared dir: %w", err)
	}

	reader := widget.NewReader(blobs, blobs.Dir(), cfg.Widget.RefreshSpec, renderSnapshot)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := reader.Start(ctx); err != nil {
		return fmt.Errorf("start reader: %w", err)
	}
	<-ctx.Done()
	reader.Stop()
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgPath := config.ConfigPath()

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := store.Open(cfg.Data.DBPath)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	st.Close()
	if _, err := snapshot.NewFileStore(cfg.Data.SnapshotDir); err != nil {
		return fmt.Errorf("init shared dir: %w", err)
	}

	fmt.Printf("Database ready: %s\n", cfg.Data.DBPath)
	fmt.Printf("Shared dir ready: %s\n", cfg.Data.SnapshotDir)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'puredo add -p red \"Write report\"' to create a task")
	fmt.Println("  2. Run 'puredo list' to see today's tasks")
	fmt.Println("  3. Run 'puredo widget' to watch the widget snapshot")
	return nil
}

func renderSnapshot(snap snapshot.Snapshot) {
	if len(snap.Tasks) == 0 {
		fmt.Println("widget: no tasks")
		return
	}
	fmt.Printf("widget: %d task(s) at %s\n", len(snap.Tasks), snap.UpdatedAt.Format("15:04:05"))
	for _, item := range snap.Tasks {
		fmt.Printf("  [%s] %s\n", item.PriorityRawValue, item.Title)
	}
}

func renderLine(tk *task.Task, minimal bool) string {
	if minimal {
		return tk.Name
	}
	marker := "[ ]"
	if tk.IsCompleted {
		marker = "[x]"
	}
	return fmt.Sprintf("%s %s %-6s %s", marker, shortID(tk.ID), tk.Priority, tk.Name)
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// resolveID matches a full id or a unique prefix against the working set.
func resolveID(tasks []*task.Task, arg string) (uuid.UUID, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}

	prefix := strings.ToLower(arg)
	var matches []uuid.UUID
	for _, tk := range tasks {
		if strings.HasPrefix(tk.ID.String(), prefix) {
			matches = append(matches, tk.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return uuid.Nil, fmt.Errorf("no task matches id %q", arg)
	default:
		return uuid.Nil, fmt.Errorf("id %q is ambiguous (%d matches)", arg, len(matches))
	}
}
