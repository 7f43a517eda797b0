package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goodtune/focusd/internal/clock"
	"github.com/goodtune/focusd/internal/config"
	"github.com/goodtune/focusd/internal/storage"
	"github.com/goodtune/focusd/internal/tasks"
)

var (
	taskPriority    string
	taskDescription string
	taskDueDate     string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage focus tasks",
	Long:  `List, add, complete, and remove the tasks that daily reminders point at.`,
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tasks",
	RunE:  runTasksList,
}

var tasksAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Add a task",
	Example: `  focusd tasks add "Review weekly goals"
  focusd tasks add --priority High --due 2026-09-05 "Book dentist appointment"`,
	Args: cobra.ExactArgs(1),
	RunE: runTasksAdd,
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done ID",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksDone,
}

var tasksRemoveCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksRemove,
}

func init() {
	tasksAddCmd.Flags().StringVar(&taskPriority, "priority", "Medium", "Task priority (High, Medium, Low)")
	tasksAddCmd.Flags().StringVar(&taskDescription, "description", "", "Task description")
	tasksAddCmd.Flags().StringVar(&taskDueDate, "due", "", "Due date (YYYY-MM-DD)")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksDoneCmd)
	tasksCmd.AddCommand(tasksRemoveCmd)
	rootCmd.AddCommand(tasksCmd)
}

func openTaskService() (*tasks.Service, storage.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.ErrorLevel).With().Timestamp().Logger()

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return tasks.NewService(store.Tasks(), logger), store, nil
}

func runTasksList(cmd *cobra.Command, args []string) error {
	svc, store, err := openTaskService()
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := svc.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("No tasks yet. Add one with: focusd tasks add \"...\"")
		return nil
	}

	red := color.New(color.FgRed, color.Bold)
	faint := color.New(color.Faint)

	for _, task := range list {
		mark := " "
		if task.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %-8s %s  %s", mark, task.Priority, task.ID, task.Title)
		if task.DueDate != "" {
			line += fmt.Sprintf("  (due %s)", task.DueDate)
		}
		switch {
		case task.Completed:
			_, _ = faint.Println(line)
		case task.Priority == storage.PriorityHigh:
			_, _ = red.Println(line)
		default:
			fmt.Println(line)
		}
	}

	fmt.Printf("\n%d%% complete\n", tasks.CompletionPercent(list))
	return nil
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	svc, store, err := openTaskService()
	if err != nil {
		return err
	}
	defer store.Close()

	priority, err := storage.ParsePriority(taskPriority)
	if err != nil {
		return err
	}

	task := storage.Task{
		Title:       args[0],
		Description: taskDescription,
		Priority:    priority,
		DueDate:     taskDueDate,
	}

	created, err := svc.Create(context.Background(), task, clock.RealClock{}.Now())
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	fmt.Printf("Added task %s: %s\n", created.ID, created.Title)
	return nil
}

func runTasksDone(cmd *cobra.Command, args []string) error {
	svc, store, err := openTaskService()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := svc.Complete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	green := color.New(color.FgGreen, color.Bold)
	_, _ = green.Printf("✔ Task %s completed\n", args[0])
	return nil
}

func runTasksRemove(cmd *cobra.Command, args []string) error {
	svc, store, err := openTaskService()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := svc.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to remove task: %w", err)
	}

	fmt.Printf("Removed task %s\n", args[0])
	return nil
}
