// Package main implements the taskboard server and its tooling commands.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/seed"
)

var (
	// configPath is the YAML configuration file
	configPath string
	// port overrides server.port when non-zero
	port int
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Project and task tracking service",
	Long: `taskboard serves a REST API for projects and the tasks they contain.
State lives in memory and is seeded once at startup from files or a SQLite
database.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "path to the YAML config file")
	serveCmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")

	seedDBCmd.Flags().String("projects", "projects.json", "projects seed file (.json, .yaml)")
	seedDBCmd.Flags().String("tasks", "tasks.json", "tasks seed file (.json, .yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedDBCmd)
	rootCmd.AddCommand(versionCmd)
}

// serveCmd runs the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server until interrupted.

Examples:
  # Serve with the default config
  taskboard serve

  # Serve seed files on another port
  TASKBOARD_SEED_PROJECTS=projects.json TASKBOARD_SEED_TASKS=tasks.json taskboard serve --port 5000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// seedDBCmd converts seed files into a SQLite seed database
var seedDBCmd = &cobra.Command{
	Use:   "seed-db <output.db>",
	Short: "Write seed files into a SQLite seed database",
	Long: `Read projects and tasks seed files and write them into a SQLite
database usable as seed.sqlite.

Examples:
  taskboard seed-db --projects data/projects.json --tasks data/tasks.json seed.db`,
	Args: cobra.ExactArgs(1),
	RunE: runSeedDB,
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

// runServe handles the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// runSeedDB handles the seed-db command
func runSeedDB(cmd *cobra.Command, args []string) error {
	projects, _ := cmd.Flags().GetString("projects")
	tasks, _ := cmd.Flags().GetString("tasks")

	ctx := cmd.Context()
	data, err := seed.ReadFiles(ctx, projects, tasks)
	if err != nil {
		return err
	}
	if err := seed.WriteSQLite(ctx, args[0], data); err != nil {
		return fmt.Errorf("writing seed database: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d projects and %d tasks to %s\n",
		len(data.Projects), len(data.Tasks), args[0])
	return nil
}
