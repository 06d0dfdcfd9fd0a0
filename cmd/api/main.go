package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskpilot/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskpilot",
		Short: "TaskPilot API Server",
		Long:  `TaskPilot is a task management backend with OTP-verified registration, bearer sessions and deadline reminder scheduling.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
