package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "A tiny to-do list that syncs when you are signed in",
	Long: `todo keeps a short to-do list.

Signed out, the list lives in a local file under the data directory.
After "todo login" the list lives on the server and follows your account.

Examples:
  todo add "Buy milk"
  todo ls
  todo done 2
  todo clear 2024-06-01`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	home, _ := os.UserHomeDir()
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "todo backend base URL")
	rootCmd.PersistentFlags().String("data-dir", filepath.Join(home, ".todo"), "directory for the session and the local list")
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	viper.SetEnvPrefix("TODO")
	viper.AutomaticEnv()
}

// loadConfig reads an optional config.yaml from the data directory.
func loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(viper.GetString("data_dir"))
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fail(err.Error())
		os.Exit(1)
	}
}
