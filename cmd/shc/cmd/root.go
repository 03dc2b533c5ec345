// Package cmd implements the shc CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = newRootCmd()
)

// overrideFlags are persistent flags that may also be set through SHC_*
// environment variables or a .env file.
var overrideFlags = []string{"server", "output", "log-level", "session-file"}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shc",
		Short: "Terminal client for the second-hand marketplace",
		Long: "shc browses the second-hand marketplace catalog from the terminal.\n" +
			"It lets you log in, page through listings, view listing images,\n" +
			"manage your own listings and publish new ones.",
		SilenceUsage: true,
	}

	root.PersistentFlags().
		StringVar(&cfgFile, "config", "", "client config file (default $HOME/.shc/config.yaml if present)")
	root.PersistentFlags().
		String("server", "", "catalog API URL (overrides api.base_url)")
	root.PersistentFlags().
		String("output", "table", "output format (table, json)")
	root.PersistentFlags().
		String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().
		String("session-file", "", "session token file (overrides session.store_path)")

	for _, name := range overrideFlags {
		cobra.CheckErr(viper.BindPFlag(name, root.PersistentFlags().Lookup(name)))
	}

	root.AddCommand(
		loginCmd(),
		registerCmd(),
		logoutCmd(),
		whoamiCmd(),
		itemsCmd(),
		mineCmd(),
		sellCmd(),
	)

	return root
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Ignoring unreadable .env file:", err)
	}

	viper.SetEnvPrefix("SHC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// defaultConfigPath returns $HOME/.shc/config.yaml, or "" without a home
// directory.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".shc", "config.yaml")
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
