package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GregMSThompson/widget-dashboard/cmd/widgetctl/commands"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "widgetctl",
	Short: "Run and render dashboard widgets from the command line",
	Long: `widgetctl loads a widget definition from YAML, runs its plugin query
against the gateway and prints the rendered view. It is meant for trying
out widget configurations before they are saved to a dashboard.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(commands.RenderCmd)
	rootCmd.AddCommand(commands.FetchCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.TokenCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.widgetctl.yaml)")
	rootCmd.PersistentFlags().String("gateway", "http://localhost:8081", "plugin gateway base URL")
	rootCmd.PersistentFlags().String("token", "", "plugin gateway bearer token")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "plugin request timeout")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	viper.BindPFlag("gateway", rootCmd.PersistentFlags().Lookup("gateway"))
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".widgetctl")
	}

	viper.SetEnvPrefix("WIDGETCTL")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}
