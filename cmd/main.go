package main

import (
	goflag "flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var (
	LogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "refinecore",
	Short: "refinecore, refinement type checking of ADT invariants over a symbolic heap",
	Long:  "",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setLogLevel(LogLevel)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func setLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

func main() {
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	rootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(versionCommand)
	rootCmd.AddCommand(checkCommand)
	rootCmd.AddCommand(unfoldCommand)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
