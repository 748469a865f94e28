package main

import (
	"github.com/dsa-lake/data-lander/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/error_helpers"
	"github.com/turbot/pipe-fittings/utils"
)

// flags
const (
	flagConfig   = "config"
	flagEnvFile  = "env-file"
	flagMode     = "mode"
	flagPrefix   = "prefix"
	flagStyle    = "prefix-style"
	flagBucket   = "bucket"
	flagBackend  = "backend"
	flagEndpoint = "endpoint"
	flagRegion   = "region"
	flagColumn   = "column"
	flagAllow    = "allow"
	flagWorkers  = "workers"
	flagTempDir  = "temp-dir"
	flagMaxDepth = "max-depth"
	flagMaxBytes = "max-bytes"
	flagDryRun   = "dry-run"
	flagDest     = "dest"
	flagRows     = "rows"
)

var exitCode int

// Build the cobra command that handles our command line tool.
func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.AppName + " COMMAND [args]",
		Short: "Extract, filter and publish statement of reasons archives as parquet",
		Run: func(cmd *cobra.Command, args []string) {
			err := cmd.Help()
			error_helpers.FailOnError(err)
		},
		SilenceUsage: true,
	}

	utils.LogTime("cmd.root.InitCmd start")
	defer utils.LogTime("cmd.root.InitCmd end")

	cmdconfig.
		OnCmd(rootCmd)

	rootCmd.PersistentFlags().String(flagConfig, "", "Path of an HCL configuration file")
	rootCmd.PersistentFlags().String(flagEnvFile, "", "Path of a .env file to load (default .env if present)")
	_ = viper.BindPFlag(flagConfig, rootCmd.PersistentFlags().Lookup(flagConfig))
	_ = viper.BindPFlag(flagEnvFile, rootCmd.PersistentFlags().Lookup(flagEnvFile))

	rootCmd.AddCommand(
		runCmd(),
		extractCmd(),
		inspectCmd(),
	)

	return rootCmd
}

func Execute() int {
	rootCmd := rootCommand()
	utils.LogTime("cmd.root.Execute start")
	defer utils.LogTime("cmd.root.Execute end")

	if err := rootCmd.Execute(); err != nil {
		exitCode = -1
	}
	return exitCode
}
