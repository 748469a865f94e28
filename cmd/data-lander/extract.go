package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dsa-lake/data-lander/archive"
	"github.com/dsa-lake/data-lander/constants"
	"github.com/dsa-lake/data-lander/logging"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/error_helpers"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [flags] <archive>",
		Short: "Expand an archive, including nested archives, and list the files it contains",
		Args:  cobra.ExactArgs(1),
		Run:   runExtractCmd,
	}

	cmdconfig.OnCmd(cmd).
		AddStringFlag(flagDest, "", "Directory to extract into (default a new temporary directory)").
		AddIntFlag(flagMaxDepth, constants.DefaultMaxNestingDepth, "Maximum nested archive depth").
		AddIntFlag(flagMaxBytes, int(constants.DefaultMaxExpandedBytes), "Maximum bytes extracted")

	return cmd
}

func runExtractCmd(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logging.Initialize("")

	err := func() error {
		source, err := homedir.Expand(args[0])
		if err != nil {
			return err
		}
		dest := viper.GetString(flagDest)
		if dest == "" {
			if dest, err = os.MkdirTemp("", constants.AppName+"-extract-"); err != nil {
				return err
			}
		} else if dest, err = homedir.Expand(dest); err != nil {
			return err
		}

		extractor := archive.NewExtractor(archive.WithLimits(archive.Limits{
			MaxDepth: viper.GetInt(flagMaxDepth),
			MaxBytes: viper.GetInt64(flagMaxBytes),
		}))
		files, err := extractor.Extract(ctx, source, dest)
		for _, f := range files {
			fmt.Println(f)
		}
		return err
	}()
	if err != nil {
		exitCode = 1
		error_helpers.ShowError(ctx, err)
	}
}
