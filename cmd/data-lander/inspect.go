package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dsa-lake/data-lander/columnar"
	"github.com/dsa-lake/data-lander/logging"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/error_helpers"
)

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [flags] <file.parquet>...",
		Short: "Print the schema, row count and a sample of parquet files",
		Args:  cobra.MinimumNArgs(1),
		Run:   runInspectCmd,
	}

	cmdconfig.OnCmd(cmd).
		AddIntFlag(flagRows, 10, "Number of sample rows to print")

	return cmd
}

func runInspectCmd(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	logging.Initialize("")

	for _, arg := range args {
		if err := inspectFile(ctx, arg, viper.GetInt(flagRows)); err != nil {
			exitCode = 1
			error_helpers.ShowError(ctx, fmt.Errorf("error inspecting %s: %w", arg, err))
		}
	}
}

func inspectFile(ctx context.Context, name string, rows int) error {
	path, err := homedir.Expand(name)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	info, err := columnar.Describe(ctx, data, rows)
	if err != nil {
		return err
	}
	renderFileInfo(os.Stdout, filepath.Base(path), info)
	return nil
}
