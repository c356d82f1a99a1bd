package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jvmmap/supersrg"
	"github.com/jvmmap/supersrg/rangeindex"
)

func newApplyRangeCmd() *cobra.Command {
	var (
		force   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "apply-range [--force] [-v/--verbose] RANGEMAP MAPPINGS SRC DST",
		Short: "Rewrites a source tree's member references against a mapping snapshot",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApplyRange(cmd.Context(), args[0], args[1], args[2], args[3], force, verbose)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "warn and continue on per-file mismatches instead of failing fast")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every file as it is rewritten")

	return cmd
}

func runApplyRange(ctx context.Context, rangeMapPath, mappingsPath, srcDir, dstDir string, force, verbose bool) error {
	logger, _ := zap.NewProduction()
	if !verbose {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	rmFile, err := os.Open(rangeMapPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", rangeMapPath, err)
	}
	defer rmFile.Close()

	rangeMap, err := rangeindex.DecodeRangeMap(rmFile)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", rangeMapPath, err)
	}

	mappingsFile, err := os.Open(mappingsPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", mappingsPath, err)
	}
	defer mappingsFile.Close()

	var snapshot supersrg.MappingSnapshot
	switch supersrg.DetectFormat(mappingsPath) {
	case supersrg.FormatBinary:
		snapshot, err = supersrg.DecodeMappings(mappingsFile)
	case supersrg.FormatCSRG:
		builder := supersrg.NewMappingStoreBuilder()
		if err = supersrg.ParseCsrg(mappingsFile, builder); err == nil {
			snapshot, err = builder.Build()
		}
	default:
		builder := supersrg.NewMappingStoreBuilder()
		if err = supersrg.ParseSrg(mappingsFile, builder); err == nil {
			snapshot, err = builder.Build()
		}
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", mappingsPath, err)
	}

	errorAction := rangeindex.ErrorActionExit
	if force {
		errorAction = rangeindex.ErrorActionWarn
	}

	applier := &rangeindex.ParallelApplier{
		NumWorkers:  2,
		ErrorAction: errorAction,
		Logger:      logger,
	}

	total, err := applier.ApplyAll(ctx, rangeMap, snapshot, srcDir, dstDir)
	if err != nil {
		return err
	}

	fmt.Printf("rewrote %d references across %d files\n", total, len(rangeMap.Files))
	return nil
}
