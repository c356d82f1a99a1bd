package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jvmmap/supersrg/fetch"
	"github.com/jvmmap/supersrg/scheduler"
)

func newGenerateMinecraftCmd() *cobra.Command {
	var (
		builddataCommit string
		refreshSpigot   bool
		mcpVersion      string
		cacheDir        string
		format          string
	)

	cmd := &cobra.Command{
		Use:   "generate-minecraft [--builddata-commit C] [--refresh-spigot] [--mcp V] [--cache D] [--format FMT] MC_VERSION OUT_DIR TARGET...",
		Short: "Computes a set of Minecraft mapping targets and writes each to OUT_DIR",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateMinecraft(cmd.Context(), args[0], args[1], args[2:], genOpts{
				builddataCommit: builddataCommit,
				refreshSpigot:   refreshSpigot,
				mcpVersion:      mcpVersion,
				cacheDir:        cacheDir,
				format:          format,
			})
		},
	}

	cmd.Flags().StringVar(&builddataCommit, "builddata-commit", "", "Spigot BuildData commit to pin (defaults to the fetcher's own default)")
	cmd.Flags().BoolVar(&refreshSpigot, "refresh-spigot", false, "re-fetch Spigot BuildData even if a local checkout already exists")
	cmd.Flags().StringVar(&mcpVersion, "mcp", "stable", "MCP mapping version")
	cmd.Flags().StringVar(&cacheDir, "cache", ".supersrg-cache", "directory used to cache downloaded artifacts")
	cmd.Flags().StringVar(&format, "format", "srg", "output format: binary or srg")

	return cmd
}

type genOpts struct {
	builddataCommit string
	refreshSpigot   bool
	mcpVersion      string
	cacheDir        string
	format          string
}

func runGenerateMinecraft(ctx context.Context, mcVersion, outDir string, rawTargets []string, opts genOpts) error {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	targets := make([]scheduler.Target, 0, len(rawTargets))
	for _, raw := range rawTargets {
		t, err := scheduler.ParseTarget(raw)
		if err != nil {
			return fmt.Errorf("parsing target %q: %w", raw, err)
		}
		targets = append(targets, t)
	}

	if err := os.MkdirAll(opts.cacheDir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	if opts.refreshSpigot {
		os.RemoveAll(filepath.Join(opts.cacheDir, "spigot"))
	}

	downloader := &fetch.HTTPDownloader{}
	sources := scheduler.Sources{
		Srg: &fetch.DefaultSrgFetcher{
			Downloader: downloader,
			Extractor:  &fetch.DirZipExtractor{},
			CacheDir:   filepath.Join(opts.cacheDir, "srg"),
			URLTemplate: func(mc string) string {
				return fmt.Sprintf("https://export.mcpbot.bspk.rs/mcp_config/%s/mcp_config-%s.zip", mc, mc)
			},
		},
		Mcp: &fetch.DefaultMcpFetcher{
			Downloader: downloader,
			CSV:        &fetch.StdCSVRows{},
			URLTemplate: func(mcp, mc string) string {
				return fmt.Sprintf("https://export.mcpbot.bspk.rs/mcp_%s/%s-%s/mcp_%s-%s.csv", mcp, mcp, mc, mcp, mc)
			},
		},
		Spigot: &fetch.DefaultSpigotFetcher{
			Git:           &fetch.GitFetcher{},
			RepoURL:       "https://hub.spigotmc.org/stash/scm/spigot/builddata.git",
			DefaultCommit: opts.builddataCommit,
			WorkDir:       filepath.Join(opts.cacheDir, "spigot"),
		},
	}

	computer := scheduler.NewComputer(sources, scheduler.Config{
		McVersion:       mcVersion,
		McpVersion:      opts.mcpVersion,
		BuildDataCommit: opts.builddataCommit,
		Logger:          logger,
	})

	results, err := computer.Run(ctx, targets)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}

	for _, t := range targets {
		snapshot := results[t]
		ext := ".srg"
		if opts.format == "binary" {
			ext = ".srg.dat"
		}
		outPath := filepath.Join(outDir, t.String()+ext)
		if err := writeConverted(outPath, opts.format, snapshot); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		logger.Info("wrote target", zap.String("target", t.String()), zap.String("path", outPath))
	}

	return nil
}
