package fetch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jvmmap/supersrg"
)

// DefaultSrgFetcher fetches Mojang's per-version SRG archive (a ZIP
// containing an SRG text file) and caches the extracted text under
// CacheDir/<mcVersion>.srg.
type DefaultSrgFetcher struct {
	Downloader Downloader
	Extractor  ZipExtractor
	CacheDir   string
	// URLTemplate receives the Minecraft version and yields the archive
	// URL; callers own the actual mapping-artifact index (out of scope
	// for the core).
	URLTemplate func(mcVersion string) string
}

func (f *DefaultSrgFetcher) FetchSrg(ctx context.Context, mcVersion string) (string, error) {
	cached := filepath.Join(f.CacheDir, mcVersion+".srg")
	if _, err := os.Stat(cached); err == nil {
		return cached, nil
	}
	if f.URLTemplate == nil {
		return "", fmt.Errorf("no SRG source configured for %s", mcVersion)
	}
	archive, err := f.Downloader.DownloadBytes(ctx, f.URLTemplate(mcVersion))
	if err != nil {
		return "", err
	}
	extractDir := filepath.Join(f.CacheDir, "_extract-"+mcVersion)
	if err := f.Extractor.ExtractZip(archive, extractDir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(f.CacheDir, 0o755); err != nil {
		return "", err
	}
	// Mojang/SRG archives conventionally ship a single top-level .srg file;
	// callers with a different layout supply their own SrgFetcher.
	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".srg" {
			src := filepath.Join(extractDir, e.Name())
			data, err := os.ReadFile(src)
			if err != nil {
				return "", err
			}
			if err := os.WriteFile(cached, data, 0o644); err != nil {
				return "", err
			}
			return cached, nil
		}
	}
	return "", fmt.Errorf("no .srg file found in archive for %s", mcVersion)
}

// DefaultMcpFetcher fetches one MCP CSV (columns searge,name,...) and
// splits its rows into McpTables by SRG-name prefix: "func_" rows go to
// Methods, "field_" rows to Fields, and any other row is dropped.
type DefaultMcpFetcher struct {
	Downloader Downloader
	CSV        CSVRows
	URLTemplate func(mcpVersion, mcVersion string) string
}

func (f *DefaultMcpFetcher) FetchMcp(ctx context.Context, mcpVersion, mcVersion string) (McpTables, error) {
	data, err := f.Downloader.DownloadBytes(ctx, f.URLTemplate(mcpVersion, mcVersion))
	if err != nil {
		return McpTables{}, err
	}
	rows, err := f.CSV.ParseCSV(data, []string{"searge", "name"})
	if err != nil {
		return McpTables{}, err
	}
	tables := McpTables{Fields: map[string]string{}, Methods: map[string]string{}}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		searge, name := row[0], row[1]
		switch {
		case bytes.HasPrefix([]byte(searge), []byte("func_")):
			tables.Methods[searge] = name
		case bytes.HasPrefix([]byte(searge), []byte("field_")):
			tables.Fields[searge] = name
		}
	}
	return tables, nil
}

// DefaultSpigotFetcher fetches Spigot BuildData's class and member mapping
// CSRG/text files for a given BuildData commit (DefaultCommit when commit
// is empty) and parses them into a MappingStoreBuilder.
type DefaultSpigotFetcher struct {
	Git           GitCommitFetcher
	RepoURL       string
	DefaultCommit string
	WorkDir       string
}

func (f *DefaultSpigotFetcher) FetchSpigot(ctx context.Context, commit string) (*supersrg.MappingStoreBuilder, error) {
	if commit == "" {
		commit = f.DefaultCommit
	}
	dest := filepath.Join(f.WorkDir, commit)
	if err := f.Git.FetchCommit(ctx, f.RepoURL, commit, dest); err != nil {
		return nil, err
	}
	builder := supersrg.NewMappingStoreBuilder()
	classMappings := filepath.Join(dest, "mappings", "bukkit-1.17.1-cl.csrg")
	memberMappings := filepath.Join(dest, "mappings", "bukkit-1.17.1-members.csrg")
	if data, err := os.ReadFile(classMappings); err == nil {
		if err := supersrg.ParseCsrg(bytes.NewReader(data), builder); err != nil {
			return nil, err
		}
	}
	if data, err := os.ReadFile(memberMappings); err == nil {
		if err := supersrg.ParseCsrg(bytes.NewReader(data), builder); err != nil {
			return nil, err
		}
	}
	return builder, nil
}
