// Package fetch defines the external-collaborator boundary: the HTTP,
// git, ZIP, and CSV plumbing that produces the primitive mapping inputs
// the scheduler composes. These interfaces are deliberately thin — the
// scheduler depends only on them, never on a concrete transport — so
// tests can substitute fakes without touching the network.
package fetch

import (
	"context"

	"github.com/jvmmap/supersrg"
)

// McpTables holds the two SRG-name-keyed rename tables an MCP release
// publishes.
type McpTables struct {
	Fields  map[string]string
	Methods map[string]string
}

// SrgFetcher resolves a Minecraft version to a local path holding its SRG
// mapping text, fetching and caching it if necessary. Idempotent.
type SrgFetcher interface {
	FetchSrg(ctx context.Context, mcVersion string) (path string, err error)
}

// McpFetcher resolves an MCP release for a given Minecraft version into
// its rename tables.
type McpFetcher interface {
	FetchMcp(ctx context.Context, mcpVersion, mcVersion string) (McpTables, error)
}

// SpigotFetcher resolves a BuildData commit (or "latest") into a class
// mapping builder. Callers apply a package-prefix transform themselves;
// this interface only returns the raw Spigot class+member mappings.
type SpigotFetcher interface {
	FetchSpigot(ctx context.Context, commit string) (*supersrg.MappingStoreBuilder, error)
}

// GitCommitFetcher checks out a single commit of a remote repository into
// destDir.
type GitCommitFetcher interface {
	FetchCommit(ctx context.Context, url, commit, destDir string) error
}

// Downloader performs opaque byte/text fetches over HTTP.
type Downloader interface {
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
	DownloadText(ctx context.Context, url string) (string, error)
}

// ZipExtractor extracts every entry of a ZIP archive into destDir.
type ZipExtractor interface {
	ExtractZip(archive []byte, destDir string) error
}

// CSVRows parses bytes as CSV, validating the header against schema if
// non-nil, and returns the data rows.
type CSVRows interface {
	ParseCSV(data []byte, schema []string) ([][]string, error)
}
