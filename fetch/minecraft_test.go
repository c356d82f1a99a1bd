package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
)

type fakeDownloader struct{ data []byte }

func (f *fakeDownloader) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return f.data, nil
}

func (f *fakeDownloader) DownloadText(ctx context.Context, url string) (string, error) {
	return string(f.data), nil
}

func zipOf(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("zip.Create failed: %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("zip write failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close failed: %v", err)
	}
	return buf.Bytes()
}

func TestDefaultSrgFetcherExtractsAndCaches(t *testing.T) {
	archive := zipOf(t, "mappings.srg", "CL: a/Obf a/Srg\n")
	cacheDir := t.TempDir()

	fetcher := &DefaultSrgFetcher{
		Downloader: &fakeDownloader{data: archive},
		Extractor:  DirZipExtractor{},
		CacheDir:   cacheDir,
		URLTemplate: func(mc string) string {
			return "https://example.invalid/" + mc + ".zip"
		},
	}

	path, err := fetcher.FetchSrg(context.Background(), "1.17.1")
	if err != nil {
		t.Fatalf("FetchSrg failed: %v", err)
	}

	// Second call should hit the cache without touching the downloader.
	fetcher.Downloader = nil
	cached, err := fetcher.FetchSrg(context.Background(), "1.17.1")
	if err != nil {
		t.Fatalf("cached FetchSrg failed: %v", err)
	}
	if cached != path {
		t.Errorf("cached path = %q, want %q", cached, path)
	}
}

func TestDefaultMcpFetcherSplitsBySeargePrefix(t *testing.T) {
	csvData := []byte("searge,name\nfunc_1_eat,eat\nfield_2_x,x\n")
	fetcher := &DefaultMcpFetcher{
		Downloader: &fakeDownloader{data: csvData},
		CSV:        StdCSVRows{},
		URLTemplate: func(mcp, mc string) string {
			return "https://example.invalid/mcp.csv"
		},
	}

	tables, err := fetcher.FetchMcp(context.Background(), "stable", "1.17.1")
	if err != nil {
		t.Fatalf("FetchMcp failed: %v", err)
	}
	if tables.Methods["func_1_eat"] != "eat" {
		t.Errorf("Methods[func_1_eat] = %q, want eat", tables.Methods["func_1_eat"])
	}
	if tables.Fields["field_2_x"] != "x" {
		t.Errorf("Fields[field_2_x] = %q, want x", tables.Fields["field_2_x"])
	}
}

func TestStdCSVRowsRejectsWrongSchema(t *testing.T) {
	_, err := StdCSVRows{}.ParseCSV([]byte("a,b\n1,2\n"), []string{"searge", "name"})
	if err == nil {
		t.Fatal("expected schema mismatch error")
	}
}
