package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
)

// HTTPDownloader is a Downloader backed by net/http and the default
// client. It performs no retries or backoff — per scope, the core treats
// these as external collaborators and does not harden this layer.
type HTTPDownloader struct {
	Client *http.Client
}

func (d *HTTPDownloader) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return http.DefaultClient
}

func (d *HTTPDownloader) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (d *HTTPDownloader) DownloadText(ctx context.Context, url string) (string, error) {
	b, err := d.DownloadBytes(ctx, url)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DirZipExtractor extracts ZIP archives onto the local filesystem.
type DirZipExtractor struct{}

func (DirZipExtractor) ExtractZip(archive []byte, destDir string) error {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		target := filepath.Join(destDir, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		src, err := f.Open()
		if err != nil {
			return err
		}
		dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			src.Close()
			return err
		}
		_, copyErr := io.Copy(dst, src)
		src.Close()
		dst.Close()
		if copyErr != nil {
			return copyErr
		}
	}
	return nil
}

// StdCSVRows parses CSV using encoding/csv, validating the header row
// against schema when provided.
type StdCSVRows struct{}

func (StdCSVRows) ParseCSV(data []byte, schema []string) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(schema) > 0 {
		if len(rows) == 0 {
			return nil, fmt.Errorf("empty CSV, expected header %v", schema)
		}
		header := rows[0]
		if len(header) < len(schema) {
			return nil, fmt.Errorf("CSV header %v does not satisfy expected schema %v", header, schema)
		}
		for i, col := range schema {
			if header[i] != col {
				return nil, fmt.Errorf("CSV header column %d: expected %q, got %q", i, col, header[i])
			}
		}
		rows = rows[1:]
	}
	return rows, nil
}

// GitFetcher shells out to the system git binary to check out a single
// commit of a remote repository.
type GitFetcher struct {
	GitBinary string
}

func (g *GitFetcher) binary() string {
	if g.GitBinary != "" {
		return g.GitBinary
	}
	return "git"
}

func (g *GitFetcher) FetchCommit(ctx context.Context, url, commit, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	init := exec.CommandContext(ctx, g.binary(), "init")
	init.Dir = destDir
	if out, err := init.CombinedOutput(); err != nil {
		return fmt.Errorf("git init: %w: %s", err, out)
	}
	fetchCmd := exec.CommandContext(ctx, g.binary(), "fetch", "--depth", "1", url, commit)
	fetchCmd.Dir = destDir
	if out, err := fetchCmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git fetch %s %s: %w: %s", url, commit, err, out)
	}
	checkout := exec.CommandContext(ctx, g.binary(), "checkout", "FETCH_HEAD")
	checkout.Dir = destDir
	if out, err := checkout.CombinedOutput(); err != nil {
		return fmt.Errorf("git checkout FETCH_HEAD: %w: %s", err, out)
	}
	return nil
}
