package arxiv

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	partialSuffix      = ".part"
	metaSuffix         = ".meta"
	defaultHTTPTimeout = 90 * time.Second
)

// Downloader stores PDFs in a directory, resuming interrupted transfers from
// a hidden partial file next to the destination.
type Downloader struct {
	dir    string
	client *http.Client
}

type downloadMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"lastModified"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// NewDownloader prepares dir to receive PDFs.
func NewDownloader(dir string, client *http.Client) (*Downloader, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("arxiv: pdf directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Downloader{dir: dir, client: client}, nil
}

// Fetch downloads pdfURL into the directory as name and returns its path. An
// existing non-empty file is kept as is.
func (d *Downloader) Fetch(ctx context.Context, pdfURL, name string) (string, error) {
	if name == "" {
		name = cacheKey(pdfURL) + ".pdf"
	}
	pdfPath, metaPath, partialPath := d.pathsFor(name)

	if info, err := os.Stat(pdfPath); err == nil && info.Size() > 0 {
		return pdfPath, nil
	}

	meta, _ := readMeta(metaPath)
	return d.download(ctx, pdfURL, pdfPath, metaPath, partialPath, meta)
}

func (d *Downloader) download(ctx context.Context, pdfURL, pdfPath, metaPath, partialPath string, meta downloadMeta) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", err
	}

	var partialSize int64
	if info, err := os.Stat(partialPath); err == nil && info.Size() > 0 {
		partialSize = info.Size()
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", partialSize))
		if meta.ETag != "" {
			req.Header.Set("If-Range", meta.ETag)
		} else if meta.LastModified != "" {
			req.Header.Set("If-Range", meta.LastModified)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return d.saveBody(resp, pdfPath, metaPath, partialPath, false)
	case http.StatusPartialContent:
		return d.saveBody(resp, pdfPath, metaPath, partialPath, partialSize > 0)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("pdf download failed: %s (%s)", resp.Status, string(body))
	}
}

func (d *Downloader) saveBody(resp *http.Response, pdfPath, metaPath, partialPath string, appendExisting bool) (string, error) {
	// Record validators first so an interrupted copy can resume.
	meta := downloadMeta{
		URL:          resp.Request.URL.String(),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}
	if err := writeMeta(metaPath, meta); err != nil {
		return "", err
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendExisting {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(partialPath, flags, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(partialPath, pdfPath); err != nil {
		return "", err
	}
	_ = os.Remove(metaPath)
	return pdfPath, nil
}

func (d *Downloader) pathsFor(name string) (string, string, string) {
	hidden := "." + strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(d.dir, name), filepath.Join(d.dir, hidden+metaSuffix), filepath.Join(d.dir, hidden+partialSuffix)
}

func cacheKey(pdfURL string) string {
	if id := ExtractIdentifier(pdfURL); id != "" {
		return sanitizeKey(id)
	}
	sum := sha1.Sum([]byte(pdfURL))
	return hex.EncodeToString(sum[:])
}

func sanitizeKey(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "/", "-")
	value = strings.ReplaceAll(value, ":", "-")
	value = strings.ReplaceAll(value, "..", "-")
	return value
}

func readMeta(path string) (downloadMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return downloadMeta{}, err
	}
	var meta downloadMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return downloadMeta{}, err
	}
	return meta, nil
}

func writeMeta(path string, meta downloadMeta) error {
	meta.FetchedAt = time.Now().UTC()
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
