package sxcat

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/tphakala/sxcat-go/internal/download"
)

// schemeLabel buckets a URL into the transport label used on download
// metrics.
func schemeLabel(rawURL string) string {
	if strings.HasPrefix(rawURL, "ftp://") {
		return "ftp"
	}
	return "http"
}

// remoteBase extracts the file name a URL points at, falling back when the
// URL does not parse or has no path.
func remoteBase(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return fallback
	}
	return base
}

// saveAll runs the download manager and feeds the outcome into the metrics.
func (c *Client) saveAll(ctx context.Context, items []download.Item) ([]download.SavedFile, error) {
	if len(items) == 0 {
		return nil, nil
	}

	start := time.Now()
	files, err := c.downloads.SaveAll(ctx, items)
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.Download.RecordDownload(schemeLabel(items[0].URL), "error")
		return nil, err
	}

	for i := range files {
		f := &files[i]
		scheme := schemeLabel(f.Item.URL)
		c.metrics.Download.RecordDownload(scheme, string(f.Outcome))
		if f.Outcome == download.OutcomeSaved {
			c.metrics.Download.RecordDownloadBytes(scheme, f.Bytes)
		}
	}
	c.metrics.Download.RecordDownloadDuration(schemeLabel(items[0].URL), elapsed.Seconds())
	return files, nil
}
