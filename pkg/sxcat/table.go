package sxcat

import (
	"context"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/internal/download"
	"github.com/tphakala/sxcat-go/internal/errors"
)

// DownloadTable fetches a full catalogue table dump into the destination
// directory and returns where it landed. The service picks the mirror: with
// PreferFTP set the URL points at the FTP archive, otherwise at the web
// endpoint. An existing file is skipped unless clobber is on.
func (c *Client) DownloadTable(ctx context.Context, table string) (*download.SavedFile, error) {
	if table == "" {
		return nil, errors.Newf("table name must not be empty").
			Category(errors.CategoryValidation).
			Component("client").
			Build()
	}

	obj, err := c.api.Call(ctx, api.OpGetTableURL, map[string]any{
		"table":     table,
		"preferftp": c.options.PreferFTP,
	})
	if err != nil {
		return nil, err
	}

	rawURL, err := obj.GetString("URL")
	if err != nil {
		return nil, parseError(err, "URL")
	}

	item := download.Item{
		URL:     rawURL,
		RelPath: remoteBase(rawURL, table),
	}
	files, err := c.saveAll(ctx, []download.Item{item})
	if err != nil {
		return nil, err
	}

	logger.Info("table dump saved",
		"table", table,
		"path", files[0].Path,
		"bytes", files[0].Bytes,
		"outcome", files[0].Outcome)
	return &files[0], nil
}
