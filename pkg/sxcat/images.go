package sxcat

import (
	"context"
	"fmt"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/internal/download"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// GetImages lists the image products of one object, per energy band and
// format. Nothing is downloaded.
func (c *Client) GetImages(ctx context.Context, target catalogue.Target) (*catalogue.ImageSet, error) {
	params, _, err := c.targetParams(ctx, target)
	if err != nil {
		return nil, err
	}

	obj, err := c.api.Call(ctx, api.OpGetImages, params)
	if err != nil {
		return nil, err
	}

	res, err := parseResolution(obj)
	if err != nil {
		return nil, err
	}
	if res.Ambiguous() {
		return nil, ambiguousError(target, res)
	}

	return parseImageSet(obj)
}

// SaveImages downloads every image product of one object under
// <destdir>/<target>/.
func (c *Client) SaveImages(ctx context.Context, target catalogue.Target) ([]download.SavedFile, error) {
	set, err := c.GetImages(ctx, target)
	if err != nil {
		return nil, err
	}

	items := make([]download.Item, 0, len(set.Images))
	for _, img := range set.Images {
		fallback := fmt.Sprintf("%s.%s", img.Band, img.Format)
		items = append(items, download.Item{
			URL:     img.URL,
			RelPath: joinRel(target, remoteBase(img.URL, fallback)),
		})
	}
	return c.saveAll(ctx, items)
}
