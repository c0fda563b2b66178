package sxcat

import (
	"context"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/internal/download"
	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// GetSpectrum returns the spectrum product manifest of one object: the
// member files and the tarball that packs them. Nothing is downloaded.
func (c *Client) GetSpectrum(ctx context.Context, target catalogue.Target) (*catalogue.Spectrum, error) {
	params, _, err := c.targetParams(ctx, target)
	if err != nil {
		return nil, err
	}

	obj, err := c.api.Call(ctx, api.OpGetSpectrum, params)
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

	return parseSpectrum(obj)
}

// GetSpectra returns spectrum manifests for several objects, indexed by the
// targets exactly as given.
func (c *Client) GetSpectra(ctx context.Context, targets []catalogue.Target, opts BatchOptions) (map[catalogue.Target]*catalogue.Spectrum, error) {
	return indexTargets(ctx, targets, opts, c.GetSpectrum)
}

// SaveSpectrum downloads the spectrum tarball of one object under
// <destdir>/<target>/. The tarball is saved as served, never extracted.
func (c *Client) SaveSpectrum(ctx context.Context, target catalogue.Target) (*download.SavedFile, error) {
	spec, err := c.GetSpectrum(ctx, target)
	if err != nil {
		return nil, err
	}
	if spec.TarballURL == "" {
		return nil, errors.Newf("spectrum of %s has no tarball", target.String()).
			Category(errors.CategoryNotFound).
			Context("target", target.String()).
			Component("client").
			Build()
	}

	item := download.Item{
		URL:     spec.TarballURL,
		RelPath: joinRel(target, remoteBase(spec.TarballURL, "spectrum.tar.gz")),
	}
	files, err := c.saveAll(ctx, []download.Item{item})
	if err != nil {
		return nil, err
	}
	return &files[0], nil
}

// SaveSpectra downloads spectrum tarballs for several objects.
func (c *Client) SaveSpectra(ctx context.Context, targets []catalogue.Target, opts BatchOptions) (map[catalogue.Target]*download.SavedFile, error) {
	return indexTargets(ctx, targets, opts, c.SaveSpectrum)
}

// joinRel builds the destination path of a product file relative to the
// download root.
func joinRel(target catalogue.Target, name string) string {
	return fileSafe(target.String()) + "/" + name
}
