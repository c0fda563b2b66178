package resolver

import (
	"context"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/internal/errors"
)

// CatalogueProvider resolves names through the catalogue's own resolveName
// operation. It only knows names the catalogue pipeline has cross-matched,
// but for those it returns the position of the X-ray source itself rather
// than the optical counterpart.
type CatalogueProvider struct {
	client *api.Client
}

// NewCatalogueProvider creates a provider backed by the query endpoint.
func NewCatalogueProvider(client *api.Client) *CatalogueProvider {
	return &CatalogueProvider{client: client}
}

// Resolve implements the Provider interface.
func (p *CatalogueProvider) Resolve(ctx context.Context, name string) (*Result, error) {
	payload, err := p.client.Call(ctx, api.OpResolveName, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}

	ra, raErr := payload.GetFloat64("RA")
	dec, decErr := payload.GetFloat64("Dec")
	if raErr != nil || decErr != nil {
		return nil, errors.Newf("resolveName payload missing coordinates").
			Category(errors.CategoryResponseParsing).
			Context("name", name).
			Component("resolver").
			Build()
	}

	result := &Result{
		RA:       ra,
		Dec:      dec,
		Provider: "catalogue",
	}
	result.Canonical, _ = payload.GetString("Name")
	result.Provenance, _ = payload.GetString("Provenance")
	if result.Provenance == "" {
		result.Provenance = "SXCAT cross-match pipeline"
	}
	return result, nil
}
