package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/k3a/html2text"

	"github.com/tphakala/sxcat-go/internal/errors"
)

const (
	sesameDefaultURL = "https://cds.unistra.fr/cgi-bin/nph-sesame"
	sesameUserAgent  = "sxcat-go https://github.com/tphakala/sxcat-go"
	sesameTimeout    = 10 * time.Second
)

// SesameProvider resolves names through the CDS Sesame service, which chains
// Simbad, NED and VizieR. It knows essentially every published designation
// but returns the counterpart position, not the X-ray centroid.
type SesameProvider struct {
	baseURL string
	client  *http.Client
}

// NewSesameProvider creates a Sesame-backed provider. An empty baseURL
// selects the public CDS mirror.
func NewSesameProvider(baseURL string) *SesameProvider {
	if baseURL == "" {
		baseURL = sesameDefaultURL
	}
	return &SesameProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: sesameTimeout},
	}
}

// Resolve implements the Provider interface.
func (p *SesameProvider) Resolve(ctx context.Context, name string) (*Result, error) {
	// -oI selects the plain text output with identifier lines, /A asks all
	// mirrors in order.
	reqURL := fmt.Sprintf("%s/-oI/A?%s", p.baseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, errors.Newf("error creating request: %w", err).
			Category(errors.CategoryNetwork).
			Component("resolver").
			Build()
	}
	req.Header.Set("User-Agent", sesameUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Newf("sesame request failed: %w", err).
			Category(errors.CategoryNetwork).
			Context("name", name).
			Component("resolver").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Newf("error reading sesame response: %w", err).
			Category(errors.CategoryNetwork).
			Context("name", name).
			Component("resolver").
			Build()
	}

	if resp.StatusCode != http.StatusOK {
		preview := html2text.HTML2Text(string(body))
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return nil, errors.Newf("sesame returned status %d: %s", resp.StatusCode, preview).
			Category(errors.CategoryNetwork).
			Context("name", name).
			Context("status_code", resp.StatusCode).
			Component("resolver").
			Build()
	}

	result, err := parseSesameText(string(body))
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryNameResolution).
			Context("name", name).
			Component("resolver").
			Build()
	}
	result.Provider = "sesame"
	return result, nil
}

// parseSesameText reads the Sesame plain text format. A successful lookup
// carries a "%J <ra> <dec>" line; "%I.0" is the canonical designation and
// "#=" names the mirror that answered.
func parseSesameText(body string) (*Result, error) {
	result := &Result{}
	found := false

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "%J "):
			fields := strings.Fields(line)
			if len(fields) < 3 {
				continue
			}
			ra, raErr := strconv.ParseFloat(fields[1], 64)
			dec, decErr := strconv.ParseFloat(fields[2], 64)
			if raErr != nil || decErr != nil {
				continue
			}
			result.RA = ra
			result.Dec = dec
			found = true
		case strings.HasPrefix(line, "%I.0 "):
			result.Canonical = strings.TrimSpace(strings.TrimPrefix(line, "%I.0 "))
		case strings.HasPrefix(line, "#="):
			attribution := strings.TrimPrefix(line, "#=")
			if idx := strings.IndexAny(attribution, ":("); idx > 0 {
				attribution = attribution[:idx]
			}
			result.Provenance = html2text.HTML2Text(strings.TrimSpace(attribution))
		}
	}

	if !found {
		return nil, fmt.Errorf("no position in sesame response")
	}
	if result.Provenance == "" {
		result.Provenance = "CDS Sesame"
	}
	return result, nil
}
