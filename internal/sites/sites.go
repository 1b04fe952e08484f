// Package sites looks up camera site metadata from the network's site API.
package sites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"phenofetch/internal/helpers"
)

// DefaultEndpoint serves the full site listing as JSON.
const DefaultEndpoint = "https://phenocam.nau.edu/api/siteinfo/"

// ErrSiteNotFound is returned when a site code is not in the listing.
var ErrSiteNotFound = errors.New("site code not found")

// Site is one camera site as listed by the API.
type Site struct {
	SiteCode        string `json:"siteCode"`
	SiteDescription string `json:"siteDescription"`
	DomainCode      string `json:"domainCode"`
	StateCode       string `json:"stateCode"`
	SiteType        string `json:"siteType"`
}

type siteListResponse struct {
	Data struct {
		Sites []Site `json:"sites"`
	} `json:"data"`
}

// Client fetches the site listing.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a site API client. A nil httpClient gets a default with
// a 30s timeout; an empty endpoint uses DefaultEndpoint.
func NewClient(httpClient *http.Client, endpoint string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{httpClient: httpClient, endpoint: endpoint}
}

// List fetches every known site.
func (c *Client) List(ctx context.Context) ([]Site, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating site list request: %w", err)
	}
	req.Header.Set("User-Agent", helpers.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching site list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("site list request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading site list response: %w", err)
	}

	var listing siteListResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("unmarshalling site list JSON: %w", err)
	}
	return listing.Data.Sites, nil
}

// Lookup finds one site by its code. A failed lookup must abort callers
// before they start any crawl traffic.
func (c *Client) Lookup(ctx context.Context, siteCode string) (Site, error) {
	all, err := c.List(ctx)
	if err != nil {
		return Site{}, err
	}
	for _, site := range all {
		if site.SiteCode == siteCode {
			log.Infof("Site found %s: %s", site.SiteCode, site.SiteDescription)
			return site, nil
		}
	}
	return Site{}, fmt.Errorf("%w: %s", ErrSiteNotFound, siteCode)
}

// ArchiveID builds the archive identifier the browse URLs are keyed by,
// e.g. "NEON.D16.ABBY.DP1.00033".
func ArchiveID(domainCode, siteCode, productID string) string {
	return fmt.Sprintf("NEON.%s.%s.%s", domainCode, siteCode, productID)
}
