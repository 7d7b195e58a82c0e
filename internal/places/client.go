// Package places looks up structured address components for a free-text
// query. It is an optional collaborator: any failure leaves the caller on
// the manual-entry path.
package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/biszaal/expenzez-sub001/internal/config"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Address is one resolved place, already split into the fields the
// registration record stores.
type Address struct {
	Line1           string `json:"line1"`
	Line2           string `json:"line2"`
	City            string `json:"city"`
	StateOrProvince string `json:"state_or_province"`
	PostalCode      string `json:"postal_code"`
	CountryCode     string `json:"country_code"`
}

type Client struct {
	config     config.PlacesConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.PlacesConfig, logger *zap.Logger) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type lookupResponse struct {
	Results []Address `json:"results"`
}

// Lookup resolves a free-text query to its best-matching address. A query
// with no match is an error, not an empty address.
func (c *Client) Lookup(ctx context.Context, query string) (*Address, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.config.BaseURL+"/v1/places/details?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create place lookup request")
	}

	c.logger.Debug("looking up place", zap.String("query", query))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "place lookup request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("place lookup status %d: %s", resp.StatusCode, string(body))
	}

	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decode place lookup response")
	}
	if len(out.Results) == 0 {
		return nil, errors.New("no place matched the query")
	}

	return &out.Results[0], nil
}
