package sparqlpipeline

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"osm2rdf.sophox.org/internal/envconfig"
)

// Client posts SPARQL 1.1 Update requests to a single endpoint,
// form-encoding the body the way this family's RDF4J/PoolParty clients
// post their own SPARQL bodies: url.Values{}.Set, .Encode(), an
// explicit Content-Type header, and a hard check of the response status
// code before returning.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client

	// Username/Password, when Username is non-empty, are sent as HTTP
	// Basic Auth credentials on every request, matching how this
	// family's triple-store clients authenticate.
	Username string
	Password string
}

// NewClient constructs a Client with the recommended 60s connect/read
// timeout, overridable via OSM2RDF_HTTP_TIMEOUT (e.g. "90s") for
// deployments talking to a slower SPARQL endpoint.
func NewClient(endpoint string) *Client {
	timeout := envconfig.New("OSM2RDF").GetDuration("HTTP_TIMEOUT", 60*time.Second)
	return &Client{
		Endpoint: endpoint,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) authenticate(req *http.Request) {
	if c.Username != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}
}

// Update POSTs the given SPARQL 1.1 Update body. A non-2xx response is
// returned as an error; the caller (the replication loop) must not
// advance its sequence id when this happens.
func (c *Client) Update(sparql string) error {
	data := url.Values{}
	data.Set("update", sparql)

	req, err := http.NewRequest(http.MethodPost, c.Endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("build sparql update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.authenticate(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sparql update request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sparql update returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Query runs a SPARQL query and returns the raw response body,
// requesting JSON results the way the rest of the pipeline's read path
// (e.g. reading osmroot: schema:version on startup) expects.
func (c *Client) Query(sparql string) ([]byte, error) {
	data := url.Values{}
	data.Set("query", sparql)

	req, err := http.NewRequest(http.MethodPost, c.Endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build sparql query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	c.authenticate(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sparql query request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sparql query response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sparql query returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
