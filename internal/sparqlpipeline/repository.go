package sparqlpipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// sparqlValue and sparqlResults mirror the W3C SPARQL Query Results
// JSON Format shapes this family's RDF4J/GraphDB clients decode.
type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sparqlResults struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

func decodeSparqlResults(r io.Reader, out *sparqlResults) error {
	return json.NewDecoder(r).Decode(out)
}

// Repository describes one repository entry as returned by an RDF4J
// server's /repositories listing.
type Repository struct {
	ID    string
	Title string
	Type  string
}

// ListRepositories queries an RDF4J-compatible server's repository
// listing endpoint, used by EnsureRepository to check whether the
// target repository already exists before creating it.
func (c *Client) ListRepositories(serverURL string) ([]Repository, error) {
	req, err := http.NewRequest(http.MethodGet, serverURL+"/repositories", nil)
	if err != nil {
		return nil, fmt.Errorf("build list-repositories request: %w", err)
	}
	req.Header.Set("Accept", "application/sparql-results+json")
	c.authenticate(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list repositories: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed sparqlResults
	if err := decodeSparqlResults(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("decode repository list: %w", err)
	}

	repos := make([]Repository, 0, len(parsed.Results.Bindings))
	for _, binding := range parsed.Results.Bindings {
		repos = append(repos, Repository{
			ID:    binding["id"].Value,
			Title: binding["title"].Value,
			Type:  binding["type"].Value,
		})
	}
	return repos, nil
}

// EnsureRepository creates repositoryID as an RDF4J in-memory repository
// on serverURL if it doesn't already exist. This is the bootstrap step
// the update command can run before starting the replication loop
// against a fresh store.
func (c *Client) EnsureRepository(serverURL, repositoryID string) error {
	repos, err := c.ListRepositories(serverURL)
	if err != nil {
		return err
	}
	for _, r := range repos {
		if r.ID == repositoryID {
			return nil
		}
	}

	config := fmt.Sprintf(`
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#>.
@prefix rep: <http://www.openrdf.org/config/repository#>.
@prefix sr: <http://www.openrdf.org/config/repository/sail#>.
@prefix sail: <http://www.openrdf.org/config/sail#>.
@prefix mem: <http://www.openrdf.org/config/sail/memory#>.

[] a rep:Repository ;
   rep:repositoryID "%s" ;
   rdfs:label "osm2rdf store for %s" ;
   rep:repositoryImpl [
      rep:repositoryType "openrdf:SailRepository" ;
      sr:sailImpl [
         sail:sailType "openrdf:MemoryStore"
      ]
   ].`, repositoryID, repositoryID)

	req, err := http.NewRequest(http.MethodPut, serverURL+"/repositories/"+repositoryID, bytes.NewBufferString(config))
	if err != nil {
		return fmt.Errorf("build create-repository request: %w", err)
	}
	req.Header.Set("Content-Type", "text/turtle")
	c.authenticate(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("create repository %s: %w", repositoryID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("create repository %s: status %d: %s", repositoryID, resp.StatusCode, string(body))
	}
	return nil
}
