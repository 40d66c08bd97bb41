package replication

import (
	"encoding/json"
	"fmt"
	"time"

	"osm2rdf.sophox.org/internal/sparqlpipeline"
)

// sparqlValue is one binding value in a SPARQL JSON results response.
type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// sparqlResults is the minimal shape of a SPARQL 1.1 JSON results
// document needed to read a single scalar binding.
type sparqlResults struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

func queryScalar(client *sparqlpipeline.Client, sparql, varName string) (string, bool, error) {
	body, err := client.Query(sparql)
	if err != nil {
		return "", false, fmt.Errorf("query %s: %w", varName, err)
	}
	var parsed sparqlResults
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, fmt.Errorf("decode sparql results for %s: %w", varName, err)
	}
	if len(parsed.Results.Bindings) == 0 {
		return "", false, nil
	}
	v, ok := parsed.Results.Bindings[0][varName]
	if !ok {
		return "", false, nil
	}
	return v.Value, true, nil
}

func queryVersion(client *sparqlpipeline.Client) (int64, bool, error) {
	v, ok, err := queryScalar(client, "SELECT ?v WHERE { osmroot: schema:version ?v }", "v")
	if err != nil || !ok {
		return 0, ok, err
	}
	var n int64
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return 0, false, fmt.Errorf("parse schema:version %q: %w", v, err)
	}
	return n, true, nil
}

func queryDateModified(client *sparqlpipeline.Client) (time.Time, bool, error) {
	v, ok, err := queryScalar(client, "SELECT ?d WHERE { osmroot: schema:dateModified ?d }", "d")
	if err != nil || !ok {
		return time.Time{}, ok, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse schema:dateModified %q: %w", v, err)
	}
	return t, true, nil
}
