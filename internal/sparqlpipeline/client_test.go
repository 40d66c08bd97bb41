package sparqlpipeline

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientUpdateSendsFormEncodedBody(t *testing.T) {
	var gotContentType string
	var gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	err := c.Update("DELETE WHERE { ?s ?p ?o }")
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Contains(t, gotBody, "update=")
}

func TestClientUpdateErrorsOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	err := c.Update("DELETE WHERE { ?s ?p ?o }")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClientQuerySetsAcceptHeader(t *testing.T) {
	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"results":{"bindings":[]}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	body, err := c.Query("SELECT * WHERE { ?s ?p ?o }")
	require.NoError(t, err)
	assert.Equal(t, "application/sparql-results+json", gotAccept)
	assert.Contains(t, string(body), "bindings")
}
