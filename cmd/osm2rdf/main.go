// Command osm2rdf converts OpenStreetMap data to RDF, either as a bulk
// file export from a .osm.pbf extract or as a continuously-running
// minutely-replication sync against a SPARQL 1.1 Update endpoint.
package main

import (
	"fmt"
	"os"

	"osm2rdf.sophox.org/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
