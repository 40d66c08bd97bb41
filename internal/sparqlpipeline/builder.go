package sparqlpipeline

import (
	"fmt"
	"strings"

	"osm2rdf.sophox.org/internal/vocab"
)

// BuildUpdate renders buf to a single SPARQL 1.1 Update request body:
// the fixed prefix preamble, a DELETE/WHERE block covering every
// buffered subject (preserving osmm:task statements, which are
// authored outside this pipeline), an INSERT block per non-deleted
// subject, and, when seqID is non-nil, a trailing status-update block
// that atomically replaces schema:version and schema:dateModified.
func BuildUpdate(buf *Buffer, seqID *int64, highWater string) string {
	deleteSubjects, inserts := buf.render()

	var b strings.Builder
	b.WriteString(vocab.SparqlPreamble())
	b.WriteByte('\n')

	if len(deleteSubjects) > 0 {
		b.WriteString("DELETE { ?s ?p ?o } WHERE { VALUES ?s { ")
		for i, s := range deleteSubjects {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(s)
		}
		b.WriteString(" } ?s ?p ?o . FILTER (osmm:task != ?p) };\n")
	}

	for _, s := range buf.order {
		lines, ok := inserts[s]
		if !ok {
			continue
		}
		b.WriteString("INSERT { ")
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte(' ')
		}
		b.WriteString("} WHERE {};\n")
	}

	if seqID != nil {
		b.WriteString("DELETE { osmroot: schema:version ?v . osmroot: schema:dateModified ?d } WHERE { OPTIONAL { osmroot: schema:version ?v } OPTIONAL { osmroot: schema:dateModified ?d } };\n")
		b.WriteString(fmt.Sprintf("INSERT { osmroot: schema:version %s . osmroot: schema:dateModified %s } WHERE {};\n",
			vocab.IntLiteral(*seqID), highWater))
	}

	return b.String()
}
