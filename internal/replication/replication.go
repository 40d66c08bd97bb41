// Package replication drives the OSM minutely-replication loop: it
// tracks the current sequence id, fetches diff blocks from a
// replication server, feeds them through the entity handler, and
// commits progress to the SPARQL store only after a successful flush.
package replication

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"osm2rdf.sophox.org/internal/osmsource"
	"osm2rdf.sophox.org/internal/sparqlpipeline"
)

// State is the ReplicationState entity: the current sequence id, the
// last known server-side sequence, the last progress tick, and the
// per-tick delta counters reset every 60 wall-clock seconds.
type State struct {
	SeqID            int64
	ServerSeqID      int64
	LastTick         time.Time
	ObjectsSinceTick int
}

// Server fetches diff blocks and maps timestamps to sequence ids
// against an OSM replication server (e.g. planet.openstreetmap.org's
// minutely feed).
type Server struct {
	BaseURL        string
	HTTPClient     *http.Client
	MaxDownloadKiB int64 // 0 means unbounded
}

// NewServer constructs a Server with the recommended connect/read
// timeouts.
func NewServer(baseURL string) *Server {
	return &Server{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// CurrentSequence fetches the server's current sequence id from its
// state.txt file.
func (s *Server) CurrentSequence() (int64, error) {
	body, err := s.get(s.BaseURL + "/state.txt")
	if err != nil {
		return 0, err
	}
	return parseSequenceFromState(body)
}

var sequenceLine = regexp.MustCompile(`(?m)^sequenceNumber=(\d+)\s*$`)

func parseSequenceFromState(body []byte) (int64, error) {
	m := sequenceLine.FindSubmatch(body)
	if m == nil {
		return 0, errors.New("state.txt missing sequenceNumber")
	}
	return strconv.ParseInt(string(m[1]), 10, 64)
}

// FetchDiff downloads and decodes the .osc.gz diff for seq. Fetch
// errors are tolerated by the caller (treated as an empty diff), but
// are still returned here so the caller can log them.
func (s *Server) FetchDiff(seq int64) (*osmsource.Diff, error) {
	path := sequencePath(seq)
	body, err := s.get(s.BaseURL + "/" + path + ".osc.gz")
	if err != nil {
		return nil, err
	}
	gz, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ungzip diff %d: %w", seq, err)
	}
	defer gz.Close()
	return osmsource.ParseDiff(gz)
}

// sequencePath renders a sequence id as the three-group zero-padded
// path the replication server uses, e.g. 1234567 -> "001/234/567".
func sequencePath(seq int64) string {
	s := fmt.Sprintf("%09d", seq)
	return s[0:3] + "/" + s[3:6] + "/" + s[6:9]
}

func (s *Server) get(url string) ([]byte, error) {
	resp, err := s.HTTPClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if s.MaxDownloadKiB > 0 {
		limit := s.MaxDownloadKiB * 1024
		body = io.LimitReader(resp.Body, limit+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if s.MaxDownloadKiB > 0 && int64(len(data)) > s.MaxDownloadKiB*1024 {
		return nil, fmt.Errorf("get %s: exceeds max download size of %d KiB", url, s.MaxDownloadKiB)
	}
	return data, nil
}

// DeriveStartSequence resolves the starting sequence id: seqIDFlag if
// set, otherwise by asking the SPARQL store for osmroot:
// schema:version, falling back to osmroot: schema:dateModified minus
// 60 minutes mapped through toSeq. It returns an error if none of
// these sources yields a usable sequence id.
func DeriveStartSequence(seqIDFlag *int64, client *sparqlpipeline.Client, toSeq func(time.Time) (int64, error)) (int64, error) {
	if seqIDFlag != nil {
		return *seqIDFlag, nil
	}

	if v, ok, err := queryVersion(client); err != nil {
		return 0, err
	} else if ok {
		return v, nil
	}

	ts, ok, err := queryDateModified(client)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.New("replication: store has neither schema:version nor schema:dateModified and no --seqid given")
	}
	return toSeq(ts.Add(-60 * time.Minute))
}
