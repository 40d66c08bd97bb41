package osmsource

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// CacheStrategy names the way-node location cache strategy chosen with
// --cache-strategy. This module validates the value and records it on
// PBFReader.Strategy; it is not passed to the osmpbf scanner and does
// not change how node coordinates are cached.
type CacheStrategy string

const (
	CacheSparse CacheStrategy = "sparse"
	CacheDense  CacheStrategy = "dense"
)

// ParseCacheStrategy validates the --cache-strategy flag value.
func ParseCacheStrategy(s string) (CacheStrategy, error) {
	switch CacheStrategy(s) {
	case CacheSparse:
		return CacheSparse, nil
	case CacheDense, "":
		return CacheDense, nil
	default:
		return "", fmt.Errorf("unknown cache strategy %q, want %q or %q", s, CacheSparse, CacheDense)
	}
}

// PBFReader scans a planet/extract .pbf file and delivers Objects in
// stream order: all nodes, then all ways, then all relations, matching
// the on-disk layout osmpbf.Scanner expects.
type PBFReader struct {
	Strategy  CacheStrategy
	NodesFile string // optional on-disk node coordinate cache, gob-encoded

	scanner    *osmpbf.Scanner
	nodeCoords map[osm.NodeID]orb.Point
}

// NewPBFReader constructs a reader over r using nThreads parallel PBF
// block decoders. Node coordinates are cached in memory so way
// geometries can be assembled once all nodes have been seen; this
// in-memory map is used whatever strategy is given, which is only
// stored on the reader. When nodesFile is
// non-empty, an existing cache is loaded from it up front and the
// accumulated coordinates are persisted back to it on Close, so a
// second pass over a way-heavy extract doesn't need to re-read every
// node.
func NewPBFReader(ctx context.Context, r io.Reader, nThreads int, strategy CacheStrategy, nodesFile string) *PBFReader {
	p := &PBFReader{
		Strategy:   strategy,
		NodesFile:  nodesFile,
		scanner:    osmpbf.New(ctx, r, nThreads),
		nodeCoords: make(map[osm.NodeID]orb.Point),
	}
	if nodesFile != "" {
		if loaded, err := loadNodeCache(nodesFile); err == nil {
			p.nodeCoords = loaded
		}
	}
	return p
}

// Close releases the underlying scanner and, if a node cache path was
// configured, persists the accumulated coordinates to it.
func (p *PBFReader) Close() error {
	if p.NodesFile != "" {
		if err := saveNodeCache(p.NodesFile, p.nodeCoords); err != nil {
			return err
		}
	}
	return p.scanner.Close()
}

func loadNodeCache(path string) (map[osm.NodeID]orb.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var cache map[osm.NodeID]orb.Point
	if err := gob.NewDecoder(f).Decode(&cache); err != nil {
		return nil, fmt.Errorf("decode node cache %s: %w", path, err)
	}
	return cache, nil
}

func saveNodeCache(path string, cache map[osm.NodeID]orb.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create node cache %s: %w", path, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(cache); err != nil {
		return fmt.Errorf("encode node cache %s: %w", path, err)
	}
	return nil
}

// Err returns the first error encountered while scanning, if any.
func (p *PBFReader) Err() error {
	return p.scanner.Err()
}

// Each calls visit once per object in stream order. Node coordinates
// are recorded as they stream by so way adaptation can resolve member
// node locations regardless of cache strategy.
func (p *PBFReader) Each(visit func(Object) error) error {
	for p.scanner.Scan() {
		switch e := p.scanner.Object().(type) {
		case *osm.Node:
			p.nodeCoords[e.ID] = orb.Point{e.Lon, e.Lat}
			if err := visit(FromNode(e)); err != nil {
				return err
			}
		case *osm.Way:
			obj := FromWay(e, func(id osm.NodeID) (orb.Point, bool) {
				pt, ok := p.nodeCoords[id]
				return pt, ok
			})
			if err := visit(obj); err != nil {
				return err
			}
		case *osm.Relation:
			if err := visit(FromRelation(e)); err != nil {
				return err
			}
		}
	}
	return p.scanner.Err()
}
