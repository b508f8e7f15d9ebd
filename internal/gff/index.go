package gff

import (
	"compress/gzip"
	"fmt"
	"os"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/tabix"
)

// maxContigEnd is the largest coordinate the index bins can address;
// used when a query does not bound the interval.
const maxContigEnd = 1<<29 - 1

// Index wraps the on-disk coordinate index of one annotation.
type Index struct {
	tbx *tabix.Index
}

// ReadIndex loads a coordinate index from disk.
func ReadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompress index: %w", err)
	}
	defer gz.Close()
	tbx, err := tabix.ReadFrom(gz)
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return &Index{tbx: tbx}, nil
}

// Contigs lists the distinct sequence identifiers present in the
// indexed file's first column.
func (ix *Index) Contigs() []string {
	return ix.tbx.Names()
}

func (ix *Index) HasContig(name string) bool {
	for _, n := range ix.tbx.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Chunks returns the block chunks overlapping the 1-based inclusive
// interval [start, end] of a contig. end <= 0 means the whole contig.
// An unknown contig yields no chunks.
func (ix *Index) Chunks(name string, start, end int64) []bgzf.Chunk {
	if start < 1 {
		start = 1
	}
	if end <= 0 {
		end = maxContigEnd
	}
	chunks, err := ix.tbx.Chunks(name, int(start-1), int(end))
	if err != nil {
		return nil
	}
	return chunks
}
