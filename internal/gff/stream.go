package gff

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bgzf"
)

// BlockReader reads the uncompressed content of a block-compressed
// annotation file.
type BlockReader struct {
	f   *os.File
	bgz *bgzf.Reader
}

func OpenBlock(path string) (*BlockReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bgzip file: %w", err)
	}
	bgz, err := bgzf.NewReader(f, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bgzip reader: %w", err)
	}
	return &BlockReader{f: f, bgz: bgz}, nil
}

func (b *BlockReader) Close() error {
	err := b.bgz.Close()
	if cerr := b.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Scan feeds every line of the file to fn, checking for cancellation
// between lines.
func (b *BlockReader) Scan(ctx context.Context, fn func(line string) error) error {
	sc := newLineScanner(bufio.NewReader(b.bgz))
	var n int
	for sc.Scan() {
		if n++; n%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := fn(sc.Text()); err != nil {
			return err
		}
	}
	return sc.Err()
}

// LineFilter is the post-filter applied to streamed data lines. A nil
// or empty set accepts every value.
type LineFilter struct {
	Types    map[string]struct{}
	Sources  map[string]struct{}
	Biotypes map[string]struct{}
}

func (f LineFilter) Empty() bool {
	return len(f.Types) == 0 && len(f.Sources) == 0 && len(f.Biotypes) == 0
}

func (f LineFilter) Match(l Line) bool {
	if len(f.Types) > 0 {
		if _, ok := f.Types[l.Type]; !ok {
			return false
		}
	}
	if len(f.Sources) > 0 {
		if _, ok := f.Sources[l.Source]; !ok {
			return false
		}
	}
	if len(f.Biotypes) > 0 {
		if _, ok := f.Biotypes[l.Biotype()]; !ok {
			return false
		}
	}
	return true
}

// StreamRegion writes the data lines of one contig interval that pass
// the filter to w, in block-index order. The index narrows the read to
// the first overlapping block; the coordinate sort bounds the tail.
// Lines are forwarded as they are read; cancellation (client
// disconnect) stops the iteration.
func StreamRegion(ctx context.Context, path string, ix *Index, contig string, start, end int64, filter LineFilter, w io.Writer) error {
	chunks := ix.Chunks(contig, start, end)
	if len(chunks) == 0 {
		return nil
	}
	br, err := OpenBlock(path)
	if err != nil {
		return err
	}
	defer br.Close()

	if err := br.bgz.Seek(chunks[0].Begin); err != nil {
		return fmt.Errorf("seek to chunk: %w", err)
	}

	sc := newLineScanner(bufio.NewReader(br.bgz))
	var n int
	for sc.Scan() {
		if n++; n%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		l, ok := ParseLine(sc.Text())
		if !ok {
			continue
		}
		if l.SeqID != contig {
			if l.SeqID > contig {
				break
			}
			continue
		}
		if l.End < start {
			continue
		}
		if end > 0 && l.Start > end {
			break
		}
		if !filter.Match(l) {
			continue
		}
		if err := writeLine(w, l.Raw); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// StreamFiltered writes every data line of the whole file that passes
// the filter to w. Used when the caller filters without a region.
func StreamFiltered(ctx context.Context, path string, filter LineFilter, w io.Writer) error {
	br, err := OpenBlock(path)
	if err != nil {
		return err
	}
	defer br.Close()
	return br.Scan(ctx, func(s string) error {
		l, ok := ParseLine(s)
		if !ok {
			return nil
		}
		if !filter.Match(l) {
			return nil
		}
		return writeLine(w, l.Raw)
	})
}

// Copy streams the raw compressed artifact to w.
func Copy(path string, w io.Writer) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(w, f)
}
