package gff

import (
	"bufio"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/tabix"
)

// FileMD5 returns the hex MD5 of a file's content. Run over the sorted
// uncompressed GFF it yields the annotation id.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// interval adapts a GFF row to the tabix record interface. Start is
// 0-based half-open as the index expects.
type interval struct {
	name       string
	start, end int
}

func (r interval) RefName() string { return r.name }
func (r interval) Start() int      { return r.start }
func (r interval) End() int        { return r.end }

func newTabix() *tabix.Index {
	idx := tabix.New()
	idx.Format = 0
	idx.NameColumn = 1
	idx.BeginColumn = 4
	idx.EndColumn = 5
	idx.MetaChar = '#'
	idx.Skip = 0
	return idx
}

// CompressAndIndex block-compresses a sorted GFF file into bgzPath and
// writes the companion coordinate index to csiPath, recording one chunk
// per data line while compressing. It returns the size of the
// compressed artifact.
func CompressAndIndex(ctx context.Context, sortedPath, bgzPath, csiPath string) (int64, error) {
	src, err := os.Open(sortedPath)
	if err != nil {
		return 0, fmt.Errorf("open sorted gff: %w", err)
	}
	defer src.Close()

	out, err := os.Create(bgzPath)
	if err != nil {
		return 0, fmt.Errorf("create bgzip file: %w", err)
	}
	bw := bgzf.NewWriter(out, 1)
	idx := newTabix()

	sc := newLineScanner(bufio.NewReaderSize(src, 1<<20))
	var n int
	for sc.Scan() {
		if n++; n%10000 == 0 {
			if err := ctx.Err(); err != nil {
				bw.Close()
				out.Close()
				return 0, err
			}
		}
		line := sc.Text()
		if IsHeader(line) {
			if err := writeLine(bw, line); err != nil {
				out.Close()
				return 0, err
			}
			continue
		}
		rec, ok := ParseLine(line)
		begin, err := bw.Next()
		if err != nil {
			bw.Close()
			out.Close()
			return 0, err
		}
		if err := writeLine(bw, line); err != nil {
			out.Close()
			return 0, err
		}
		end, err := bw.Next()
		if err != nil {
			bw.Close()
			out.Close()
			return 0, err
		}
		if !ok {
			continue
		}
		chunk := bgzf.Chunk{Begin: bgzf.Offset{Block: uint16(begin)}, End: bgzf.Offset{Block: uint16(end)}}
		if err := idx.Add(interval{name: rec.SeqID, start: int(rec.Start - 1), end: int(rec.End)}, chunk, true, true); err != nil {
			bw.Close()
			out.Close()
			return 0, fmt.Errorf("index %s:%d-%d: %w", rec.SeqID, rec.Start, rec.End, err)
		}
		// tabix.Index.Add registers a new reference id for every record
		// whose name is absent from the id map, but never inserts the
		// name into that map, so repeated contigs would each get a fresh
		// id. Recording the assigned id here keeps lookups deduplicated.
		if _, ok := idx.IDs()[rec.SeqID]; !ok {
			idx.IDs()[rec.SeqID] = len(idx.IDs())
		}
	}
	if err := sc.Err(); err != nil {
		bw.Close()
		out.Close()
		return 0, fmt.Errorf("read sorted gff: %w", err)
	}
	if err := bw.Close(); err != nil {
		out.Close()
		return 0, fmt.Errorf("close bgzip writer: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	if err := writeIndex(idx, csiPath); err != nil {
		return 0, err
	}

	info, err := os.Stat(bgzPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func writeLine(w io.Writer, line string) error {
	if _, err := io.WriteString(w, line); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// writeIndex persists the index block-compressed, as the standard
// expects index payloads to be.
func writeIndex(idx *tabix.Index, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	zw := bgzf.NewWriter(f, 1)
	if err := tabix.WriteTo(zw, idx); err != nil {
		zw.Close()
		f.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
