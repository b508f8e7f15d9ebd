package gff

import (
	"bufio"
	"container/heap"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// chunkLines bounds how many data lines are sorted in memory before a
// run is spilled to disk.
const chunkLines = 500000

const (
	scanBufInitial = 64 * 1024
	scanBufMax     = 16 * 1024 * 1024
)

func newLineScanner(r *bufio.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, scanBufInitial), scanBufMax)
	return sc
}

type sortKey struct {
	seq   string
	start int64
}

func keyOf(line string) sortKey {
	cols := strings.SplitN(line, "\t", 5)
	k := sortKey{}
	if len(cols) > 0 {
		k.seq = cols[0]
	}
	if len(cols) > 3 {
		if v, err := strconv.ParseInt(cols[3], 10, 64); err == nil {
			k.start = v
		}
	}
	return k
}

func keyLess(a, b sortKey) bool {
	if a.seq != b.seq {
		return a.seq < b.seq
	}
	return a.start < b.start
}

// Sort writes a coordinate-sorted copy of a GFF file to dstPath: header
// lines first in input order, then data lines stable-sorted by column 1
// (lexicographic) and column 4 (integer ascending). Sorting streams
// through spill runs under tmpDir so the input never has to fit in
// memory. The returned count is the number of data lines written.
func Sort(ctx context.Context, srcPath, dstPath, tmpDir string) (int64, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("open source gff: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return 0, fmt.Errorf("create sorted gff: %w", err)
	}
	defer dst.Close()
	out := bufio.NewWriterSize(dst, 1<<20)

	var (
		runs  []string
		chunk []string
		total int64
	)
	defer func() {
		for _, r := range runs {
			os.Remove(r)
		}
	}()

	spill := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		keys := make([]sortKey, len(chunk))
		for i, line := range chunk {
			keys[i] = keyOf(line)
		}
		idx := make([]int, len(chunk))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return keyLess(keys[idx[a]], keys[idx[b]])
		})
		run, err := os.CreateTemp(tmpDir, "gffsort-run-*")
		if err != nil {
			return fmt.Errorf("create sort run: %w", err)
		}
		w := bufio.NewWriterSize(run, 1<<20)
		for _, i := range idx {
			if _, err := w.WriteString(chunk[i]); err != nil {
				run.Close()
				return err
			}
			if err := w.WriteByte('\n'); err != nil {
				run.Close()
				return err
			}
		}
		if err := w.Flush(); err != nil {
			run.Close()
			return err
		}
		if err := run.Close(); err != nil {
			return err
		}
		runs = append(runs, run.Name())
		chunk = chunk[:0]
		return nil
	}

	sc := newLineScanner(bufio.NewReaderSize(src, 1<<20))
	for sc.Scan() {
		line := sc.Text()
		if IsHeader(line) {
			// Headers keep their original order ahead of all data.
			if _, err := out.WriteString(line); err != nil {
				return 0, err
			}
			if err := out.WriteByte('\n'); err != nil {
				return 0, err
			}
			continue
		}
		chunk = append(chunk, line)
		total++
		if len(chunk) >= chunkLines {
			if err := spill(); err != nil {
				return 0, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read source gff: %w", err)
	}
	if err := spill(); err != nil {
		return 0, err
	}

	if err := mergeRuns(ctx, runs, out); err != nil {
		return 0, err
	}
	if err := out.Flush(); err != nil {
		return 0, err
	}
	return total, nil
}

type runHead struct {
	key  sortKey
	line string
	run  int
}

type runHeap struct {
	heads []runHead
}

func (h *runHeap) Len() int { return len(h.heads) }
func (h *runHeap) Less(i, j int) bool {
	a, b := h.heads[i], h.heads[j]
	if a.key.seq != b.key.seq {
		return a.key.seq < b.key.seq
	}
	if a.key.start != b.key.start {
		return a.key.start < b.key.start
	}
	// Runs were spilled in input order; preferring the earlier run on
	// ties keeps the merge stable.
	return a.run < b.run
}
func (h *runHeap) Swap(i, j int) { h.heads[i], h.heads[j] = h.heads[j], h.heads[i] }
func (h *runHeap) Push(x any)    { h.heads = append(h.heads, x.(runHead)) }
func (h *runHeap) Pop() any {
	last := h.heads[len(h.heads)-1]
	h.heads = h.heads[:len(h.heads)-1]
	return last
}

func mergeRuns(ctx context.Context, runs []string, out *bufio.Writer) error {
	scanners := make([]*bufio.Scanner, len(runs))
	files := make([]*os.File, len(runs))
	defer func() {
		for _, f := range files {
			if f != nil {
				f.Close()
			}
		}
	}()
	h := &runHeap{}
	for i, name := range runs {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("open sort run %s: %w", filepath.Base(name), err)
		}
		files[i] = f
		scanners[i] = newLineScanner(bufio.NewReaderSize(f, 1<<20))
		if scanners[i].Scan() {
			line := scanners[i].Text()
			h.heads = append(h.heads, runHead{key: keyOf(line), line: line, run: i})
		} else if err := scanners[i].Err(); err != nil {
			return err
		}
	}
	heap.Init(h)

	var n int
	for h.Len() > 0 {
		if n++; n%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		head := h.heads[0]
		if _, err := out.WriteString(head.line); err != nil {
			return err
		}
		if err := out.WriteByte('\n'); err != nil {
			return err
		}
		sc := scanners[head.run]
		if sc.Scan() {
			line := sc.Text()
			h.heads[0] = runHead{key: keyOf(line), line: line, run: head.run}
			heap.Fix(h, 0)
		} else {
			if err := sc.Err(); err != nil {
				return err
			}
			heap.Pop(h)
		}
	}
	return nil
}
