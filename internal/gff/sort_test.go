package gff

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSort(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		"##gff-version 3",
		"#!genome-build GRCh38",
		"2\tsrc\tgene\t50\t60\t.\t+\t.\tID=g3",
		"1\tsrc\tgene\t300\t400\t.\t+\t.\tID=g2",
		"1\tsrc\tgene\t100\t200\t.\t+\t.\tID=g1",
		"1\tsrc\tmRNA\t100\t200\t.\t+\t.\tID=t1;Parent=g1",
		"10\tsrc\tgene\t5\t10\t.\t+\t.\tID=g4",
	}, "\n") + "\n"

	dir := t.TempDir()
	src := writeFile(t, dir, "in.gff", in)
	dst := filepath.Join(dir, "out.gff")

	n, err := Sort(context.Background(), src, dst, dir)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if n != 5 {
		t.Errorf("data lines = %d, want 5", n)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"##gff-version 3",
		"#!genome-build GRCh38",
		// "10" sorts before "2" lexicographically
		"1\tsrc\tgene\t100\t200\t.\t+\t.\tID=g1",
		"1\tsrc\tmRNA\t100\t200\t.\t+\t.\tID=t1;Parent=g1",
		"1\tsrc\tgene\t300\t400\t.\t+\t.\tID=g2",
		"10\tsrc\tgene\t5\t10\t.\t+\t.\tID=g4",
		"2\tsrc\tgene\t50\t60\t.\t+\t.\tID=g3",
	}, "\n") + "\n"
	if string(data) != want {
		t.Errorf("sorted output:\n%s\nwant:\n%s", data, want)
	}
}

func TestSortStability(t *testing.T) {
	t.Parallel()

	// two records with the same (seqid, start) keep input order
	in := strings.Join([]string{
		"1\tsrc\tgene\t100\t200\t.\t+\t.\tID=first",
		"1\tsrc\tmRNA\t100\t150\t.\t+\t.\tID=second",
	}, "\n") + "\n"

	dir := t.TempDir()
	src := writeFile(t, dir, "in.gff", in)
	dst := filepath.Join(dir, "out.gff")

	if _, err := Sort(context.Background(), src, dst, dir); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	data, _ := os.ReadFile(dst)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if !strings.Contains(lines[0], "ID=first") || !strings.Contains(lines[1], "ID=second") {
		t.Errorf("tie order changed:\n%s", data)
	}
}

func TestSortEmptyInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "in.gff", "")
	dst := filepath.Join(dir, "out.gff")

	n, err := Sort(context.Background(), src, dst, dir)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if n != 0 {
		t.Errorf("data lines = %d, want 0", n)
	}
}

func TestFileMD5Deterministic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.gff", "1\tsrc\tgene\t1\t2\t.\t+\t.\tID=g\n")
	b := writeFile(t, dir, "b.gff", "1\tsrc\tgene\t1\t2\t.\t+\t.\tID=g\n")
	c := writeFile(t, dir, "c.gff", "1\tsrc\tgene\t1\t3\t.\t+\t.\tID=g\n")

	m1, err := FileMD5(a)
	if err != nil {
		t.Fatal(err)
	}
	m2, _ := FileMD5(b)
	m3, _ := FileMD5(c)
	if m1 != m2 {
		t.Errorf("identical content, different md5: %s vs %s", m1, m2)
	}
	if m1 == m3 {
		t.Errorf("different content, same md5: %s", m1)
	}
	if len(m1) != 32 {
		t.Errorf("md5 hex length = %d, want 32", len(m1))
	}
}
