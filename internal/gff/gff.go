// Package gff handles the tab-separated genome annotation format: line
// parsing, coordinate sorting, block compression with a companion
// coordinate index, and the structural feature scans run by the
// ingestion pipeline.
package gff

import (
	"strconv"
	"strings"
)

// Line is one data row of a GFF file. Start and End are 1-based
// inclusive genomic coordinates.
type Line struct {
	SeqID      string
	Source     string
	Type       string
	Start      int64
	End        int64
	Score      string
	Strand     string
	Phase      string
	Attributes map[string]string
	Raw        string
}

func IsHeader(s string) bool { return strings.HasPrefix(s, "#") }

// ParseLine splits a data line on tabs. ok is false for header lines,
// rows with fewer than nine columns and rows with non-numeric
// coordinates; callers skip those.
func ParseLine(s string) (Line, bool) {
	if IsHeader(s) {
		return Line{}, false
	}
	cols := strings.Split(s, "\t")
	if len(cols) < 9 {
		return Line{}, false
	}
	start, err := strconv.ParseInt(cols[3], 10, 64)
	if err != nil {
		return Line{}, false
	}
	end, err := strconv.ParseInt(cols[4], 10, 64)
	if err != nil {
		return Line{}, false
	}
	return Line{
		SeqID:      cols[0],
		Source:     cols[1],
		Type:       cols[2],
		Start:      start,
		End:        end,
		Score:      cols[5],
		Strand:     cols[6],
		Phase:      cols[7],
		Attributes: ParseAttributes(cols[8]),
		Raw:        s,
	}, true
}

// ParseAttributes splits the ninth column on ';' and each part on '='.
// Parts without '=' are dropped.
func ParseAttributes(col string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range strings.Split(col, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		attrs[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return attrs
}

// Length is the inclusive span of the feature.
func (l Line) Length() int64 { return l.End - l.Start + 1 }

// Attr returns the first non-empty attribute among keys.
func (l Line) Attr(keys ...string) string {
	for _, k := range keys {
		if v := l.Attributes[k]; v != "" {
			return v
		}
	}
	return ""
}

// Parents returns the comma-separated Parent identifiers, nil when the
// feature is a root.
func (l Line) Parents() []string {
	p := l.Attributes["Parent"]
	if p == "" {
		return nil
	}
	parts := strings.Split(p, ",")
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Biotype returns the feature biotype; the bare `biotype` key takes
// precedence over the qualified variants.
func (l Line) Biotype() string {
	return l.Attr("biotype", "gene_biotype", "transcript_biotype")
}
