package ingest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/annothub/annothub-backend/internal/clients"
)

// BuildAliases precomputes the lookup key set for one assembled
// molecule: every canonical identifier, whitespace normalized, plus the
// chr-style variants of chromosome-like names and version-stripped
// accessions.
func BuildAliases(seq clients.ReportSequence) []string {
	set := make(map[string]bool)
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		set[v] = true
		if strings.ContainsAny(v, " \t") {
			set[strings.Join(strings.Fields(v), "_")] = true
		}
	}

	add(seq.SequenceName)
	add(seq.AssignedMolecule)
	add(seq.UCSCStyleName)
	add(seq.GenBankAccession)
	add(seq.RefSeqAccession)

	for _, v := range []string{seq.SequenceName, seq.AssignedMolecule, seq.UCSCStyleName} {
		for _, a := range chromosomeVariants(v) {
			set[a] = true
		}
	}
	for _, v := range []string{seq.GenBankAccession, seq.RefSeqAccession} {
		if base := stripVersion(v); base != "" {
			set[base] = true
		}
	}

	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// chromosomeVariants extracts the trailing digits of a chromosome-like
// name and emits unpadded and zero-padded forms with chr / chr_
// prefixes.
func chromosomeVariants(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	digits := name[i:]
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	unpadded := strconv.Itoa(n)
	padded := fmt.Sprintf("%02d", n)
	variants := []string{
		unpadded, padded,
		"chr" + unpadded, "chr" + padded,
		"chr_" + unpadded, "chr_" + padded,
	}
	return variants
}

// stripVersion drops the trailing ".N" of a versioned accession.
func stripVersion(acc string) string {
	acc = strings.TrimSpace(acc)
	i := strings.LastIndexByte(acc, '.')
	if i <= 0 {
		return ""
	}
	if _, err := strconv.Atoi(acc[i+1:]); err != nil {
		return ""
	}
	return acc[:i]
}
