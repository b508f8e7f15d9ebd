package gff

import (
	"context"
	"sort"

	"github.com/annothub/annothub-backend/internal/types"
)

// windowLineThreshold bounds the number of lines held in memory for the
// per-window interaction graph. Windows are only cut at sequence
// identifier boundaries, so parent links never cross a window.
const windowLineThreshold = 200000

// TranscriptFallback labels transcripts whose type is not in the known
// transcript vocabulary.
const TranscriptFallback = "transcript"

func newSet(vs ...string) map[string]bool {
	m := make(map[string]bool, len(vs))
	for _, v := range vs {
		m[v] = true
	}
	return m
}

var (
	geneLikeTypes = newSet("gene", "ncRNA_gene", "pseudogene")

	transcriptLikeTypes = newSet(
		"mRNA", "transcript",
		"lnc_RNA", "ncRNA", "miRNA", "rRNA", "snRNA", "snoRNA", "tRNA",
		"scRNA", "SRP_RNA", "RNase_P_RNA", "RNase_MRP_RNA", "pre_miRNA",
		"piRNA", "guide_RNA", "telomerase_RNA", "antisense_RNA", "Y_RNA",
		"tmRNA", "pseudogenic_transcript", "unconfirmed_transcript",
		"V_gene_segment", "D_gene_segment", "J_gene_segment", "C_gene_segment",
	)

	subFeatureTypes = newSet("exon", "CDS")

	regionLikeTypes = newSet(
		"region", "chromosome", "contig", "scaffold", "supercontig",
		"biological_region",
	)
)

// Statistics runs the windowed three-pass structural scan over a
// block-compressed sorted GFF file.
func Statistics(ctx context.Context, path string) (*types.FeatureStatistics, error) {
	br, err := OpenBlock(path)
	if err != nil {
		return nil, err
	}
	defer br.Close()

	acc := newAccumulator()
	var (
		win     []Line
		lastSeq string
	)
	err = br.Scan(ctx, func(s string) error {
		l, ok := ParseLine(s)
		if !ok {
			return nil
		}
		if lastSeq != "" && l.SeqID != lastSeq && len(win) >= windowLineThreshold {
			acc.flush(win)
			win = win[:0]
		}
		lastSeq = l.SeqID
		win = append(win, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	acc.flush(win)
	return acc.result(), nil
}

type runningStats struct {
	count int64
	min   int64
	max   int64
	sum   float64
}

func (r *runningStats) add(v int64) {
	if r.count == 0 || v < r.min {
		r.min = v
	}
	if r.count == 0 || v > r.max {
		r.max = v
	}
	r.count++
	r.sum += float64(v)
}

func (r *runningStats) addAll(vs []int64) {
	for _, v := range vs {
		r.add(v)
	}
}

func (r *runningStats) stats() types.LengthStats {
	if r.count == 0 {
		return types.LengthStats{}
	}
	return types.LengthStats{Min: r.min, Max: r.max, Mean: r.sum / float64(r.count)}
}

type categoryAgg struct {
	lengths  runningStats
	biotypes map[string]int64
	ttypes   map[string]int64
}

type transcriptAgg struct {
	lengths     runningStats
	biotypes    map[string]int64
	exonLengths runningStats
	exonConcat  runningStats
	cdsLengths  runningStats
	cdsConcat   runningStats
	genes       map[string]string // gene id -> category ("" when unresolved)
	multiExon   bool
	hasCDS      bool
}

type accumulator struct {
	cats   map[string]*categoryAgg
	ttypes map[string]*transcriptAgg
}

func newAccumulator() *accumulator {
	return &accumulator{
		cats:   map[string]*categoryAgg{},
		ttypes: map[string]*transcriptAgg{},
	}
}

func (a *accumulator) cat(name string) *categoryAgg {
	c := a.cats[name]
	if c == nil {
		c = &categoryAgg{biotypes: map[string]int64{}, ttypes: map[string]int64{}}
		a.cats[name] = c
	}
	return c
}

func (a *accumulator) ttype(name string) *transcriptAgg {
	t := a.ttypes[name]
	if t == nil {
		t = &transcriptAgg{biotypes: map[string]int64{}, genes: map[string]string{}}
		a.ttypes[name] = t
	}
	return t
}

type windowTranscript struct {
	ttype   string
	biotype string
	gene    string
	length  int64
	exons   []int64
	cds     []int64
}

type windowGene struct {
	gtype   string
	biotype string
	length  int64
}

// flush runs the three passes over one window and folds the results
// into the accumulator.
func (a *accumulator) flush(win []Line) {
	if len(win) == 0 {
		return
	}

	// Pass 1: sub-feature lengths keyed by every declared parent.
	parentSub := map[string]map[string][]int64{}
	for _, l := range win {
		if !subFeatureTypes[l.Type] {
			continue
		}
		length := l.Length()
		for _, p := range l.Parents() {
			m := parentSub[p]
			if m == nil {
				m = map[string][]int64{}
				parentSub[p] = m
			}
			m[l.Type] = append(m[l.Type], length)
		}
	}

	// Pass 2: transcripts are the non-region, non-gene, non-sub-feature
	// records whose ID occurred as a parent in pass 1.
	transcripts := map[string]*windowTranscript{}
	geneTx := map[string][]*windowTranscript{}
	for _, l := range win {
		if regionLikeTypes[l.Type] || geneLikeTypes[l.Type] || subFeatureTypes[l.Type] {
			continue
		}
		id := l.Attributes["ID"]
		if id == "" {
			continue
		}
		subs, ok := parentSub[id]
		if !ok {
			continue
		}
		tt := l.Type
		if !transcriptLikeTypes[tt] {
			tt = TranscriptFallback
		}
		gene := ""
		if parents := l.Parents(); len(parents) > 0 {
			gene = parents[0]
		} else {
			gene = l.Attr("gene_id", "gene", "geneID")
		}
		tx := &windowTranscript{
			ttype:   tt,
			biotype: l.Attr("biotype", "transcript_biotype"),
			gene:    gene,
			length:  l.Length(),
			exons:   subs["exon"],
			cds:     subs["CDS"],
		}
		transcripts[id] = tx
		if gene != "" {
			geneTx[gene] = append(geneTx[gene], tx)
		}
	}

	// Pass 3: explicit gene-like records, plus implicit genes whose ID
	// is the gene of a pass-2 transcript.
	genes := map[string]*windowGene{}
	for _, l := range win {
		id := l.Attributes["ID"]
		if geneLikeTypes[l.Type] {
			if id == "" {
				continue
			}
			genes[id] = &windowGene{gtype: l.Type, biotype: l.Attr("biotype", "gene_biotype"), length: l.Length()}
			continue
		}
		if regionLikeTypes[l.Type] || subFeatureTypes[l.Type] || transcriptLikeTypes[l.Type] {
			continue
		}
		if id == "" || transcripts[id] != nil {
			continue
		}
		if len(geneTx[id]) > 0 {
			genes[id] = &windowGene{gtype: l.Type, biotype: l.Attr("biotype", "gene_biotype"), length: l.Length()}
		}
	}

	// Categorize and fold.
	geneCat := map[string]string{}
	for gid, g := range genes {
		txs := geneTx[gid]
		var hasCDS, hasExon bool
		for _, tx := range txs {
			if len(tx.cds) > 0 {
				hasCDS = true
			}
			if len(tx.exons) > 0 {
				hasExon = true
			}
		}
		var cat string
		switch {
		case g.gtype == "pseudogene":
			cat = types.GeneCategoryPseudo
		case hasCDS || g.biotype == "protein_coding":
			cat = types.GeneCategoryCoding
		case hasExon:
			cat = types.GeneCategoryNonCoding
		default:
			continue
		}
		geneCat[gid] = cat
		ca := a.cat(cat)
		ca.lengths.add(g.length)
		bt := g.biotype
		if bt == "" {
			bt = types.BiotypeMissing
		}
		ca.biotypes[bt]++
		for _, tx := range txs {
			ca.ttypes[tx.ttype]++
		}
	}

	for _, tx := range transcripts {
		ta := a.ttype(tx.ttype)
		ta.lengths.add(tx.length)
		bt := tx.biotype
		if bt == "" {
			bt = types.BiotypeMissing
		}
		ta.biotypes[bt]++
		if len(tx.exons) > 0 {
			ta.exonLengths.addAll(tx.exons)
			ta.exonConcat.add(sum(tx.exons))
			if len(tx.exons) > 1 {
				ta.multiExon = true
			}
		}
		if len(tx.cds) > 0 {
			ta.cdsLengths.addAll(tx.cds)
			ta.cdsConcat.add(sum(tx.cds))
			ta.hasCDS = true
		}
		if tx.gene != "" {
			ta.genes[tx.gene] = geneCat[tx.gene]
		}
	}
}

func sum(vs []int64) int64 {
	var s int64
	for _, v := range vs {
		s += v
	}
	return s
}

// result emits categories in fixed order and transcript types sorted by
// total count descending (name ascending on ties).
func (a *accumulator) result() *types.FeatureStatistics {
	out := &types.FeatureStatistics{}
	for _, cat := range types.GeneCategories {
		ca := a.cats[cat]
		if ca == nil {
			ca = &categoryAgg{biotypes: map[string]int64{}, ttypes: map[string]int64{}}
		}
		out.GeneCategories = append(out.GeneCategories, types.GeneCategoryStats{
			Category:        cat,
			Total:           ca.lengths.count,
			Length:          ca.lengths.stats(),
			Biotypes:        ca.biotypes,
			TranscriptTypes: ca.ttypes,
		})
	}

	names := make([]string, 0, len(a.ttypes))
	for name := range a.ttypes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a1, a2 := a.ttypes[names[i]], a.ttypes[names[j]]
		if a1.lengths.count != a2.lengths.count {
			return a1.lengths.count > a2.lengths.count
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		ta := a.ttypes[name]
		byCat := map[string]int64{}
		for _, cat := range ta.genes {
			if cat != "" {
				byCat[cat]++
			}
		}
		ts := types.TranscriptTypeStats{
			Type:     name,
			Total:    ta.lengths.count,
			Length:   ta.lengths.stats(),
			Biotypes: ta.biotypes,
			Genes: types.TranscriptGeneStats{
				Total:      int64(len(ta.genes)),
				ByCategory: byCat,
			},
			ExonStats: types.SubFeatureStats{
				Total:        ta.exonLengths.count,
				Length:       ta.exonLengths.stats(),
				ConcatLength: ta.exonConcat.stats(),
			},
			HasMultipleExons: ta.multiExon,
			HasCDS:           ta.hasCDS,
		}
		if ta.hasCDS {
			ts.CDSStats = &types.SubFeatureStats{
				Total:        ta.cdsLengths.count,
				Length:       ta.cdsLengths.stats(),
				ConcatLength: ta.cdsConcat.stats(),
			}
		}
		out.TranscriptTypes = append(out.TranscriptTypes, ts)
	}
	return out
}
