package clients

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/types"
)

const (
	defaultAssemblyBaseURL = "https://api.ncbi.nlm.nih.gov/datasets/v2alpha"
	defaultReportBaseURL   = "https://ftp.ncbi.nlm.nih.gov/genomes/all"
)

// ReportSequence is one assembled-molecule row of an assembly report.
type ReportSequence struct {
	SequenceName     string
	AssignedMolecule string
	GenBankAccession string
	RefSeqAccession  string
	UCSCStyleName    string
	Length           int64
}

// AssemblyClient fetches assembly summaries from the assembly catalog
// and per-assembly sequence reports from the file mirror.
type AssemblyClient struct {
	baseURL       string
	reportBaseURL string
	client        *http.Client
	log           *logger.Logger
}

func NewAssemblyClient(baseURL, reportBaseURL string, timeout time.Duration, log *logger.Logger) *AssemblyClient {
	if baseURL == "" {
		baseURL = defaultAssemblyBaseURL
	}
	if reportBaseURL == "" {
		reportBaseURL = defaultReportBaseURL
	}
	return &AssemblyClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		reportBaseURL: strings.TrimRight(reportBaseURL, "/"),
		client:        newHTTPClient(timeout),
		log:           log.With("client", "AssemblyClient"),
	}
}

type assemblyDatasetReport struct {
	Reports []struct {
		Accession        string `json:"accession"`
		PairedAccession  string `json:"paired_accession"`
		SourceDatabase   string `json:"source_database"`
		AssemblyInfo     struct {
			AssemblyName string `json:"assembly_name"`
			Submitter    string `json:"submitter"`
			ReleaseDate  string `json:"release_date"`
		} `json:"assembly_info"`
		AssemblyStats struct {
			TotalSequenceLength string  `json:"total_sequence_length"`
			TotalUngappedLength string  `json:"total_ungapped_length"`
			NumberOfChromosomes int64   `json:"total_number_of_chromosomes"`
			NumberOfScaffolds   int64   `json:"number_of_scaffolds"`
			NumberOfContigs     int64   `json:"number_of_contigs"`
			ScaffoldN50         int64   `json:"scaffold_n50"`
			ScaffoldL50         int64   `json:"scaffold_l50"`
			ContigN50           int64   `json:"contig_n50"`
			ContigL50           int64   `json:"contig_l50"`
			GCCount             string  `json:"gc_count"`
			GCPercent           float64 `json:"gc_percent"`
			GenomeCoverage      string  `json:"genome_coverage"`
		} `json:"assembly_stats"`
		Organism struct {
			TaxID        int64  `json:"tax_id"`
			OrganismName string `json:"organism_name"`
		} `json:"organism"`
		OrganelleInfo []struct {
			Description string `json:"description"`
		} `json:"organelle_info"`
	} `json:"reports"`
}

// FetchSummaries fetches the bulk dataset report for the accessions and
// maps it into GenomeAssembly records. Lineage fields are left for the
// caller to fill from the taxonomy map.
func (c *AssemblyClient) FetchSummaries(ctx context.Context, accessions []string) ([]*types.GenomeAssembly, error) {
	if len(accessions) == 0 {
		return nil, nil
	}
	url := fmt.Sprintf("%s/genome/accession/%s/dataset_report?page_size=%d",
		c.baseURL, strings.Join(accessions, ","), len(accessions))
	var report assemblyDatasetReport
	if err := getJSON(ctx, c.client, url, &report); err != nil {
		return nil, err
	}

	out := make([]*types.GenomeAssembly, 0, len(report.Reports))
	for _, r := range report.Reports {
		stats := types.AssemblyStats{
			TotalSequenceLength: parseInt(r.AssemblyStats.TotalSequenceLength),
			TotalUngappedLength: parseInt(r.AssemblyStats.TotalUngappedLength),
			NumberOfChromosomes: r.AssemblyStats.NumberOfChromosomes,
			NumberOfScaffolds:   r.AssemblyStats.NumberOfScaffolds,
			NumberOfContigs:     r.AssemblyStats.NumberOfContigs,
			ScaffoldN50:         r.AssemblyStats.ScaffoldN50,
			ScaffoldL50:         r.AssemblyStats.ScaffoldL50,
			ContigN50:           r.AssemblyStats.ContigN50,
			ContigL50:           r.AssemblyStats.ContigL50,
			GCCount:             parseInt(r.AssemblyStats.GCCount),
			GCPercent:           r.AssemblyStats.GCPercent,
			GenomeCoverage:      parseFloat(r.AssemblyStats.GenomeCoverage),
			NumberOfOrganelles:  int64(len(r.OrganelleInfo)),
		}
		out = append(out, &types.GenomeAssembly{
			AssemblyAccession: r.Accession,
			PairedAccession:   r.PairedAccession,
			AssemblyName:      r.AssemblyInfo.AssemblyName,
			Submitter:         r.AssemblyInfo.Submitter,
			ReleaseDate:       r.AssemblyInfo.ReleaseDate,
			SourceDatabase:    r.SourceDatabase,
			Stats:             datatypes.NewJSONType(stats),
			Taxid:             r.Organism.TaxID,
			OrganismName:      r.Organism.OrganismName,
			DownloadURL:       c.ReportURL(r.Accession, r.AssemblyInfo.AssemblyName),
		})
	}
	return out, nil
}

// ReportURL builds the mirror path for an assembly report:
// all/GCA/000/001/405/GCA_000001405.15_GRCh38/..._assembly_report.txt.
func (c *AssemblyClient) ReportURL(accession, assemblyName string) string {
	dir := accession + "_" + strings.ReplaceAll(assemblyName, " ", "_")
	prefix, digits, ok := strings.Cut(accession, "_")
	if !ok {
		return fmt.Sprintf("%s/%s/%s_assembly_report.txt", c.reportBaseURL, dir, dir)
	}
	if i := strings.IndexByte(digits, '.'); i >= 0 {
		digits = digits[:i]
	}
	var parts []string
	for len(digits) >= 3 {
		parts = append(parts, digits[:3])
		digits = digits[3:]
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s_assembly_report.txt",
		c.reportBaseURL, prefix, strings.Join(parts, "/"), dir, dir)
}

// FetchReport streams an assembly report and keeps only the rows whose
// role is assembled-molecule. Report columns: name, role, assigned
// molecule, location/type, genbank accn, relationship, refseq accn,
// unit, length, ucsc name.
func (c *AssemblyClient) FetchReport(ctx context.Context, reportURL string) ([]ReportSequence, error) {
	resp, err := get(ctx, c.client, reportURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rows []ReportSequence
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 10 || cols[1] != "assembled-molecule" {
			continue
		}
		rows = append(rows, ReportSequence{
			SequenceName:     cols[0],
			AssignedMolecule: cols[2],
			GenBankAccession: cleanAccession(cols[4]),
			RefSeqAccession:  cleanAccession(cols[6]),
			UCSCStyleName:    cleanAccession(cols[9]),
			Length:           parseInt(cols[8]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read assembly report %s: %w", reportURL, err)
	}
	return rows, nil
}

// cleanAccession drops the "na" placeholder the reports use for absent
// identifiers.
func cleanAccession(v string) string {
	v = strings.TrimSpace(v)
	if v == "na" {
		return ""
	}
	return v
}

func parseInt(v string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(v string) float64 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "x")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
