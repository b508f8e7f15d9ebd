// Package ingest implements the annotation ingestion pipeline: catalog
// discovery, admission, taxonomy and assembly enrichment, GFF
// processing, alias mapping, derived-count maintenance, and the
// orchestrator that drives them.
package ingest

import (
	"bufio"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/annothub/annothub-backend/internal/pkg/httpx"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
)

// Candidate is one normalized catalog row: a remote annotation release
// the pipeline may ingest.
type Candidate struct {
	SourceDatabase     string
	AnnotationProvider string
	ReleaseDate        string
	LastModifiedDate   string
	SourceMD5          string
	SourceURL          string
	Taxid              int64
	OrganismName       string
	PipelineName       string
	PipelineVersion    string
	PipelineMethod     string
	AssemblyAccession  string
	AssemblyName       string
}

// catalogColumns maps the header names the catalogs use to Candidate
// fields. Unknown columns are ignored.
var catalogColumns = map[string]func(*Candidate, string){
	"source_database":     func(c *Candidate, v string) { c.SourceDatabase = v },
	"annotation_provider": func(c *Candidate, v string) { c.AnnotationProvider = v },
	"release_date":        func(c *Candidate, v string) { c.ReleaseDate = v },
	"last_modified_date":  func(c *Candidate, v string) { c.LastModifiedDate = v },
	"md5_checksum":        func(c *Candidate, v string) { c.SourceMD5 = v },
	"access_url":          func(c *Candidate, v string) { c.SourceURL = v },
	"taxon_id":            func(c *Candidate, v string) { c.Taxid, _ = strconv.ParseInt(v, 10, 64) },
	"organism_name":       func(c *Candidate, v string) { c.OrganismName = v },
	"pipeline_name":       func(c *Candidate, v string) { c.PipelineName = v },
	"pipeline_version":    func(c *Candidate, v string) { c.PipelineVersion = v },
	"pipeline_method":     func(c *Candidate, v string) { c.PipelineMethod = v },
	"assembly_accession":  func(c *Candidate, v string) { c.AssemblyAccession = v },
	"assembly_name":       func(c *Candidate, v string) { c.AssemblyName = v },
}

// CatalogFetcher streams candidate rows from an ordered list of remote
// TSV catalogs. A failing catalog URL is logged and skipped; it never
// fails the whole run.
type CatalogFetcher struct {
	urls   []string
	client *http.Client
	log    *logger.Logger
}

func NewCatalogFetcher(urls []string, timeout time.Duration, log *logger.Logger) *CatalogFetcher {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &CatalogFetcher{
		urls:   urls,
		client: &http.Client{Timeout: timeout},
		log:    log.With("component", "CatalogFetcher"),
	}
}

// Fetch calls yield for every row of every catalog as rows arrive; the
// streams are never materialized. A false return from yield stops the
// whole fetch.
func (f *CatalogFetcher) Fetch(ctx context.Context, yield func(Candidate) bool) error {
	for _, url := range f.urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		stop, err := f.fetchOne(ctx, url, yield)
		if err != nil {
			f.log.Warn("catalog fetch failed, skipping", "url", url, "error", err)
			continue
		}
		if stop {
			return nil
		}
	}
	return nil
}

func (f *CatalogFetcher) fetchOne(ctx context.Context, url string, yield func(Candidate) bool) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, &httpx.StatusError{URL: url, Status: resp.StatusCode}
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var setters []func(*Candidate, string)
	rows := 0
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if setters == nil {
			setters = make([]func(*Candidate, string), len(cols))
			for i, name := range cols {
				setters[i] = catalogColumns[strings.ToLower(strings.TrimSpace(name))]
			}
			continue
		}
		var c Candidate
		for i, v := range cols {
			if i < len(setters) && setters[i] != nil {
				setters[i](&c, strings.TrimSpace(v))
			}
		}
		if c.SourceURL == "" || c.SourceMD5 == "" {
			continue
		}
		rows++
		if !yield(c) {
			return true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return false, err
	}
	f.log.Info("catalog fetched", "url", url, "rows", rows)
	return false, nil
}
