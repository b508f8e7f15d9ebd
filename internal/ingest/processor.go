package ingest

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/annothub/annothub-backend/internal/gff"
	"github.com/annothub/annothub-backend/internal/pkg/httpx"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/repos"
)

// ErrContentUnchanged marks a candidate whose sorted content hashes to
// an annotation id that is already published. The candidate is skipped
// without an error record.
var ErrContentUnchanged = errors.New("sorted content already published")

const downloadChunkSize = 8 * 1024

// ProcessedFile is the durable output of processing one candidate.
type ProcessedFile struct {
	AnnotationID string
	BgzippedPath string // relative to the annotations root
	CSIPath      string // relative to the annotations root
	FileSize     int64
	ProcessedAt  time.Time
}

// Processor turns one admitted candidate into a sorted, fingerprinted,
// block-compressed, indexed artifact pair under the annotations root.
type Processor struct {
	root        string
	tmpRoot     string
	client      *http.Client
	annotations repos.AnnotationRepo
	log         *logger.Logger
}

func NewProcessor(root, tmpRoot string, timeout time.Duration, annotations repos.AnnotationRepo, log *logger.Logger) *Processor {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	if tmpRoot == "" {
		tmpRoot = os.TempDir()
	}
	return &Processor{
		root:        root,
		tmpRoot:     tmpRoot,
		client:      &http.Client{Timeout: timeout},
		annotations: annotations,
		log:         log.With("component", "Processor"),
	}
}

// Process runs download, sort, fingerprint, compress, index for one
// candidate. On any failure the temp dir and any partial artifacts are
// removed and the error is returned for the caller to persist.
func (p *Processor) Process(ctx context.Context, c Candidate) (*ProcessedFile, error) {
	tmpDir := filepath.Join(p.tmpRoot, c.SourceMD5)
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	rawPath := filepath.Join(tmpDir, "raw.gff")
	if err := p.download(ctx, c, rawPath); err != nil {
		return nil, err
	}

	sortedPath := filepath.Join(tmpDir, "sorted.gff")
	dataLines, err := gff.Sort(ctx, rawPath, sortedPath, tmpDir)
	if err != nil {
		return nil, fmt.Errorf("sort: %w", err)
	}
	if dataLines == 0 {
		return nil, fmt.Errorf("sorted file has no data lines for %s", c.SourceURL)
	}

	annotationID, err := gff.FileMD5(sortedPath)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}
	exists, err := p.annotations.Exists(ctx, nil, annotationID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrContentUnchanged, annotationID)
	}

	relDir := filepath.Join(strconv.FormatInt(c.Taxid, 10), c.AssemblyAccession)
	name := c.SourceDatabase + "_" + annotationID + ".gff.gz"
	relBgz := filepath.Join(relDir, name)
	relCSI := relBgz + ".csi"
	absBgz := filepath.Join(p.root, relBgz)
	absCSI := filepath.Join(p.root, relCSI)

	if err := os.MkdirAll(filepath.Join(p.root, relDir), 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	size, err := gff.CompressAndIndex(ctx, sortedPath, absBgz, absCSI)
	if err != nil {
		p.RemoveArtifacts(relBgz, relCSI)
		return nil, fmt.Errorf("compress and index: %w", err)
	}

	return &ProcessedFile{
		AnnotationID: annotationID,
		BgzippedPath: relBgz,
		CSIPath:      relCSI,
		FileSize:     size,
		ProcessedAt:  time.Now().UTC(),
	}, nil
}

// download streams the remote GFF to disk in 8 KiB chunks, aborting
// when the server's Last-Modified calendar date disagrees with the
// catalog row.
func (p *Processor) download(ctx context.Context, c Candidate, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SourceURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", c.SourceURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &httpx.StatusError{URL: c.SourceURL, Status: resp.StatusCode}
	}

	if c.LastModifiedDate != "" {
		if lm := resp.Header.Get("Last-Modified"); lm != "" {
			t, err := http.ParseTime(lm)
			if err == nil && t.Format("2006-01-02") != c.LastModifiedDate {
				return fmt.Errorf("catalog drift for %s: remote last-modified %s, catalog %s",
					c.SourceURL, t.Format("2006-01-02"), c.LastModifiedDate)
			}
		}
	}

	var src io.Reader = resp.Body
	if strings.HasSuffix(c.SourceURL, ".gz") || resp.Header.Get("Content-Type") == "application/gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("open gzip stream %s: %w", c.SourceURL, err)
		}
		defer gz.Close()
		src = gz
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	buf := make([]byte, downloadChunkSize)
	if _, err := io.CopyBuffer(out, src, buf); err != nil {
		return fmt.Errorf("stream %s: %w", c.SourceURL, err)
	}
	return out.Sync()
}

// RemoveArtifacts deletes the given root-relative files and prunes any
// parent directories left empty, up to the annotations root.
func (p *Processor) RemoveArtifacts(relPaths ...string) {
	for _, rel := range relPaths {
		if rel == "" {
			continue
		}
		abs := filepath.Join(p.root, rel)
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			p.log.Warn("artifact removal failed", "path", abs, "error", err)
		}
		dir := filepath.Dir(abs)
		for dir != p.root && strings.HasPrefix(dir, p.root) {
			if err := os.Remove(dir); err != nil {
				break // not empty or gone
			}
			dir = filepath.Dir(dir)
		}
	}
}

// ArtifactPath resolves a root-relative artifact path.
func (p *Processor) ArtifactPath(rel string) string {
	return filepath.Join(p.root, rel)
}
