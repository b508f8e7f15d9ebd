package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/annothub/annothub-backend/internal/db"
	"github.com/annothub/annothub-backend/internal/gff"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/platform/apierr"
	"github.com/annothub/annothub-backend/internal/repos"
	"github.com/annothub/annothub-backend/internal/types"
)

const regionGFF = `##gff-version 3
1	ensembl	gene	100	1000	.	+	.	ID=gene:g1;biotype=protein_coding
1	ensembl	mRNA	100	1000	.	+	.	ID=transcript:t1;Parent=gene:g1
1	ensembl	exon	100	400	.	+	.	Parent=transcript:t1
2	ensembl	gene	50	500	.	+	.	ID=gene:g2;biotype=lncRNA
`

func testConn(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// seedRegionFixture compresses regionGFF under root and stores the
// matching annotation plus an alias row mapping chr1 to contig 1.
func seedRegionFixture(t *testing.T, conn *gorm.DB, root string) {
	t.Helper()
	ctx := context.Background()

	relBgz := filepath.Join("9606", "GCA_X.1", "ensembl_ann1.gff.gz")
	relCSI := relBgz + ".csi"
	if err := os.MkdirAll(filepath.Dir(filepath.Join(root, relBgz)), 0o755); err != nil {
		t.Fatal(err)
	}
	sorted := filepath.Join(t.TempDir(), "sorted.gff")
	if err := os.WriteFile(sorted, []byte(regionGFF), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := gff.CompressAndIndex(ctx, sorted, filepath.Join(root, relBgz), filepath.Join(root, relCSI)); err != nil {
		t.Fatalf("CompressAndIndex: %v", err)
	}

	log := logger.NewNop()
	annotations := repos.NewAnnotationRepo(conn, log)
	if err := annotations.Create(ctx, nil, []*types.Annotation{{
		AnnotationID:   "ann1",
		Taxid:          9606,
		SourceFileInfo: types.SourceFileInfo{URLPath: "http://x/a", UncompressedMD5: "a"},
		IndexedFileInfo: types.IndexedFileInfo{
			BgzippedPath: relBgz,
			CSIPath:      relCSI,
		},
		MappedRegions: datatypes.NewJSONSlice([]string{"1", "2"}),
		FeaturesSummary: datatypes.NewJSONType(types.FeatureOverview{
			FeatureTypes: []string{"exon", "gene", "mRNA"},
			Sources:      []string{"ensembl"},
			Biotypes:     []string{"lncRNA", "protein_coding"},
		}),
	}}); err != nil {
		t.Fatal(err)
	}

	seqmaps := repos.NewSequenceMapRepo(conn, log)
	if err := seqmaps.Create(ctx, nil, []*types.AnnotationSequenceMap{
		{AnnotationID: "ann1", SequenceID: "1", Aliases: datatypes.NewJSONSlice([]string{"1", "chr1", "CM000663.2"})},
	}); err != nil {
		t.Fatal(err)
	}
}

func newRegionService(t *testing.T) RegionService {
	t.Helper()
	conn := testConn(t)
	root := t.TempDir()
	seedRegionFixture(t, conn, root)
	log := logger.NewNop()
	return NewRegionService(
		repos.NewAnnotationRepo(conn, log),
		repos.NewSequenceMapRepo(conn, log),
		root, log,
	)
}

func assertCode(t *testing.T, err error, status int, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	ae := apierr.From(err)
	if ae.Status != status || ae.Code != code {
		t.Fatalf("err = %d/%s (%v), want %d/%s", ae.Status, ae.Code, err, status, code)
	}
}

func TestRegionStreamValidation(t *testing.T) {
	t.Parallel()

	s := newRegionService(t)
	ctx := context.Background()
	var buf strings.Builder

	err := s.Stream(ctx, RegionQuery{AnnotationID: "ann1"}, &buf)
	assertCode(t, err, 400, "filter_required")

	err = s.Stream(ctx, RegionQuery{AnnotationID: "ann1", Region: "1", Start: 500, End: 100}, &buf)
	assertCode(t, err, 400, "inverted_interval")

	err = s.Stream(ctx, RegionQuery{AnnotationID: "missing", Region: "1"}, &buf)
	assertCode(t, err, 404, "annotation_not_found")

	err = s.Stream(ctx, RegionQuery{AnnotationID: "ann1", FeatureType: "tRNA"}, &buf)
	assertCode(t, err, 400, "unknown_feature_type")
	if !strings.Contains(err.Error(), "exon, gene, mRNA") {
		t.Errorf("unknown_feature_type message lacks the allowed set: %v", err)
	}

	err = s.Stream(ctx, RegionQuery{AnnotationID: "ann1", FeatureSource: "havana"}, &buf)
	assertCode(t, err, 400, "unknown_feature_source")

	err = s.Stream(ctx, RegionQuery{AnnotationID: "ann1", Biotype: "rRNA"}, &buf)
	assertCode(t, err, 400, "unknown_biotype")

	err = s.Stream(ctx, RegionQuery{AnnotationID: "ann1", Region: "chr9"}, &buf)
	assertCode(t, err, 404, "region_not_found")

	if buf.Len() != 0 {
		t.Errorf("validation failures wrote output: %q", buf.String())
	}
}

func TestRegionStreamByRegion(t *testing.T) {
	t.Parallel()

	s := newRegionService(t)
	ctx := context.Background()

	var buf strings.Builder
	if err := s.Stream(ctx, RegionQuery{AnnotationID: "ann1", Region: "1", Start: 100, End: 400}, &buf); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("lines = %d, want gene+mRNA+exon:\n%s", len(lines), buf.String())
	}

	// the alias resolves through the sequence map to the physical contig
	buf.Reset()
	if err := s.Stream(ctx, RegionQuery{AnnotationID: "ann1", Region: "chr1", Start: 100, End: 400}, &buf); err != nil {
		t.Fatalf("Stream via alias: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 3 {
		t.Errorf("alias stream lines = %d, want 3", got)
	}

	// a contig known to the index but absent from the sequence map still
	// streams under its physical name
	buf.Reset()
	if err := s.Stream(ctx, RegionQuery{AnnotationID: "ann1", Region: "2"}, &buf); err != nil {
		t.Fatalf("Stream contig 2: %v", err)
	}
	if !strings.Contains(buf.String(), "ID=gene:g2") {
		t.Errorf("contig 2 stream:\n%s", buf.String())
	}
}

func TestRegionStreamFilterOnly(t *testing.T) {
	t.Parallel()

	s := newRegionService(t)
	ctx := context.Background()

	var buf strings.Builder
	if err := s.Stream(ctx, RegionQuery{AnnotationID: "ann1", FeatureType: "gene"}, &buf); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Errorf("gene lines = %d, want 2:\n%s", len(lines), buf.String())
	}

	buf.Reset()
	if err := s.Stream(ctx, RegionQuery{AnnotationID: "ann1", Region: "1", Biotype: "protein_coding"}, &buf); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if !strings.Contains(buf.String(), "ID=gene:g1") || strings.Contains(buf.String(), "exon") {
		t.Errorf("biotype-filtered stream:\n%s", buf.String())
	}
}
