package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/annothub/annothub-backend/internal/db"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/repos"
	"github.com/annothub/annothub-backend/internal/services"
	"github.com/annothub/annothub-backend/internal/types"
)

func annotationRouter(t *testing.T) *gin.Engine {
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

	log := logger.NewNop()
	annotations := repos.NewAnnotationRepo(conn, log)
	seqmaps := repos.NewSequenceMapRepo(conn, log)
	errs := repos.NewAnnotationErrorRepo(conn, log)

	if err := annotations.Create(context.Background(), nil, []*types.Annotation{
		{
			AnnotationID:      "ann1",
			Taxid:             9606,
			OrganismName:      "Homo sapiens",
			AssemblyAccession: "GCA_000001405.29",
			SourceFileInfo:    types.SourceFileInfo{SourceDatabase: "ensembl", URLPath: "http://x/a", UncompressedMD5: "a"},
			IndexedFileInfo:   types.IndexedFileInfo{BgzippedPath: "a.gff.gz", FileSize: 10},
		},
		{
			AnnotationID:      "ann2",
			Taxid:             10090,
			OrganismName:      "Mus musculus",
			AssemblyAccession: "GCA_000001635.9",
			SourceFileInfo:    types.SourceFileInfo{SourceDatabase: "refseq", URLPath: "http://x/b", UncompressedMD5: "b"},
			IndexedFileInfo:   types.IndexedFileInfo{BgzippedPath: "b.gff.gz", FileSize: 20},
		},
	}); err != nil {
		t.Fatal(err)
	}
	if err := seqmaps.Create(context.Background(), nil, []*types.AnnotationSequenceMap{
		{AnnotationID: "ann1", SequenceID: "1", Aliases: datatypes.NewJSONSlice([]string{"1", "chr1"})},
	}); err != nil {
		t.Fatal(err)
	}

	svc := services.NewAnnotationService(annotations, seqmaps, errs, t.TempDir(), log)
	h := NewAnnotationHandler(log, svc)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/annotations", h.List)
	r.GET("/api/v1/annotations/export", h.ExportTSV)
	r.GET("/api/v1/annotations/:annotation_id", h.Get)
	r.GET("/api/v1/annotations/:annotation_id/aliases", h.Aliases)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestAnnotationList(t *testing.T) {
	t.Parallel()

	r := annotationRouter(t)
	w := doGet(t, r, "/api/v1/annotations?sort=annotation_id")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Annotations []types.Annotation `json:"annotations"`
		Pagination  struct {
			Page    int   `json:"page"`
			PerPage int   `json:"per_page"`
			Total   int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Annotations) != 2 || body.Pagination.Total != 2 {
		t.Fatalf("body = %s", w.Body.String())
	}
	if body.Annotations[0].AnnotationID != "ann1" {
		t.Errorf("first = %s", body.Annotations[0].AnnotationID)
	}

	w = doGet(t, r, "/api/v1/annotations?taxid=10090")
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Annotations) != 1 || body.Annotations[0].AnnotationID != "ann2" {
		t.Errorf("filtered body = %s", w.Body.String())
	}
}

func TestAnnotationGet(t *testing.T) {
	t.Parallel()

	r := annotationRouter(t)
	w := doGet(t, r, "/api/v1/annotations/ann1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var a types.Annotation
	if err := json.Unmarshal(w.Body.Bytes(), &a); err != nil {
		t.Fatal(err)
	}
	if a.AnnotationID != "ann1" || a.Taxid != 9606 {
		t.Errorf("annotation = %+v", a)
	}

	w = doGet(t, r, "/api/v1/annotations/missing")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "annotation_not_found") {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestAnnotationAliases(t *testing.T) {
	t.Parallel()

	r := annotationRouter(t)
	w := doGet(t, r, "/api/v1/annotations/ann1/aliases")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Aliases []types.AnnotationSequenceMap `json:"aliases"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Aliases) != 1 || body.Aliases[0].SequenceID != "1" {
		t.Errorf("aliases = %s", w.Body.String())
	}
}

func TestAnnotationExportTSV(t *testing.T) {
	t.Parallel()

	r := annotationRouter(t)
	w := doGet(t, r, "/api/v1/annotations/export?sort=annotation_id")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "tab-separated-values") {
		t.Errorf("content type = %s", ct)
	}
	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "annotation_id\ttaxid") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "ann1\t9606\tHomo sapiens") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", NewHealthHandler().HealthCheck)
	w := doGet(t, r, "/health")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("health = %d %q", w.Code, w.Body.String())
	}
}
