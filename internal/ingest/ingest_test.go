package ingest

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/annothub/annothub-backend/internal/db"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/repos"
)

// testRepos is the full repo set over one private in-memory database.
type testRepos struct {
	annotations repos.AnnotationRepo
	assemblies  repos.GenomeAssemblyRepo
	organisms   repos.OrganismRepo
	taxa        repos.TaxonNodeRepo
	sequences   repos.GenomicSequenceRepo
	seqmaps     repos.SequenceMapRepo
	errs        repos.AnnotationErrorRepo
}

func newTestRepos(t *testing.T) *testRepos {
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
	return &testRepos{
		annotations: repos.NewAnnotationRepo(conn, log),
		assemblies:  repos.NewGenomeAssemblyRepo(conn, log),
		organisms:   repos.NewOrganismRepo(conn, log),
		taxa:        repos.NewTaxonNodeRepo(conn, log),
		sequences:   repos.NewGenomicSequenceRepo(conn, log),
		seqmaps:     repos.NewSequenceMapRepo(conn, log),
		errs:        repos.NewAnnotationErrorRepo(conn, log),
	}
}
