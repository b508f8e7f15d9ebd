package ingest

import (
	"context"
	"testing"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/types"
)

func TestAdmissionFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newTestRepos(t)

	published := &types.Annotation{
		AnnotationID: "pub1",
		Taxid:        9606,
		SourceFileInfo: types.SourceFileInfo{
			URLPath:         "http://x/published.gff.gz",
			UncompressedMD5: "md5-published",
		},
		IndexedFileInfo: types.IndexedFileInfo{BgzippedPath: "p/pub1.gff.gz"},
	}
	if err := r.annotations.Create(ctx, nil, []*types.Annotation{published}); err != nil {
		t.Fatal(err)
	}
	if err := r.errs.Upsert(ctx, nil, &types.AnnotationError{
		SourceURL: "http://x/errored.gff.gz",
		SourceMD5: "md5-errored",
		Message:   "boom",
	}); err != nil {
		t.Fatal(err)
	}

	f := NewAdmissionFilter(r.annotations, r.errs, logger.NewNop())

	candidates := []Candidate{
		{SourceURL: "http://x/published.gff.gz", SourceMD5: "md5-published"}, // exact fingerprint: drop
		{SourceURL: "http://x/published.gff.gz", SourceMD5: "md5-new"},       // same url, new content: keep
		{SourceURL: "http://x/other.gff.gz", SourceMD5: "md5-errored"},       // errored md5: drop
		{SourceURL: "http://x/fresh.gff.gz", SourceMD5: "md5-fresh"},         // keep
	}
	admitted, err := f.Admit(ctx, candidates)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if len(admitted) != 2 {
		t.Fatalf("admitted = %d, want 2", len(admitted))
	}
	if admitted[0].SourceMD5 != "md5-new" || admitted[1].SourceMD5 != "md5-fresh" {
		t.Errorf("admitted = %+v", admitted)
	}
}
