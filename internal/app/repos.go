package app

import (
	"gorm.io/gorm"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/repos"
)

type Repos struct {
	Annotations repos.AnnotationRepo
	Assemblies  repos.GenomeAssemblyRepo
	Organisms   repos.OrganismRepo
	Taxa        repos.TaxonNodeRepo
	Sequences   repos.GenomicSequenceRepo
	SeqMaps     repos.SequenceMapRepo
	Errors      repos.AnnotationErrorRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Annotations: repos.NewAnnotationRepo(db, log),
		Assemblies:  repos.NewGenomeAssemblyRepo(db, log),
		Organisms:   repos.NewOrganismRepo(db, log),
		Taxa:        repos.NewTaxonNodeRepo(db, log),
		Sequences:   repos.NewGenomicSequenceRepo(db, log),
		SeqMaps:     repos.NewSequenceMapRepo(db, log),
		Errors:      repos.NewAnnotationErrorRepo(db, log),
	}
}
