package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/annothub/annothub-backend/internal/http/response"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/services"
)

var annotationSortable = map[string]bool{
	"annotation_id": true, "taxid": true, "organism_name": true,
	"assembly_accession": true, "release_date": true, "file_size": true,
	"created_at": true,
}

var annotationFilterable = map[string]bool{
	"taxid": true, "assembly_accession": true, "organism_name": true,
	"source_database": true,
}

type AnnotationHandler struct {
	log         *logger.Logger
	annotations services.AnnotationService
}

func NewAnnotationHandler(log *logger.Logger, annotations services.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{
		log:         log.With("handler", "AnnotationHandler"),
		annotations: annotations,
	}
}

func (h *AnnotationHandler) List(c *gin.Context) {
	opts := listOptions(c, annotationSortable, annotationFilterable)
	items, total, err := h.annotations.List(c.Request.Context(), opts)
	if err != nil {
		h.log.Error("List failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondList(c, "annotations", items, opts.Page, opts.PerPage, total)
}

func (h *AnnotationHandler) Get(c *gin.Context) {
	a, err := h.annotations.Get(c.Request.Context(), c.Param("annotation_id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, a)
}

func (h *AnnotationHandler) Contigs(c *gin.Context) {
	contigs, err := h.annotations.Contigs(c.Request.Context(), c.Param("annotation_id"))
	if err != nil {
		h.log.Error("Contigs failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contigs": contigs})
}

func (h *AnnotationHandler) Aliases(c *gin.Context) {
	rows, err := h.annotations.Aliases(c.Request.Context(), c.Param("annotation_id"))
	if err != nil {
		h.log.Error("Aliases failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"aliases": rows})
}

func (h *AnnotationHandler) Errors(c *gin.Context) {
	opts := listOptions(c, map[string]bool{"created_at": true, "taxid": true},
		map[string]bool{"taxid": true, "assembly_accession": true, "source_database": true})
	items, total, err := h.annotations.Errors(c.Request.Context(), opts)
	if err != nil {
		h.log.Error("Errors failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondList(c, "errors", items, opts.Page, opts.PerPage, total)
}

func (h *AnnotationHandler) Download(c *gin.Context) {
	id := c.Param("annotation_id")
	a, err := h.annotations.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Content-Type", "application/gzip")
	c.Header("Content-Disposition", "attachment; filename=\""+a.SourceFileInfo.SourceDatabase+"_"+id+".gff.gz\"")
	if _, err := h.annotations.Download(c.Request.Context(), id, c.Writer); err != nil {
		// headers are gone; close the stream and log
		h.log.Error("Download failed mid-stream", "annotation_id", id, "error", err)
		c.Abort()
	}
}

func (h *AnnotationHandler) ExportTSV(c *gin.Context) {
	opts := listOptions(c, annotationSortable, annotationFilterable)
	c.Header("Content-Type", "text/tab-separated-values")
	c.Header("Content-Disposition", "attachment; filename=\"annotations.tsv\"")
	if err := h.annotations.ExportTSV(c.Request.Context(), opts, c.Writer); err != nil {
		h.log.Error("ExportTSV failed", "error", err)
		c.Abort()
	}
}
