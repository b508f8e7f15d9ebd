package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/annothub/annothub-backend/internal/http/response"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/services"
)

type AssemblyHandler struct {
	log        *logger.Logger
	assemblies services.AssemblyService
}

func NewAssemblyHandler(log *logger.Logger, assemblies services.AssemblyService) *AssemblyHandler {
	return &AssemblyHandler{
		log:        log.With("handler", "AssemblyHandler"),
		assemblies: assemblies,
	}
}

func (h *AssemblyHandler) List(c *gin.Context) {
	opts := listOptions(c,
		map[string]bool{"assembly_accession": true, "assembly_name": true, "release_date": true, "annotations_count": true},
		map[string]bool{"taxid": true, "source_database": true, "submitter": true})
	items, total, err := h.assemblies.List(c.Request.Context(), opts)
	if err != nil {
		h.log.Error("List failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondList(c, "assemblies", items, opts.Page, opts.PerPage, total)
}

func (h *AssemblyHandler) Get(c *gin.Context) {
	a, err := h.assemblies.Get(c.Request.Context(), c.Param("accession"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, a)
}

func (h *AssemblyHandler) Sequences(c *gin.Context) {
	seqs, err := h.assemblies.Sequences(c.Request.Context(), c.Param("accession"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sequences": seqs})
}
