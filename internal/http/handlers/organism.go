package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annothub/annothub-backend/internal/http/response"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/services"
)

type OrganismHandler struct {
	log       *logger.Logger
	organisms services.OrganismService
}

func NewOrganismHandler(log *logger.Logger, organisms services.OrganismService) *OrganismHandler {
	return &OrganismHandler{
		log:       log.With("handler", "OrganismHandler"),
		organisms: organisms,
	}
}

func (h *OrganismHandler) List(c *gin.Context) {
	opts := listOptions(c,
		map[string]bool{"taxid": true, "organism_name": true, "annotations_count": true, "assemblies_count": true},
		map[string]bool{"organism_name": true, "common_name": true})
	items, total, err := h.organisms.List(c.Request.Context(), opts)
	if err != nil {
		h.log.Error("List failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondList(c, "organisms", items, opts.Page, opts.PerPage, total)
}

func (h *OrganismHandler) Get(c *gin.Context) {
	taxid, ok := parseTaxid(c)
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_taxid", nil)
		return
	}
	o, err := h.organisms.Get(c.Request.Context(), taxid)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, o)
}
