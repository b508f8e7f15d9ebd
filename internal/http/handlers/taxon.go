package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annothub/annothub-backend/internal/http/response"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/services"
)

type TaxonHandler struct {
	log  *logger.Logger
	taxa services.TaxonService
}

func NewTaxonHandler(log *logger.Logger, taxa services.TaxonService) *TaxonHandler {
	return &TaxonHandler{
		log:  log.With("handler", "TaxonHandler"),
		taxa: taxa,
	}
}

func (h *TaxonHandler) List(c *gin.Context) {
	opts := listOptions(c,
		map[string]bool{"taxid": true, "scientific_name": true, "annotations_count": true},
		map[string]bool{"rank": true, "scientific_name": true})
	items, total, err := h.taxa.List(c.Request.Context(), opts)
	if err != nil {
		h.log.Error("List failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondList(c, "taxa", items, opts.Page, opts.PerPage, total)
}

func (h *TaxonHandler) Get(c *gin.Context) {
	taxid, ok := parseTaxid(c)
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_taxid", nil)
		return
	}
	n, err := h.taxa.Get(c.Request.Context(), taxid)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, n)
}

func (h *TaxonHandler) Children(c *gin.Context) {
	taxid, ok := parseTaxid(c)
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_taxid", nil)
		return
	}
	children, err := h.taxa.Children(c.Request.Context(), taxid)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"children": children})
}

func (h *TaxonHandler) Ancestors(c *gin.Context) {
	taxid, ok := parseTaxid(c)
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_taxid", nil)
		return
	}
	ancestors, err := h.taxa.Ancestors(c.Request.Context(), taxid)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ancestors": ancestors})
}
