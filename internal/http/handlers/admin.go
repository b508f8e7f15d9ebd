package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/annothub/annothub-backend/internal/http/response"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/services"
)

type AdminHandler struct {
	log   *logger.Logger
	admin services.AdminService
}

func NewAdminHandler(log *logger.Logger, admin services.AdminService) *AdminHandler {
	return &AdminHandler{
		log:   log.With("handler", "AdminHandler"),
		admin: admin,
	}
}

func (h *AdminHandler) TriggerIngest(c *gin.Context) {
	runID, err := h.admin.TriggerIngest()
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "started", "run_id": runID})
}

func (h *AdminHandler) UpdateCounts(c *gin.Context) {
	if err := h.admin.UpdateCounts(c.Request.Context()); err != nil {
		h.log.Error("UpdateCounts failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "ok"})
}

func (h *AdminHandler) RefreshStatistics(c *gin.Context) {
	id := c.Param("annotation_id")
	if err := h.admin.RefreshStatistics(c.Request.Context(), id); err != nil {
		h.log.Error("RefreshStatistics failed", "annotation_id", id, "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "ok", "annotation_id": id})
}

func (h *AdminHandler) DeleteAnnotation(c *gin.Context) {
	id := c.Param("annotation_id")
	if err := h.admin.DeleteAnnotation(c.Request.Context(), id); err != nil {
		h.log.Error("DeleteAnnotation failed", "annotation_id", id, "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "deleted", "annotation_id": id})
}
