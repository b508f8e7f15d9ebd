package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/annothub/annothub-backend/internal/http/response"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/services"
)

type RegionHandler struct {
	log     *logger.Logger
	regions services.RegionService
}

func NewRegionHandler(log *logger.Logger, regions services.RegionService) *RegionHandler {
	return &RegionHandler{
		log:     log.With("handler", "RegionHandler"),
		regions: regions,
	}
}

// Stream serves GET /annotations/:annotation_id/region. Query params:
// region, start, end, feature_type, feature_source, biotype.
func (h *RegionHandler) Stream(c *gin.Context) {
	q := services.RegionQuery{
		AnnotationID:  c.Param("annotation_id"),
		Region:        c.Query("region"),
		FeatureType:   c.Query("feature_type"),
		FeatureSource: c.Query("feature_source"),
		Biotype:       c.Query("biotype"),
	}
	var err error
	if v := c.Query("start"); v != "" {
		if q.Start, err = strconv.ParseInt(v, 10, 64); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_start", err)
			return
		}
	}
	if v := c.Query("end"); v != "" {
		if q.End, err = strconv.ParseInt(v, 10, 64); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_end", err)
			return
		}
	}

	c.Header("Content-Type", "text/tab-separated-values")
	if err := h.regions.Stream(c.Request.Context(), q, c.Writer); err != nil {
		if c.Writer.Written() {
			h.log.Error("region stream failed mid-stream",
				"annotation_id", q.AnnotationID, "error", err)
			c.Abort()
			return
		}
		response.RespondAPIError(c, err)
	}
}
