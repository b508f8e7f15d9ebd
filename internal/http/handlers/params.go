package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/annothub/annothub-backend/internal/repos"
)

// listOptions parses page/per_page/sort query parameters plus the
// allowed filter fields into repo list options. Sort accepts a leading
// '-' for descending order.
func listOptions(c *gin.Context, sortable map[string]bool, filterable map[string]bool) repos.ListOptions {
	opts := repos.ListOptions{
		Page:    atoiDefault(c.Query("page"), 1),
		PerPage: atoiDefault(c.Query("per_page"), 20),
	}
	if sort := c.Query("sort"); sort != "" {
		field := sort
		if strings.HasPrefix(sort, "-") {
			field = sort[1:]
			opts.Desc = true
		}
		if sortable[field] {
			opts.SortBy = field
		}
	}
	for field := range filterable {
		if v := c.Query(field); v != "" {
			if opts.Filters == nil {
				opts.Filters = make(map[string]any)
			}
			opts.Filters[field] = v
		}
	}
	return opts
}

func atoiDefault(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func parseTaxid(c *gin.Context) (int64, bool) {
	taxid, err := strconv.ParseInt(c.Param("taxid"), 10, 64)
	return taxid, err == nil
}
