package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/reviewgraph"
	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/graph"
	"github.com/soundprediction/reviewgraph/pkg/server/dto"
)

// SnapshotHandler serves read-only queries over a loaded graph.
type SnapshotHandler struct {
	graph    *graph.TemporalGraph
	loadedAt time.Time
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(g *graph.TemporalGraph) *SnapshotHandler {
	return &SnapshotHandler{
		graph:    g,
		loadedAt: time.Now().UTC(),
	}
}

// GetSnapshot handles GET /api/v1/snapshot?date=YYYY-MM-DD&brand=X
func (h *SnapshotHandler) GetSnapshot(c *gin.Context) {
	var q dto.SnapshotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := reviewgraph.QuerySnapshot(h.graph, reviewgraph.SnapshotQuery{
		Date:   q.Date,
		Brand:  q.Brand,
		Strict: q.Strict,
	})
	switch {
	case errors.Is(err, reviewgraph.ErrInvalidDate):
		writeError(c, http.StatusBadRequest, "invalid_date", err.Error())
		return
	case errors.Is(err, reviewgraph.ErrUnknownBrand):
		writeError(c, http.StatusNotFound, "unknown_brand", err.Error())
		return
	case err != nil:
		writeError(c, http.StatusInternalServerError, "snapshot_failed", err.Error())
		return
	}

	facts := make([]dto.FactResult, len(res.Facts))
	for i, f := range res.Facts {
		facts[i] = dto.NewFactResult(f)
	}

	c.JSON(http.StatusOK, dto.SnapshotResponse{
		Date:   res.Date.Format(config.DateLayout),
		Brand:  res.Brand,
		Text:   res.Text,
		Facts:  facts,
		Total:  len(facts),
		NoData: res.NoData,
	})
}

// ListBrands handles GET /api/v1/brands?q=substring&limit=N
func (h *SnapshotHandler) ListBrands(c *gin.Context) {
	var q dto.BrandsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	needle := strings.ToLower(strings.TrimSpace(q.Query))
	brands := []string{}
	for _, b := range h.graph.Brands() {
		if needle != "" && !strings.Contains(strings.ToLower(b), needle) {
			continue
		}
		brands = append(brands, b)
		if q.Limit > 0 && len(brands) == q.Limit {
			break
		}
	}

	c.JSON(http.StatusOK, dto.BrandsResponse{Brands: brands, Total: len(brands)})
}

// GetStats handles GET /api/v1/stats
func (h *SnapshotHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatsResponse{
		Stats:    h.graph.Stats(),
		LoadedAt: h.loadedAt,
	})
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}
