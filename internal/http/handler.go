// Package http exposes the tide prediction use cases over a JSON API.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/tidegrid/internal/usecase"
)

// Handler handles HTTP requests for tide predictions.
type Handler struct {
	predictionUC *usecase.PredictionUseCase
	logger       *slog.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(predictionUC *usecase.PredictionUseCase, logger *slog.Logger) *Handler {
	return &Handler{
		predictionUC: predictionUC,
		logger:       logger,
	}
}

// GetPredictions handles GET /v1/tides/predictions.
func (h *Handler) GetPredictions(c *gin.Context) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	startStr := c.Query("start")
	endStr := c.Query("end")
	intervalStr := c.DefaultQuery("interval", "10m")

	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon parameters are required"})
		return
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return
	}

	// Parse time range.
	if startStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start parameter is required"})
		return
	}
	if endStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end parameter is required"})
		return
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid start time (expected RFC3339): %v", err)})
		return
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid end time (expected RFC3339): %v", err)})
		return
	}

	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid interval: %v", err)})
		return
	}

	req := usecase.PredictionRequest{
		Lat:      lat,
		Lon:      lon,
		Start:    start.UTC(),
		End:      end.UTC(),
		Interval: interval,
		Datum:    strings.ToUpper(c.Query("datum")),
	}
	response, err := h.predictionUC.Execute(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// PostEvaluate handles POST /v1/tides/evaluate.
func (h *Handler) PostEvaluate(c *gin.Context) {
	var req usecase.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	response, err := h.predictionUC.Evaluate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetModel handles GET /v1/model.
func (h *Handler) GetModel(c *gin.Context) {
	c.JSON(http.StatusOK, h.predictionUC.ModelInfo())
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ConstituentListResponse is the response for listing constituents.
type ConstituentListResponse struct {
	usecase.ConstituentInfo
	Description string `json:"description,omitempty"`
}

// descriptions of the major constituents.
var descriptions = map[string]string{
	"M2":   "Principal lunar semidiurnal",
	"S2":   "Principal solar semidiurnal",
	"N2":   "Larger lunar elliptic semidiurnal",
	"K2":   "Lunisolar semidiurnal",
	"K1":   "Lunisolar diurnal",
	"O1":   "Principal lunar diurnal",
	"P1":   "Principal solar diurnal",
	"Q1":   "Larger lunar elliptic diurnal",
	"M4":   "Shallow water overtide of M2",
	"M6":   "Shallow water overtide of M2",
	"MK3":  "Shallow water terdiurnal",
	"S4":   "Shallow water overtide of S2",
	"MN4":  "Shallow water quarter diurnal",
	"MS4":  "Shallow water quarter diurnal",
	"Mf":   "Lunisolar fortnightly",
	"Mm":   "Lunar monthly",
	"Ssa":  "Solar semiannual",
	"Sa":   "Solar annual",
	"Node": "Lunar nodal (18.61 years)",
}

// GetConstituentsList returns a detailed list of all constituents.
func (h *Handler) GetConstituentsList(c *gin.Context) {
	constituents := h.predictionUC.Constituents()
	response := make([]ConstituentListResponse, len(constituents))
	for i, info := range constituents {
		response[i] = ConstituentListResponse{
			ConstituentInfo: info,
			Description:     descriptions[info.Name],
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"constituents": response,
		"count":        len(response),
	})
}

// fail maps use case errors to HTTP statuses.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrNoData):
		status = http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request.Context(), "request failed", "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
