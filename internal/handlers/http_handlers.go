package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"prizedraw/internal/engine"
	"prizedraw/internal/exporter"
	"prizedraw/internal/importer"
	"prizedraw/internal/metrics"
	"prizedraw/internal/models"
	"prizedraw/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// HTTPHandler holds the dependencies for the HTTP handlers, like the lottery service.
type HTTPHandler struct {
	service *services.LotteryService
	metrics *metrics.Collector
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(service *services.LotteryService, collector *metrics.Collector) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		metrics: collector,
	}
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	router.GET("/participants", h.ListParticipants)
	router.POST("/participants", h.LoadParticipants)
	router.POST("/participants/upload", h.UploadParticipants)

	router.GET("/prizes", h.ListPrizes)
	router.POST("/prizes", h.AddPrize)
	router.POST("/prizes/upload", h.UploadPrizes)
	router.PATCH("/prizes/:id", h.UpdatePrize)
	router.DELETE("/prizes/:id", h.RemovePrize)

	router.GET("/draw", h.ShowDraw)
	router.POST("/draw/arm", h.ArmDraw)
	router.POST("/draw/cancel", h.CancelDraw)
	router.POST("/draw/reset", h.ResetDraw)

	router.GET("/results", h.Results)
	router.GET("/results/export", h.ExportResults)
	router.GET("/results/:prizeID", h.PrizeResults)
}

// writeError maps engine and service errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var verr *engine.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": verr.Field})
	case errors.Is(err, engine.ErrFrozen), errors.Is(err, services.ErrNothingToDraw):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, importer.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Health reports that the process is serving.
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListParticipants returns the loaded pool.
func (h *HTTPHandler) ListParticipants(c *gin.Context) {
	participants := h.service.GetParticipants()
	c.JSON(http.StatusOK, gin.H{"participants": participants, "count": len(participants)})
}

// LoadParticipants replaces the pool with a JSON array of participants.
// Entries without a name are skipped, as the file import does.
func (h *HTTPHandler) LoadParticipants(c *gin.Context) {
	var records []models.Participant
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant list: " + err.Error()})
		return
	}

	participants := make([]models.Participant, 0, len(records))
	for _, r := range records {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			continue
		}
		participants = append(participants, r)
	}
	if skipped := len(records) - len(participants); skipped > 0 {
		logger.Infof("Skipped %d participants without a name", skipped)
	}

	if err := h.service.LoadParticipants(participants); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants, "count": len(participants)})
}

// UploadParticipants handles a CSV or XLSX upload for participants.
func (h *HTTPHandler) UploadParticipants(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "error retrieving file: " + err.Error()})
		return
	}
	format, err := importer.FormatFromFilename(header.Filename)
	if err != nil {
		writeError(c, err)
		return
	}
	file, err := header.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer file.Close()

	participants, err := importer.Parse(file, format)
	if err != nil {
		logger.Warningf("Participant import of %q failed: %v", header.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read participant file: " + err.Error()})
		return
	}
	if err := h.service.LoadParticipants(participants); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants, "count": len(participants)})
}

// ListPrizes returns the prizes in draw order.
func (h *HTTPHandler) ListPrizes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prizes": h.service.GetPrizes()})
}

type addPrizeRequest struct {
	Name        string `json:"name"`
	WinnerCount *int   `json:"winnerCount"`
	BackupCount *int   `json:"backupCount"`
}

// AddPrize handles the form submission for adding a new prize.
func (h *HTTPHandler) AddPrize(c *gin.Context) {
	var req addPrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prize: " + err.Error()})
		return
	}

	winners, backups := h.service.PrizeDefaults()
	if req.WinnerCount != nil {
		winners = *req.WinnerCount
	}
	if req.BackupCount != nil {
		backups = *req.BackupCount
	}

	prize, err := h.service.AddPrize(req.Name, winners, backups)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, prize)
}

// UploadPrizes handles a CSV upload of prizes, one name,winnerCount,backupCount row each.
// Malformed rows are skipped; a file that cannot be read adds nothing.
func (h *HTTPHandler) UploadPrizes(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "error retrieving file: " + err.Error()})
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warningf("Prize import failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "error reading CSV: " + err.Error()})
			return
		}
		rows = append(rows, record)
	}

	added := 0
	for _, record := range rows {
		if len(record) != 3 {
			logger.Infof("Skipping malformed prize CSV record: %v", record)
			continue
		}
		winners, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			logger.Infof("Skipping prize CSV record with invalid winner count: %v", record)
			continue
		}
		backups, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			logger.Infof("Skipping prize CSV record with invalid backup count: %v", record)
			continue
		}

		_, err = h.service.AddPrize(record[0], winners, backups)
		var verr *engine.ValidationError
		switch {
		case errors.As(err, &verr):
			logger.Infof("Skipping prize CSV record: %v", verr)
			continue
		case err != nil:
			writeError(c, err)
			return
		}
		added++
	}

	c.JSON(http.StatusOK, gin.H{"prizes": h.service.GetPrizes(), "added": added, "skipped": len(rows) - added})
}

type updatePrizeRequest struct {
	Name        *string `json:"name"`
	WinnerCount *int    `json:"winnerCount"`
	BackupCount *int    `json:"backupCount"`
}

// UpdatePrize changes the fields present in the request body.
func (h *HTTPHandler) UpdatePrize(c *gin.Context) {
	var req updatePrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prize update: " + err.Error()})
		return
	}

	prize, ok, err := h.service.UpdatePrize(c.Param("id"), engine.PrizeUpdate{
		Name:        req.Name,
		WinnerCount: req.WinnerCount,
		BackupCount: req.BackupCount,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "prize not found"})
		return
	}
	c.JSON(http.StatusOK, prize)
}

// RemovePrize deletes a prize. Deleting an unknown prize succeeds.
func (h *HTTPHandler) RemovePrize(c *gin.Context) {
	if err := h.service.RemovePrize(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PrizeResults returns the last draw's winners for one prize.
func (h *HTTPHandler) PrizeResults(c *gin.Context) {
	winners, ok := h.service.GetPrizeResults(c.Param("prizeID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "prize not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}

// ShowDraw returns the draw state together with grouped results.
func (h *HTTPHandler) ShowDraw(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.View())
}

// ArmDraw starts the countdown.
func (h *HTTPHandler) ArmDraw(c *gin.Context) {
	armed, err := h.service.Arm()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": armed, "state": h.service.State()})
}

// CancelDraw stops a running countdown.
func (h *HTTPHandler) CancelDraw(c *gin.Context) {
	cancelled := h.service.Cancel()
	c.JSON(http.StatusOK, gin.H{"accepted": cancelled, "state": h.service.State()})
}

// ResetDraw clears the whole session.
func (h *HTTPHandler) ResetDraw(c *gin.Context) {
	h.service.Reset()
	c.JSON(http.StatusOK, gin.H{"state": h.service.State()})
}

// Results returns every winner of the last draw, optionally filtered by status.
func (h *HTTPHandler) Results(c *gin.Context) {
	var winners []models.Winner
	switch c.Query("status") {
	case "":
		winners = h.service.GetLotteryResults()
	case "main":
		winners = h.service.GetResultsByStatus(false)
	case "backup":
		winners = h.service.GetResultsByStatus(true)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be main or backup"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}

// ExportResults handles the request to download the results as CSV or XLSX.
func (h *HTTPHandler) ExportResults(c *gin.Context) {
	winners := h.service.GetLotteryResults()

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", "attachment;filename=lottery_results.csv")
		if err := exporter.WriteCSV(c.Writer, winners); err != nil {
			logger.Errorf("Error writing CSV export: %v", err)
			c.Status(http.StatusInternalServerError)
		}
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment;filename=lottery_results.xlsx")
		if err := exporter.WriteXLSX(c.Writer, winners); err != nil {
			logger.Errorf("Error writing XLSX export: %v", err)
			c.Status(http.StatusInternalServerError)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
	}
}
