package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"deliwaste/server/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type WasteController struct {
	wasteService  *services.WasteService
	exportService *services.ExportService
	today         func() string
	log           *zap.Logger
}

// NewWasteController wires the waste endpoints. today supplies the default
// export month.
func NewWasteController(wasteService *services.WasteService, exportService *services.ExportService, today func() string, log *zap.Logger) *WasteController {
	return &WasteController{
		wasteService:  wasteService,
		exportService: exportService,
		today:         today,
		log:           log,
	}
}

// LogWaste POST /api/v1/waste
func (wc *WasteController) LogWaste(c *gin.Context) {
	var req services.LogWasteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err.Error())
		return
	}

	id, err := wc.wasteService.LogWaste(c.Request.Context(), req)
	if err != nil {
		respondError(c, wc.log, "failed to log waste", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ListWaste GET /api/v1/waste?start_date&end_date&item_id&limit&offset
func (wc *WasteController) ListWaste(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultWasteListLimit)))
	if err != nil {
		badRequest(c, "invalid limit", "limit must be an integer")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		badRequest(c, "invalid offset", "offset must be an integer")
		return
	}

	list, err := wc.wasteService.ListWaste(c.Request.Context(), services.WasteQuery{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		ItemID:    c.Query("item_id"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(c, wc.log, "failed to list waste", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ExportWaste GET /api/v1/waste/export?start_date&end_date
// Without dates the current month is exported.
func (wc *WasteController) ExportWaste(c *gin.Context) {
	start, end := c.Query("start_date"), c.Query("end_date")
	if start == "" && end == "" {
		if anchor, err := services.ParseDate(wc.today()); err == nil {
			month := services.MonthRange(anchor)
			start, end = month.StartString(), month.EndString()
		}
	}

	var buf bytes.Buffer
	if err := wc.exportService.ExportWaste(c.Request.Context(), start, end, &buf); err != nil {
		respondError(c, wc.log, "failed to export waste", err)
		return
	}

	filename := fmt.Sprintf("waste_%s_%s.xlsx", start, end)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
