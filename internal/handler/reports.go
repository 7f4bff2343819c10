package handler

import (
	"net/http"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

func (h *ReportsHandler) SalesStats(c *gin.Context) {
	var rng dto.ReportRange
	if !bindQuery(c, &rng) {
		return
	}
	resp, err := h.svc.SalesStats(c.Request.Context(), rng)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export writes a CSV or XLSX file and returns its metadata; the file is
// fetched with DownloadExport.
func (h *ReportsHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Export(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReportsHandler) ListExports(c *gin.Context) {
	resp, err := h.svc.ListExports(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) DownloadExport(c *gin.Context) {
	name := c.Param("name")
	path, err := h.svc.ExportPath(name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.FileAttachment(path, name)
}
