package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/xZoluGames/InventarioApp-sub001/internal/apierror"
	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

const maxFrameBytes = 8 << 20

type ScanHandler struct{ svc service.ScanService }

func NewScanHandler(svc service.ScanService) *ScanHandler {
	return &ScanHandler{svc: svc}
}

// Scan resolves a code typed or sent by a keyboard-wedge scanner.
func (h *ScanHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Scan(c.Request.Context(), sessionOf(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Frame queues a camera image, sent either as the multipart field "frame"
// or as the raw request body. Results are collected from Events.
func (h *ScanHandler) Frame(c *gin.Context) {
	mode := c.DefaultQuery("mode", service.ScanModeSingle)
	if mode != service.ScanModeSingle && mode != service.ScanModeContinuous {
		c.JSON(http.StatusBadRequest, apierror.New("mode must be single or continuous"))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFrameBytes)
	data, err := readFrame(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("cannot read frame: "+err.Error()))
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("empty frame"))
		return
	}

	c.JSON(http.StatusAccepted, h.svc.SubmitFrame(c.Request.Context(), sessionOf(c), mode, data))
}

func readFrame(c *gin.Context) ([]byte, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return io.ReadAll(c.Request.Body)
	}
	fh, err := c.FormFile("frame")
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *ScanHandler) Events(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Events(sessionOf(c)))
}
