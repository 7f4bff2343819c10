package handler

import (
	"net/http"

	"github.com/xZoluGames/InventarioApp-sub001/internal/apierror"
	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

const maxBackupUpload = 512 << 20

type BackupsHandler struct{ svc service.BackupService }

func NewBackupsHandler(svc service.BackupService) *BackupsHandler {
	return &BackupsHandler{svc: svc}
}

func (h *BackupsHandler) Create(c *gin.Context) {
	resp, err := h.svc.Create(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BackupsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BackupsHandler) Download(c *gin.Context) {
	name := c.Param("name")
	path, err := h.svc.Path(name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.FileAttachment(path, name)
}

func (h *BackupsHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Restore replaces the local store and schedules a restart. The response is
// written before the process goes down.
func (h *BackupsHandler) Restore(c *gin.Context) {
	var req dto.RestoreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Restore(c.Request.Context(), req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"restored": req.Name, "restarting": true})
}

func (h *BackupsHandler) Upload(c *gin.Context) {
	if err := h.svc.Upload(c.Request.Context(), c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploaded": c.Param("name")})
}

// ── Server side (/v1/backups) ──────────────────────────────────────────────

// Receive accepts a multipart upload in the "file" field.
func (h *BackupsHandler) Receive(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("multipart field \"file\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("cannot read upload"))
		return
	}
	defer f.Close()

	resp, err := h.svc.Receive(c.Request.Context(), fh.Filename, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BackupsHandler) ListReceived(c *gin.Context) {
	resp, err := h.svc.ListReceived(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BackupsHandler) DownloadReceived(c *gin.Context) {
	name := c.Param("name")
	path, err := h.svc.ReceivedPath(name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.FileAttachment(path, name)
}
