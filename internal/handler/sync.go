package handler

import (
	"net/http"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/apierror"
	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct{ svc service.SyncService }

func NewSyncHandler(svc service.SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// ── Device side ────────────────────────────────────────────────────────────

func (h *SyncHandler) Status(c *gin.Context) {
	resp, err := h.svc.Status(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SyncNow runs one push/pull cycle inside the request. A cycle that fails
// part-way still reports what it managed.
func (h *SyncHandler) SyncNow(c *gin.Context) {
	resp, err := h.svc.Sync(c.Request.Context())
	if err != nil {
		if resp != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"detail": err.Error(), "result": resp})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SyncHandler) RetryFailed(c *gin.Context) {
	n, err := h.svc.RetryFailed(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requeued": n})
}

func (h *SyncHandler) SetRemote(c *gin.Context) {
	var req dto.RemoteConfigRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.SetRemote(c.Request.Context(), req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	h.Status(c)
}

// ── Server side (/v1/sync) ─────────────────────────────────────────────────

func (h *SyncHandler) Push(c *gin.Context) {
	var req dto.SyncPushRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ApplyPush(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Pull GET /v1/sync/pull?since=RFC3339. A missing since returns everything.
func (h *SyncHandler) Pull(c *gin.Context) {
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("since must be an RFC3339 timestamp"))
			return
		}
		since = t
	}
	resp, err := h.svc.PullSince(c.Request.Context(), since)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
