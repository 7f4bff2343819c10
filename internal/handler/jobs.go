package handler

import (
	"net/http"
	"strconv"

	"github.com/xZoluGames/InventarioApp-sub001/internal/apierror"
	"github.com/xZoluGames/InventarioApp-sub001/internal/service"
	"github.com/xZoluGames/InventarioApp-sub001/internal/worker"

	"github.com/gin-gonic/gin"
)

// triggerable lists the jobs an owner may start by hand.
var triggerable = map[string]bool{
	service.JobSync:     true,
	service.JobBackup:   true,
	service.JobLowStock: true,
}

type JobsHandler struct {
	jobs service.JobEnqueuer
	dead worker.DeadLetters
}

func NewJobsHandler(jobs service.JobEnqueuer, dead worker.DeadLetters) *JobsHandler {
	return &JobsHandler{jobs: jobs, dead: dead}
}

// Trigger POST /v1/jobs/:type enqueues the same job the scheduler runs.
func (h *JobsHandler) Trigger(c *gin.Context) {
	jobType := c.Param("type")
	if !triggerable[jobType] {
		c.JSON(http.StatusNotFound, apierror.New("unknown job type"))
		return
	}
	if err := h.jobs.Enqueue(c.Request.Context(), jobType, struct{}{}); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": jobType})
}

// DeadLetters GET /v1/jobs/dead-letters?limit=50
func (h *JobsHandler) DeadLetters(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		c.JSON(http.StatusBadRequest, apierror.New("limit must be between 1 and 200"))
		return
	}
	entries, err := h.dead.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
