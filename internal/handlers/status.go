package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errGetStatus = "failed to load status"
	errPoll      = "poll failed"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Poller status
// @Description  Last poll result, newest history record, threshold and configured mode identifiers.
// @Tags         poller
// @Produce      json
// @Success      200  {object}  service.StatusReport
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	rep, err := h.services.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "status_failed", err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// @Summary      Run one poll cycle
// @Description  Fetches the wind speed now and, on a threshold crossing, records it and switches the camera mode.
// @Tags         poller
// @Produce      json
// @Success      200  {object}  service.PollResult
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/poll [post]
// @Security     BearerAuth
func (h *Handler) triggerPoll(c *gin.Context) {
	operatorID, _ := operatorFrom(c)
	res, err := h.services.Poll(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errPoll, "manual_poll_failed", err, "operator", operatorID)
		return
	}
	if h.log != nil {
		h.log.Infow("manual_poll", "operator", operatorID, "result", res.Result)
	}
	c.JSON(http.StatusOK, res)
}
