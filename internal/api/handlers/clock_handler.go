package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clockpro/backend/internal/services"
	"github.com/clockpro/backend/internal/utils"
)

type ClockHandler struct {
	svc services.ClockService
}

func NewClockHandler(svc services.ClockService) *ClockHandler {
	return &ClockHandler{svc: svc}
}

func (h *ClockHandler) Time(c *gin.Context) {
	info, err := h.svc.TimeIn(c.Param("timezone"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

type worldTimesRequest struct {
	Timezones []services.WorldTimeQuery `json:"timezones"`
}

func (h *ClockHandler) WorldTimes(c *gin.Context) {
	var req worldTimesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ClockHandler.WorldTimes", "timezones must be an array", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"worldTimes": h.svc.WorldTimes(req.Timezones),
	})
}

func (h *ClockHandler) Timezones(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timezones": h.svc.Timezones(c.Query("search")),
	})
}

type convertRequest struct {
	Time         string `json:"time" binding:"required"`
	FromTimezone string `json:"fromTimezone" binding:"required"`
	ToTimezone   string `json:"toTimezone" binding:"required"`
}

func (h *ClockHandler) Convert(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ClockHandler.Convert", "time, fromTimezone, and toTimezone are required", err))
		return
	}

	conv, err := h.svc.Convert(req.Time, req.FromTimezone, req.ToTimezone)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversion": conv})
}
