package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clockpro/backend/internal/models"
	"github.com/clockpro/backend/internal/services"
	"github.com/clockpro/backend/internal/utils"
)

type PomodoroHandler struct {
	svc services.PomodoroService
}

func NewPomodoroHandler(svc services.PomodoroService) *PomodoroHandler {
	return &PomodoroHandler{svc: svc}
}

// bindOptionalJSON is ShouldBindJSON that tolerates an empty body; the
// pause/complete/stop payloads are entirely optional.
func bindOptionalJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

type startRequest struct {
	Type         string `json:"type"`
	Duration     int    `json:"duration"`
	Task         string `json:"task"`
	AmbientSound string `json:"ambientSound"`
}

type startedSession struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	StartTime       time.Time `json:"startTime"`
	PlannedDuration int       `json:"plannedDuration"`
	Task            string    `json:"task"`
}

func (h *PomodoroHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	// The service owns semantic validation (type, duration range); a bind
	// failure only ever means the body itself was malformed.
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "PomodoroHandler.Start", "invalid request body", err))
		return
	}

	session, err := h.svc.Start(c.Request.Context(), userID, services.StartInput{
		Type:         req.Type,
		Duration:     req.Duration,
		Task:         req.Task,
		AmbientSound: req.AmbientSound,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Pomodoro session started",
		"session": startedSession{
			ID:              session.ID.Hex(),
			Type:            session.SubType,
			StartTime:       session.StartTime,
			PlannedDuration: session.PlannedDuration,
			Task:            session.Data.Task,
		},
	})
}

type completeRequest struct {
	Productivity *int   `json:"productivity"`
	Notes        string `json:"notes"`
}

func (h *PomodoroHandler) Complete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req completeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "PomodoroHandler.Complete", "invalid request body", err))
		return
	}

	session, err := h.svc.Complete(c.Request.Context(), userID, req.Productivity, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session completed successfully",
		"session": gin.H{
			"id":        session.ID.Hex(),
			"type":      session.SubType,
			"duration":  session.ActualDuration,
			"completed": true,
		},
	})
}

type pauseRequest struct {
	PausedTime int `json:"pausedTime"`
}

func (h *PomodoroHandler) Pause(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req pauseRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "PomodoroHandler.Pause", "invalid request body", err))
		return
	}

	total, err := h.svc.Pause(c.Request.Context(), userID, req.PausedTime)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Session pause recorded",
		"totalPausedTime": total,
	})
}

type stopRequest struct {
	Reason string `json:"reason"`
}

func (h *PomodoroHandler) Stop(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req stopRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "PomodoroHandler.Stop", "invalid request body", err))
		return
	}

	session, err := h.svc.Stop(c.Request.Context(), userID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session stopped",
		"session": gin.H{
			"id":          session.ID.Hex(),
			"type":        session.SubType,
			"duration":    session.ActualDuration,
			"interrupted": true,
		},
	})
}

func (h *PomodoroHandler) Current(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	active, err := h.svc.Current(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if active == nil {
		c.JSON(http.StatusOK, gin.H{
			"session": nil,
			"message": "No active session",
		})
		return
	}

	s := active.Session
	c.JSON(http.StatusOK, gin.H{
		"session": gin.H{
			"id":              s.ID.Hex(),
			"type":            s.SubType,
			"startTime":       s.StartTime,
			"plannedDuration": s.PlannedDuration,
			"elapsed":         active.Elapsed,
			"remaining":       active.Remaining,
			"task":            s.Data.Task,
			"ambientSound":    s.Data.AmbientSound,
			"pausedTime":      s.PausedTime,
		},
	})
}

type historySession struct {
	ID              string     `json:"id"`
	Type            string     `json:"type"`
	SubType         string     `json:"subType"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	PlannedDuration int        `json:"plannedDuration"`
	ActualDuration  int        `json:"actualDuration"`
	Completed       bool       `json:"completed"`
	Interrupted     bool       `json:"interrupted"`
	Task            string     `json:"task,omitempty"`
	Productivity    *int       `json:"productivity,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func toHistorySession(s models.Session) historySession {
	return historySession{
		ID:              s.ID.Hex(),
		Type:            s.Type,
		SubType:         s.SubType,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		PlannedDuration: s.PlannedDuration,
		ActualDuration:  s.ActualDuration,
		Completed:       s.Completed,
		Interrupted:     s.Interrupted,
		Task:            s.Data.Task,
		Productivity:    s.Productivity,
		CreatedAt:       s.CreatedAt,
	}
}

func parseHistoryDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

func (h *PomodoroHandler) History(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	sessions, pagination, err := h.svc.History(c.Request.Context(), userID, services.HistoryQuery{
		Page:     page,
		Limit:    limit,
		Type:     c.Query("type"),
		DateFrom: parseHistoryDate(c.Query("dateFrom")),
		DateTo:   parseHistoryDate(c.Query("dateTo")),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]historySession, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toHistorySession(s))
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions":   out,
		"pagination": pagination,
	})
}

func (h *PomodoroHandler) Analytics(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	report, err := h.svc.Analytics(c.Request.Context(), userID, c.DefaultQuery("period", "week"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period":    report.Period,
		"analytics": report.Analytics,
		"summary":   report.Summary,
	})
}
