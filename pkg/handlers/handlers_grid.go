package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/arnavshah/autohours-api-go/pkg/database"
	"github.com/arnavshah/autohours-api-go/pkg/grid"
	"github.com/arnavshah/autohours-api-go/pkg/metrics"
	"github.com/arnavshah/autohours-api-go/pkg/models"
	"github.com/arnavshah/autohours-api-go/pkg/sessions"
)

// session looks up the :id session owned by the calling client
func (h *Handler) session(c *gin.Context) (*sessions.Session, bool) {
	id := c.Param("id")
	s, err := h.Sessions.Get(id)
	if err == nil && s.Owner != c.GetString("userID") {
		err = errors.Wrap(sessions.ErrSessionNotFound, id)
	}
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return s, true
}

// OpenGridSession loads a scope's percent matrix into a new editing session
func (h *Handler) OpenGridSession(c *gin.Context) {
	var scope models.Scope
	if err := c.ShouldBindJSON(&scope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	weeks, err := database.ScopeWeeks(ctx, h.DB, scope, h.Config.SettingsWeeks)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, err := database.LoadRows(ctx, h.DB, scope)
	if err != nil {
		h.fail(c, err)
		return
	}

	s := h.Sessions.Open(c.GetString("userID"), scope, rows, grid.WeekKeys(weeks))
	c.JSON(http.StatusCreated, s.Snapshot())
}

// GetGridSession returns the session's current grid state
func (h *Handler) GetGridSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// ApplyGridEvents feeds pointer and keyboard events to the session's engine
func (h *Handler) ApplyGridEvents(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var batch models.EventBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := s.Apply(batch.Events)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(usageEventsKey, len(batch.Events))
	c.JSON(http.StatusOK, snap)
}

// SaveGridSession commits any pending typing and persists the session's rows
func (h *Handler) SaveGridSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	weeks, err := database.ScopeWeeks(ctx, h.DB, s.Scope, h.Config.SettingsWeeks)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows := s.Flush()
	n, err := database.SaveRows(ctx, h.DB, s.Scope, rows, min(weeks, len(s.Weeks)))
	metrics.Save(string(s.Scope.Kind), err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(usageCellsKey, n)
	h.Log.WithField("session", s.ID).WithField("cells", n).Info("grid session saved")
	c.JSON(http.StatusOK, gin.H{"saved": n, "session": s.Snapshot()})
}

// ReloadGridSession re-reads the rows from storage, dropping selections on removed roles
func (h *Handler) ReloadGridSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	rows, err := database.LoadRows(c.Request.Context(), h.DB, s.Scope)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Reload(rows))
}

// CloseGridSession unmounts the session's engine and discards it
func (h *Handler) CloseGridSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.Sessions.Close(s.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session closed"})
}
