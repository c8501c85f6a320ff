package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/autohours-api-go/pkg/database"
)

const (
	usageEventsKey = "usage.events"
	usageCellsKey  = "usage.cells"
)

// RecordUsage adds the request to the key's daily usage using an upsert
func (h *Handler) RecordUsage(c *gin.Context, apiKey *database.APIKey) {
	events := c.GetInt(usageEventsKey)
	cells := c.GetInt(usageCellsKey)
	today := time.Now().Format("2006-01-02")

	err := h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":     gorm.Expr("request_count + ?", 1),
			"total_events":      gorm.Expr("total_events + ?", events),
			"total_cells_saved": gorm.Expr("total_cells_saved + ?", cells),
		}),
	}).Create(&database.APIUsage{
		KeyID:           apiKey.ID,
		Date:            today,
		RequestCount:    1,
		TotalEvents:     events,
		TotalCellsSaved: cells,
	}).Error
	if err != nil {
		h.Log.WithError(err).WithField("key_id", apiKey.ID).Warn("failed to record usage")
	}

	now := time.Now()
	if err := h.DB.Model(apiKey).Update("last_used", &now).Error; err != nil {
		h.Log.WithError(err).WithField("key_id", apiKey.ID).Warn("failed to update last_used")
	}
}

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	var usage []database.APIUsage
	if err := h.DB.Where("key_id = ?", apiKey.ID).Order("date desc").Limit(30).Find(&usage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	var totalRequests, totalEvents, totalCells int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalEvents += int64(u.TotalEvents)
		totalCells += int64(u.TotalCellsSaved)
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals": gin.H{
			"requests":    totalRequests,
			"events":      totalEvents,
			"cells_saved": totalCells,
		},
	})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var usage []database.APIUsage
	if err := h.DB.Where("key_id = ?", id).Order("date desc").Limit(30).Find(&usage).Error; err != nil {
		h.fail(c, errors.Wrap(err, "failed to fetch usage"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}
