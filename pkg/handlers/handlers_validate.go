package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/autohours-api-go/pkg/database"
	"github.com/arnavshah/autohours-api-go/pkg/models"
)

// ValidateSettings checks a percent matrix before it is saved
func (h *Handler) ValidateSettings(c *gin.Context) {
	var input struct {
		Scope models.Scope          `json:"scope" binding:"required"`
		Rows  []models.AutoHoursRow `json:"rows"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
		return
	}

	weeks, err := database.ScopeWeeks(c.Request.Context(), h.DB, input.Scope, h.Config.SettingsWeeks)
	if err != nil {
		h.fail(c, err)
		return
	}

	if len(input.Rows) == 0 {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "At least one row is required"})
		return
	}

	seen := make(map[uint]bool)
	cells := 0
	var warnings []string
	for _, row := range input.Rows {
		if seen[row.RoleID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("Duplicate role ID: %d", row.RoleID)})
			return
		}
		seen[row.RoleID] = true

		total := 0.0
		for key, pct := range row.PercentByWeek {
			week, err := strconv.Atoi(key)
			if err != nil || week < 0 || week >= weeks {
				c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("Role %d: week %q is outside 0-%d", row.RoleID, key, weeks-1)})
				return
			}
			if math.IsNaN(pct) || pct < 0 || pct > 100 {
				c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("Role %d: week %s percent %v is outside 0-100", row.RoleID, key, pct)})
				return
			}
			if pct > 0 {
				cells++
			}
			total += pct
		}
		if total > 0 && math.Abs(total-100) > 1e-9 {
			warnings = append(warnings, fmt.Sprintf("Role %d: weeks add up to %g%%, not 100%%", row.RoleID, total))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"warnings": warnings,
		"stats": gin.H{
			"row_count":  len(input.Rows),
			"cell_count": cells,
			"weeks":      weeks,
		},
	})
}
