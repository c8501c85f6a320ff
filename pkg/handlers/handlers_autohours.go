package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/arnavshah/autohours-api-go/pkg/allocation"
	"github.com/arnavshah/autohours-api-go/pkg/database"
	"github.com/arnavshah/autohours-api-go/pkg/grid"
	"github.com/arnavshah/autohours-api-go/pkg/metrics"
	"github.com/arnavshah/autohours-api-go/pkg/models"
)

// CreateDepartment adds a department
func (h *Handler) CreateDepartment(c *gin.Context) {
	var d database.Department
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d.ID = 0
	if err := database.CreateDepartment(c.Request.Context(), h.DB, &d); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// ListDepartments returns every department
func (h *Handler) ListDepartments(c *gin.Context) {
	out, err := database.ListDepartments(c.Request.Context(), h.DB)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": out})
}

// CreateRole adds a role (a grid row) to a department
func (h *Handler) CreateRole(c *gin.Context) {
	var r database.Role
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r.ID = 0
	if err := database.CreateRole(c.Request.Context(), h.DB, &r); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// ListRoles returns roles in grid order, filtered by ?department_id when given
func (h *Handler) ListRoles(c *gin.Context) {
	var dept uint
	if raw := c.Query("department_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		dept = id
	}
	out, err := database.ListRoles(c.Request.Context(), h.DB, dept)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": out})
}

func (h *Handler) departmentScope(c *gin.Context) (models.Scope, bool) {
	id, err := parseID(c.Query("department_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "department_id is required"})
		return models.Scope{}, false
	}
	return models.Scope{Kind: models.ScopeDepartment, DepartmentID: id}, true
}

func (h *Handler) templateScope(c *gin.Context) (models.Scope, bool) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Scope{}, false
	}
	return models.Scope{Kind: models.ScopeTemplate, TemplateID: id}, true
}

func (h *Handler) loadSettings(c *gin.Context, scope models.Scope) {
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
	c.JSON(http.StatusOK, models.SettingsResponse{Scope: scope, Weeks: grid.WeekKeys(weeks), Rows: rows})
}

func (h *Handler) saveSettings(c *gin.Context, scope models.Scope, rows []models.AutoHoursRow) {
	ctx := c.Request.Context()
	weeks, err := database.ScopeWeeks(ctx, h.DB, scope, h.Config.SettingsWeeks)
	if err != nil {
		h.fail(c, err)
		return
	}
	n, err := database.SaveRows(ctx, h.DB, scope, rows, weeks)
	metrics.Save(string(scope.Kind), err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(usageCellsKey, n)
	h.loadSettings(c, scope)
}

// GetDepartmentSettings returns the department's default percent matrix
func (h *Handler) GetDepartmentSettings(c *gin.Context) {
	scope, ok := h.departmentScope(c)
	if !ok {
		return
	}
	h.loadSettings(c, scope)
}

// PutDepartmentSettings saves the department's default percent matrix
func (h *Handler) PutDepartmentSettings(c *gin.Context) {
	scope, ok := h.departmentScope(c)
	if !ok {
		return
	}
	var body models.SettingsPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.saveSettings(c, scope, body.Rows)
}

// CreateTemplate adds a named template; week_count defaults to TEMPLATE_WEEKS
func (h *Handler) CreateTemplate(c *gin.Context) {
	var t database.AutoHoursTemplate
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t.ID = 0
	if t.WeekCount == 0 {
		t.WeekCount = h.Config.TemplateWeeks
	}
	if t.WeekCount < 1 || t.WeekCount > 52 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_count must be between 1 and 52"})
		return
	}
	if err := database.CreateTemplate(c.Request.Context(), h.DB, &t); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// ListTemplates returns every template
func (h *Handler) ListTemplates(c *gin.Context) {
	out, err := database.ListTemplates(c.Request.Context(), h.DB)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": out})
}

// DeleteTemplate removes a template and its cells
func (h *Handler) DeleteTemplate(c *gin.Context) {
	scope, ok := h.templateScope(c)
	if !ok {
		return
	}
	if err := database.DeleteTemplate(c.Request.Context(), h.DB, scope.TemplateID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

// GetTemplateSettings returns a template's percent matrix
func (h *Handler) GetTemplateSettings(c *gin.Context) {
	scope, ok := h.templateScope(c)
	if !ok {
		return
	}
	h.loadSettings(c, scope)
}

// PutTemplateSettings saves a template's percent matrix
func (h *Handler) PutTemplateSettings(c *gin.Context) {
	scope, ok := h.templateScope(c)
	if !ok {
		return
	}
	var body models.SettingsPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.saveSettings(c, scope, body.Rows)
}

// ExportTemplateCSV writes the template as one row per role and one column per week
func (h *Handler) ExportTemplateCSV(c *gin.Context) {
	scope, ok := h.templateScope(c)
	if !ok {
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

	var out strings.Builder
	writer := csv.NewWriter(&out)
	header := []string{"role_id", "role_name", "department"}
	header = append(header, grid.WeekKeys(weeks)...)
	writer.Write(header)
	for _, r := range rows {
		record := []string{r.Key(), r.RoleName, r.DepartmentName}
		for _, w := range grid.WeekKeys(weeks) {
			record = append(record, strconv.FormatFloat(r.PercentByWeek[w], 'f', -1, 64))
		}
		writer.Write(record)
	}
	writer.Flush()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=template-%d.csv", scope.TemplateID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out.String()))
}

// ImportTemplateCSV reads a file in the export layout and saves it into the template
func (h *Handler) ImportTemplateCSV(c *gin.Context) {
	scope, ok := h.templateScope(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open file"})
		return
	}
	defer f.Close()

	rows, err := parseTemplateCSV(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.saveSettings(c, scope, rows)
}

func parseTemplateCSV(r io.Reader) ([]models.AutoHoursRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("Failed to read header")
	}

	roleCol := -1
	weekCols := make(map[int]string)
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "role_id" {
			roleCol = i
			continue
		}
		if _, err := strconv.Atoi(name); err == nil {
			weekCols[i] = name
		}
	}
	if roleCol < 0 {
		return nil, errors.New("role_id column is required")
	}

	var rows []models.AutoHoursRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if roleCol >= len(record) {
			return nil, errors.Errorf("line %d: missing role_id", line)
		}
		id, err := parseID(strings.TrimSpace(record[roleCol]))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		row := models.AutoHoursRow{RoleID: id, PercentByWeek: map[string]float64{}}
		for col, week := range weekCols {
			if col >= len(record) {
				continue
			}
			raw := strings.TrimSpace(record[col])
			if raw == "" {
				row.PercentByWeek[week] = 0
				continue
			}
			pct, ok := grid.ParsePercent(raw)
			if !ok {
				return nil, errors.Errorf("line %d: week %s: invalid percent %q", line, week, raw)
			}
			row.PercentByWeek[week] = grid.Clamp(pct)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Preview spreads role hours over calendar weeks using a scope's percent matrix
func (h *Handler) Preview(c *gin.Context) {
	var input models.PreviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := database.LoadRows(c.Request.Context(), h.DB, input.Scope)
	if err != nil {
		h.fail(c, err)
		return
	}

	weeks := allocation.Allocate(rows, input.HoursByRole, input.Due)
	total, byRole := allocation.Summarize(weeks)
	c.JSON(http.StatusOK, models.PreviewResponse{Weeks: weeks, TotalHours: total, ByRole: byRole})
}
