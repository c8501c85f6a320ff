package database

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/autohours-api-go/pkg/grid"
	"github.com/arnavshah/autohours-api-go/pkg/models"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrUnknownRole = errors.New("role is not part of this scope")
	ErrBadScope    = errors.New("invalid scope")
)

// templateKey maps a scope onto the template_id column
func templateKey(scope models.Scope) (uint, error) {
	switch scope.Kind {
	case models.ScopeDepartment:
		if scope.DepartmentID == 0 {
			return 0, errors.Wrap(ErrBadScope, "department_id is required")
		}
		return 0, nil
	case models.ScopeTemplate:
		if scope.TemplateID == 0 {
			return 0, errors.Wrap(ErrBadScope, "template_id is required")
		}
		return scope.TemplateID, nil
	default:
		return 0, errors.Wrapf(ErrBadScope, "unknown scope %q", scope.Kind)
	}
}

type roleRow struct {
	ID             uint
	Name           string
	DepartmentID   uint
	DepartmentName string
}

func scopeRoles(ctx context.Context, db *gorm.DB, scope models.Scope) ([]roleRow, error) {
	q := db.WithContext(ctx).Table("roles").
		Select("roles.id, roles.name, roles.department_id, departments.name AS department_name").
		Joins("LEFT JOIN departments ON departments.id = roles.department_id").
		Order("roles.department_id, roles.sort_order, roles.id")
	if scope.Kind == models.ScopeDepartment {
		q = q.Where("roles.department_id = ?", scope.DepartmentID)
	}
	var out []roleRow
	if err := q.Scan(&out).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query roles")
	}
	return out, nil
}

// ScopeWeeks returns how many week offsets the scope's editor shows
func ScopeWeeks(ctx context.Context, db *gorm.DB, scope models.Scope, settingsWeeks int) (int, error) {
	switch scope.Kind {
	case models.ScopeDepartment:
		if _, err := GetDepartment(ctx, db, scope.DepartmentID); err != nil {
			return 0, err
		}
		return settingsWeeks, nil
	case models.ScopeTemplate:
		t, err := GetTemplate(ctx, db, scope.TemplateID)
		if err != nil {
			return 0, err
		}
		return t.WeekCount, nil
	default:
		return 0, errors.Wrapf(ErrBadScope, "unknown scope %q", scope.Kind)
	}
}

// LoadRows reads the percent matrix of scope, one row per role in grid order
func LoadRows(ctx context.Context, db *gorm.DB, scope models.Scope) ([]models.AutoHoursRow, error) {
	tid, err := templateKey(scope)
	if err != nil {
		return nil, err
	}
	roles, err := scopeRoles(ctx, db, scope)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(roles))
	rows := make([]models.AutoHoursRow, 0, len(roles))
	pos := make(map[uint]int, len(roles))
	for i, r := range roles {
		ids = append(ids, r.ID)
		pos[r.ID] = i
		rows = append(rows, models.AutoHoursRow{
			RoleID:         r.ID,
			RoleName:       r.Name,
			DepartmentID:   r.DepartmentID,
			DepartmentName: r.DepartmentName,
			PercentByWeek:  map[string]float64{},
		})
	}
	if len(ids) == 0 {
		return rows, nil
	}

	var cells []AutoHoursCell
	err = db.WithContext(ctx).
		Where("template_id = ? AND role_id IN ?", tid, ids).
		Find(&cells).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query auto-hours cells")
	}
	for _, c := range cells {
		rows[pos[c.RoleID]].PercentByWeek[strconv.Itoa(c.Week)] = grid.Clamp(c.Percent)
	}
	return rows, nil
}

// SaveRows writes the percent matrix of scope. Cells outside [0, weeks) are ignored,
// zero cells are removed. It returns the number of cells written.
func SaveRows(ctx context.Context, db *gorm.DB, scope models.Scope, rows []models.AutoHoursRow, weeks int) (int, error) {
	tid, err := templateKey(scope)
	if err != nil {
		return 0, err
	}
	roles, err := scopeRoles(ctx, db, scope)
	if err != nil {
		return 0, err
	}
	known := make(map[uint]bool, len(roles))
	for _, r := range roles {
		known[r.ID] = true
	}
	for _, row := range rows {
		if !known[row.RoleID] {
			return 0, errors.Wrapf(ErrUnknownRole, "role %d", row.RoleID)
		}
	}

	written := 0
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			for key, pct := range row.PercentByWeek {
				week, err := strconv.Atoi(key)
				if err != nil || week < 0 || week >= weeks {
					continue
				}
				pct = grid.Clamp(pct)
				if pct == 0 {
					err := tx.Where("template_id = ? AND role_id = ? AND week = ?", tid, row.RoleID, week).
						Delete(&AutoHoursCell{}).Error
					if err != nil {
						return errors.Wrap(err, "failed to delete auto-hours cell")
					}
					written++
					continue
				}
				err = tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "template_id"}, {Name: "role_id"}, {Name: "week"}},
					DoUpdates: clause.AssignmentColumns([]string{"percent", "updated_at"}),
				}).Create(&AutoHoursCell{
					TemplateID: tid,
					RoleID:     row.RoleID,
					Week:       week,
					Percent:    pct,
				}).Error
				if err != nil {
					return errors.Wrap(err, "failed to upsert auto-hours cell")
				}
				written++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}
