package database

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(ErrNotFound, what)
	}
	return errors.Wrapf(err, "failed to get %s", what)
}

// CreateDepartment inserts d
func CreateDepartment(ctx context.Context, db *gorm.DB, d *Department) error {
	return errors.Wrap(db.WithContext(ctx).Create(d).Error, "failed to create department")
}

// ListDepartments returns departments ordered by name
func ListDepartments(ctx context.Context, db *gorm.DB) ([]Department, error) {
	var out []Department
	err := db.WithContext(ctx).Order("name").Find(&out).Error
	return out, errors.Wrap(err, "failed to list departments")
}

// GetDepartment returns ErrNotFound for an unknown id
func GetDepartment(ctx context.Context, db *gorm.DB, id uint) (*Department, error) {
	var d Department
	if err := db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, notFound(err, "department")
	}
	return &d, nil
}

// CreateRole adds a role to an existing department
func CreateRole(ctx context.Context, db *gorm.DB, r *Role) error {
	if _, err := GetDepartment(ctx, db, r.DepartmentID); err != nil {
		return err
	}
	return errors.Wrap(db.WithContext(ctx).Create(r).Error, "failed to create role")
}

// ListRoles returns roles in grid order, optionally limited to one department
func ListRoles(ctx context.Context, db *gorm.DB, departmentID uint) ([]Role, error) {
	q := db.WithContext(ctx).Order("department_id, sort_order, id")
	if departmentID != 0 {
		q = q.Where("department_id = ?", departmentID)
	}
	var out []Role
	err := q.Find(&out).Error
	return out, errors.Wrap(err, "failed to list roles")
}

// CreateTemplate inserts t
func CreateTemplate(ctx context.Context, db *gorm.DB, t *AutoHoursTemplate) error {
	return errors.Wrap(db.WithContext(ctx).Create(t).Error, "failed to create template")
}

// ListTemplates returns templates ordered by name
func ListTemplates(ctx context.Context, db *gorm.DB) ([]AutoHoursTemplate, error) {
	var out []AutoHoursTemplate
	err := db.WithContext(ctx).Order("name").Find(&out).Error
	return out, errors.Wrap(err, "failed to list templates")
}

// GetTemplate returns ErrNotFound for an unknown id
func GetTemplate(ctx context.Context, db *gorm.DB, id uint) (*AutoHoursTemplate, error) {
	var t AutoHoursTemplate
	if err := db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err, "template")
	}
	return &t, nil
}

// DeleteTemplate removes a template and its cells
func DeleteTemplate(ctx context.Context, db *gorm.DB, id uint) error {
	if _, err := GetTemplate(ctx, db, id); err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&AutoHoursCell{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete template cells")
		}
		return errors.Wrap(tx.Delete(&AutoHoursTemplate{}, id).Error, "failed to delete template")
	})
}
