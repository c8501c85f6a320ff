package models

import (
	"strconv"
	"time"
)

// AutoHoursRow is one role's share of a deliverable's hours, per week before the deliverable.
type AutoHoursRow struct {
	RoleID         uint               `json:"role_id"`
	RoleName       string             `json:"role_name"`
	DepartmentID   uint               `json:"department_id"`
	DepartmentName string             `json:"department_name,omitempty"`
	PercentByWeek  map[string]float64 `json:"percent_by_week"`
}

// Key is the row key the grid addresses this role by
func (r AutoHoursRow) Key() string {
	return strconv.FormatUint(uint64(r.RoleID), 10)
}

// ScopeKind tells which percent matrix a request targets
type ScopeKind string

const (
	ScopeDepartment ScopeKind = "department"
	ScopeTemplate   ScopeKind = "template"
)

// Scope identifies one editable percent matrix
type Scope struct {
	Kind         ScopeKind `json:"scope" binding:"required,oneof=department template"`
	DepartmentID uint      `json:"department_id,omitempty"`
	TemplateID   uint      `json:"template_id,omitempty"`
}

// GridEvent is a raw pointer or keyboard event forwarded by the presentation layer
type GridEvent struct {
	Type       string   `json:"type" binding:"required"`
	Row        string   `json:"row,omitempty"`
	Week       string   `json:"week,omitempty"`
	Shift      bool     `json:"shift,omitempty"`
	Ctrl       bool     `json:"ctrl,omitempty"`
	Key        string   `json:"key,omitempty"`
	InEditable bool     `json:"in_editable,omitempty"`
	Value      *float64 `json:"value,omitempty"`
}

// EventBatch is the body of the session events endpoint
type EventBatch struct {
	Events []GridEvent `json:"events" binding:"required,dive"`
}

// CellRef names a single grid cell
type CellRef struct {
	Row  string `json:"row"`
	Week string `json:"week"`
}

// TypingState reports the bulk-edit buffer
type TypingState struct {
	Active bool   `json:"active"`
	Buffer string `json:"buffer"`
}

// GridSnapshot is what a grid session returns after every call
type GridSnapshot struct {
	SessionID string         `json:"session_id"`
	Scope     Scope          `json:"scope"`
	Weeks     []string       `json:"weeks"`
	Rows      []AutoHoursRow `json:"rows"`
	Selected  []string       `json:"selected"`
	Anchor    *CellRef       `json:"anchor,omitempty"`
	Dragging  bool           `json:"dragging"`
	Typing    TypingState    `json:"typing"`
}

// SettingsPayload is the body of the settings save endpoints
type SettingsPayload struct {
	Rows []AutoHoursRow `json:"rows" binding:"required"`
}

// SettingsResponse is a percent matrix with its week columns
type SettingsResponse struct {
	Scope Scope          `json:"scope"`
	Weeks []string       `json:"weeks"`
	Rows  []AutoHoursRow `json:"rows"`
}

// PreviewInput asks for a time-phased allocation of role hours ahead of a deliverable
type PreviewInput struct {
	Scope       Scope            `json:"scope" binding:"required"`
	Due         time.Time        `json:"due" binding:"required"`
	HoursByRole map[uint]float64 `json:"hours_by_role"`
}

// WeeklyHours is one role's allocated hours for one calendar week
type WeeklyHours struct {
	RoleID     uint      `json:"role_id"`
	WeekOffset int       `json:"week_offset"`
	WeekStart  time.Time `json:"week_start"`
	Percent    float64   `json:"percent"`
	Hours      float64   `json:"hours"`
}

// PreviewResponse is the data structure for the allocation preview
type PreviewResponse struct {
	Weeks      []WeeklyHours    `json:"weeks"`
	TotalHours float64          `json:"total_hours"`
	ByRole     map[uint]float64 `json:"by_role"`
}
