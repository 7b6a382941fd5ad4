package models

import "time"

type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Location  string    `json:"location"`
	Status    string    `gorm:"not null;default:'active'" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Milestone is the unit of budget tracking. A milestone is linked to one RAB
// category of its project; the persisted workflow snapshot is the aggregate
// the procurement stages were last derived from (refreshed by sync, returned
// as-is on reads).
type Milestone struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ProjectID       uint       `gorm:"not null;index" json:"projectId"`
	Title           string     `gorm:"not null" json:"title"`
	Budget          int64      `gorm:"not null;default:0" json:"budget"`
	CategoryName    string     `gorm:"index" json:"categoryName"`
	CategoryEnabled bool       `gorm:"not null;default:true" json:"categoryEnabled"`
	WorkflowJSON    string     `gorm:"type:text" json:"-"`
	Progress        int        `gorm:"not null;default:0" json:"progress"`
	LastSynced      *time.Time `json:"lastSynced"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
