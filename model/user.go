package model

import "time"

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:200;not null" validate:"required,min=2,max=200"`
	Email       string    `json:"email" gorm:"size:200;uniqueIndex;not null" validate:"required,email"`
	Role        string    `json:"role" gorm:"size:32;index;not null" validate:"required"`
	InstituteID *uint     `json:"institute_id,omitempty" gorm:"index"`
	ZoneID      *uint     `json:"zone_id,omitempty" gorm:"index"`
	Phone       string    `json:"phone,omitempty" gorm:"size:32"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

type UserSearchCriteria struct {
	Role        string     `json:"role,omitempty"`
	InstituteID *uint      `json:"institute_id,omitempty"`
	ZoneID      *uint      `json:"zone_id,omitempty"`
	Active      *bool      `json:"active,omitempty"`
	SearchTerm  string     `json:"search_term,omitempty"`
	FromDate    *time.Time `json:"from_date,omitempty"`
	ToDate      *time.Time `json:"to_date,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Offset      int        `json:"offset,omitempty"`
	SortBy      string     `json:"sort_by,omitempty"`
	SortOrder   string     `json:"sort_order,omitempty"`
}

// UserBulkDeactivateRequest deactivates a set of users in one call.
type UserBulkDeactivateRequest struct {
	IDs     []uint `json:"ids" binding:"required,min=1"`
	Partial bool   `json:"partial"`
}
