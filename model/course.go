package model

import "time"

// Course carries a denormalized ZoneID copied from its institute at write
// time, so zonal scoping never needs a join.
type Course struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:200;not null" validate:"required,min=2,max=200"`
	Description string    `json:"description,omitempty" gorm:"size:2000"`
	Category    string    `json:"category,omitempty" gorm:"size:64;index"`
	InstituteID *uint     `json:"institute_id,omitempty" gorm:"index"`
	ZoneID      *uint     `json:"zone_id,omitempty" gorm:"index"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseSearchCriteria struct {
	Category    string `json:"category,omitempty"`
	InstituteID *uint  `json:"institute_id,omitempty"`
	ZoneID      *uint  `json:"zone_id,omitempty"`
	Active      *bool  `json:"active,omitempty"`
	SearchTerm  string `json:"search_term,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
	SortBy      string `json:"sort_by,omitempty"`
	SortOrder   string `json:"sort_order,omitempty"`
}
