package model

import "time"

// Zone is the regional unit. Institutes hang off zones, and zonal admins are
// scoped to exactly one of these.
type Zone struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:120;not null" validate:"required,min=2,max=120"`
	Code      string    `json:"code" gorm:"size:32;uniqueIndex;not null" validate:"required,alphanum,max=32"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Zone) TableName() string {
	return "zones"
}

type ZoneSearchCriteria struct {
	Active     *bool  `json:"active,omitempty"`
	SearchTerm string `json:"search_term,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
	SortBy     string `json:"sort_by,omitempty"`
	SortOrder  string `json:"sort_order,omitempty"`
}
