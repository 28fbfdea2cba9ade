package model

import "time"

// Institute is the tenant unit. Almost everything else in the system carries
// an institute_id and is fenced by it.
type Institute struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:200;not null" validate:"required,min=2,max=200"`
	Code      string    `json:"code" gorm:"size:32;uniqueIndex;not null" validate:"required,alphanum,max=32"`
	ZoneID    *uint     `json:"zone_id,omitempty" gorm:"index"`
	Email     string    `json:"email,omitempty" gorm:"size:200" validate:"omitempty,email"`
	Phone     string    `json:"phone,omitempty" gorm:"size:32"`
	Address   string    `json:"address,omitempty" gorm:"size:500"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Institute) TableName() string {
	return "institutes"
}

type InstituteSearchCriteria struct {
	ZoneID     *uint  `json:"zone_id,omitempty"`
	Active     *bool  `json:"active,omitempty"`
	SearchTerm string `json:"search_term,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
	SortBy     string `json:"sort_by,omitempty"`
	SortOrder  string `json:"sort_order,omitempty"`
}

// InstituteStats is the aggregate row behind GET /institutes/:id/stats.
type InstituteStats struct {
	InstituteID uint  `json:"institute_id"`
	UserCount   int64 `json:"user_count"`
	CourseCount int64 `json:"course_count"`
	VideoCount  int64 `json:"video_count"`
}

// InstituteBulkStatusRequest toggles Active on a set of institutes. Partial
// lets the caller accept applying to the authorized subset only.
type InstituteBulkStatusRequest struct {
	IDs     []uint `json:"ids" binding:"required,min=1"`
	Active  bool   `json:"active"`
	Partial bool   `json:"partial"`
}
