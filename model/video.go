package model

import "time"

type Video struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"size:200;not null" validate:"required,min=2,max=200"`
	Description     string    `json:"description,omitempty" gorm:"size:2000"`
	Category        string    `json:"category,omitempty" gorm:"size:64;index"`
	PlaybackURL     string    `json:"playback_url" gorm:"size:500" validate:"required,url"`
	DurationSeconds int       `json:"duration_seconds" validate:"gte=0"`
	CourseID        *uint     `json:"course_id,omitempty" gorm:"index"`
	InstituteID     *uint     `json:"institute_id,omitempty" gorm:"index"`
	ZoneID          *uint     `json:"zone_id,omitempty" gorm:"index"`
	Active          bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}

type VideoSearchCriteria struct {
	Category    string `json:"category,omitempty"`
	CourseID    *uint  `json:"course_id,omitempty"`
	InstituteID *uint  `json:"institute_id,omitempty"`
	ZoneID      *uint  `json:"zone_id,omitempty"`
	Active      *bool  `json:"active,omitempty"`
	SearchTerm  string `json:"search_term,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
	SortBy      string `json:"sort_by,omitempty"`
	SortOrder   string `json:"sort_order,omitempty"`
}

// VideoCategoryStat is one row of the per-category breakdown behind
// GET /videos/stats.
type VideoCategoryStat struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// VideoBulkDeleteRequest deletes a set of videos in one call.
type VideoBulkDeleteRequest struct {
	IDs     []uint `json:"ids" binding:"required,min=1"`
	Partial bool   `json:"partial"`
}
