package errors

import "errors"

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrCourseConflict    = errors.New("course conflict")
	ErrInvalidCourseData = errors.New("invalid course data")

	ErrVideoNotFound    = errors.New("video not found")
	ErrVideoConflict    = errors.New("video conflict")
	ErrInvalidVideoData = errors.New("invalid video data")
)
