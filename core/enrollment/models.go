package enrollment

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const progressComplete = 100

type Enrollment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CourseID   string    `json:"course_id"`
	Progress   int       `json:"progress"` // 0..100
	Completed  bool      `json:"completed"`
	EnrolledAt time.Time `json:"enrolled_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"`  // UTC
}

// SetProgress sets the progress percentage, completing the enrollment at 100.
func (e *Enrollment) SetProgress(progress int) {
	e.Progress = progress
	e.Completed = progress >= progressComplete
}

type NewEnrollment struct {
	CourseID string `json:"course_id" validate:"required,notblank"`
	// UserID lets admins enroll someone else.
	UserID string `json:"user_id"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	return validate.Struct(ne)
}

type UpdateProgress struct {
	Progress *int `json:"progress" validate:"required,gte=0,lte=100"`
}

func (up *UpdateProgress) Validate(validate *validator.Validate) error {
	return validate.Struct(up)
}

type QueryFilter struct {
	UserID    string
	CourseIDs []string // courses to include; nil means any
	Completed *bool
}
