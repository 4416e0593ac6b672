package grade

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursehub/core"
)

type Grade struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	CourseID string    `json:"course_id"`
	TestID   string    `json:"test_id,omitempty"`
	Title    string    `json:"title"`
	Score    float64   `json:"score"`
	MaxScore float64   `json:"max_score"`
	Feedback string    `json:"feedback"`
	GradedBy string    `json:"graded_by"`
	GradedAt time.Time `json:"graded_at"` // UTC
}

// Percent returns the score as a percentage of MaxScore.
func (g Grade) Percent() float64 {
	if g.MaxScore <= 0 {
		return 0
	}
	return g.Score * 100 / g.MaxScore
}

type NewGrade struct {
	UserID   string  `json:"user_id" validate:"required,notblank"`
	CourseID string  `json:"course_id" validate:"required,notblank"`
	TestID   string  `json:"test_id"`
	Title    string  `json:"title" validate:"required,notblank,max=200"`
	Score    float64 `json:"score" validate:"gte=0,ltefield=MaxScore"`
	MaxScore float64 `json:"max_score" validate:"gt=0"`
	Feedback string  `json:"feedback" validate:"max=5000"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Title = core.CleanString(ng.Title)
	ng.UserID = core.CleanString(ng.UserID)
	ng.CourseID = core.CleanString(ng.CourseID)
	if ng.MaxScore == 0 {
		ng.MaxScore = 100
	}
	return validate.Struct(ng)
}

// UpdateGrade: nil fields are left untouched.
type UpdateGrade struct {
	Title    *string  `json:"title" validate:"omitempty,notblank,max=200"`
	Score    *float64 `json:"score" validate:"omitempty,gte=0"`
	MaxScore *float64 `json:"max_score" validate:"omitempty,gt=0"`
	Feedback *string  `json:"feedback" validate:"omitempty,max=5000"`
}

func (ug *UpdateGrade) Validate(orig Grade, validate *validator.Validate) error {
	if ug.Title != nil {
		title := core.CleanString(*ug.Title)
		ug.Title = &title
	}
	if err := validate.Struct(ug); err != nil {
		return err
	}
	score, maxScore := orig.Score, orig.MaxScore
	if ug.Score != nil {
		score = *ug.Score
	}
	if ug.MaxScore != nil {
		maxScore = *ug.MaxScore
	}
	if score > maxScore {
		return core.NewValidationError(nil, core.FieldError{Field: "score", Error: "score cannot exceed max_score"})
	}
	return nil
}

type QueryFilter struct {
	UserID    string
	CourseIDs []string // courses to include; nil means any
	CourseID  string
	TestID    string
}
