package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursehub/core"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

type MaterialType string

const (
	MaterialVideo    MaterialType = "video"
	MaterialDocument MaterialType = "document"
	MaterialLink     MaterialType = "link"
	MaterialText     MaterialType = "text"
)

type Course struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	InstructorID string    `json:"instructor_id"`
	Price        float64   `json:"price"`
	Status       Status    `json:"status"`
	Enrolled     int       `json:"enrolled"`
	Rating       float64   `json:"rating"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (c Course) IsPublished() bool { return c.Status == StatusPublished }

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title        string  `json:"title" validate:"required,notblank,max=200"`
	Description  string  `json:"description" validate:"max=5000"`
	Category     string  `json:"category" validate:"max=100"`
	Price        float64 `json:"price" validate:"gte=0"`
	Status       Status  `json:"status" validate:"omitempty,coursestatus"`
	InstructorID string  `json:"instructor_id"` // admins only; defaults to the creator
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Category = core.CleanString(nc.Category)
	if nc.Status == "" {
		nc.Status = StatusDraft
	}
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// nil fields are left untouched.
type UpdateCourse struct {
	Title       *string  `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Status      *Status  `json:"status" validate:"omitempty,coursestatus"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	if uc.Title != nil {
		title := core.CleanString(*uc.Title)
		uc.Title = &title
	}
	return validate.Struct(uc)
}

type QueryFilter struct {
	Search       string // case-insensitive match on Title, Description or Category
	Statuses     []Status
	InstructorID string
	Category     string
	// VisibleTo restricts results to published courses plus the ones owned by this user id.
	// empty means no restriction.
	VisibleTo string
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
}

type Material struct {
	ID        string       `json:"id"`
	CourseID  string       `json:"course_id"`
	Title     string       `json:"title"`
	Type      MaterialType `json:"type"`
	URL       string       `json:"url,omitempty"`
	Content   string       `json:"content,omitempty"`
	Order     int          `json:"order"`
	CreatedAt time.Time    `json:"created_at"`
}

type NewMaterial struct {
	Title   string       `json:"title" validate:"required,notblank,max=200"`
	Type    MaterialType `json:"type" validate:"required,materialtype"`
	URL     string       `json:"url" validate:"omitempty,url"`
	Content string       `json:"content"`
	Order   int          `json:"order" validate:"gte=0"`
}

func (nm *NewMaterial) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.URL = core.CleanString(nm.URL)
	if err := validate.Struct(nm); err != nil {
		return err
	}
	if nm.Type == MaterialText {
		if core.CleanString(nm.Content) == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "content", Error: "this field is required"})
		}
	} else if nm.URL == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "url", Error: "this field is required"})
	}
	return nil
}

type Question struct {
	Text    string   `json:"text" validate:"required,notblank"`
	Options []string `json:"options" validate:"required,min=2,dive,required"`
	Answer  int      `json:"answer" validate:"gte=0"` // index into Options
}

type Test struct {
	ID           string     `json:"id"`
	CourseID     string     `json:"course_id"`
	Title        string     `json:"title"`
	Questions    []Question `json:"questions"`
	PassingScore int        `json:"passing_score"` // percentage
	DueAt        *time.Time `json:"due_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PublicTest is a Test without its answers.
type PublicTest struct {
	ID           string           `json:"id"`
	CourseID     string           `json:"course_id"`
	Title        string           `json:"title"`
	Questions    []PublicQuestion `json:"questions"`
	PassingScore int              `json:"passing_score"`
	DueAt        *time.Time       `json:"due_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

type PublicQuestion struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

func (t Test) Public() PublicTest {
	qs := make([]PublicQuestion, len(t.Questions))
	for i, q := range t.Questions {
		qs[i] = PublicQuestion{Text: q.Text, Options: q.Options}
	}
	return PublicTest{
		ID:           t.ID,
		CourseID:     t.CourseID,
		Title:        t.Title,
		Questions:    qs,
		PassingScore: t.PassingScore,
		DueAt:        t.DueAt,
		CreatedAt:    t.CreatedAt,
	}
}

type NewTest struct {
	Title        string     `json:"title" validate:"required,notblank,max=200"`
	Questions    []Question `json:"questions" validate:"required,min=1,dive"`
	PassingScore int        `json:"passing_score" validate:"gte=0,lte=100"`
	DueAt        *time.Time `json:"due_at"`
}

func (nt *NewTest) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	if err := validate.Struct(nt); err != nil {
		return err
	}
	for _, q := range nt.Questions {
		if q.Answer >= len(q.Options) {
			return core.NewValidationError(nil, core.FieldError{Field: "questions", Error: "answer must be the index of one of the options"})
		}
	}
	return nil
}

// Submission holds a student's answers to a Test, one option index per question.
type Submission struct {
	Answers []int `json:"answers" validate:"required"`
}

// Result is the outcome of scoring a Submission.
type Result struct {
	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	Score   int  `json:"score"` // percentage
	Passed  bool `json:"passed"`
}

// Score grades the answers against the Test. Missing answers count as wrong.
func (t Test) Score(sub Submission) Result {
	res := Result{Total: len(t.Questions)}
	for i, q := range t.Questions {
		if i < len(sub.Answers) && sub.Answers[i] == q.Answer {
			res.Correct++
		}
	}
	if res.Total > 0 {
		res.Score = res.Correct * 100 / res.Total
	}
	res.Passed = res.Score >= t.PassingScore
	return res
}
