package course

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursehub/core"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestTest_Score(t *testing.T) {
	tst := Test{
		PassingScore: 60,
		Questions: []Question{
			{Text: "1", Options: []string{"a", "b"}, Answer: 0},
			{Text: "2", Options: []string{"a", "b"}, Answer: 1},
			{Text: "3", Options: []string{"a", "b", "c"}, Answer: 2},
		},
	}

	tests := []struct {
		name    string
		answers []int
		want    Result
	}{
		{"all right", []int{0, 1, 2}, Result{Correct: 3, Total: 3, Score: 100, Passed: true}},
		{"two thirds", []int{0, 1, 0}, Result{Correct: 2, Total: 3, Score: 66, Passed: true}},
		{"one third", []int{1, 1, 1}, Result{Correct: 1, Total: 3, Score: 33}},
		{"missing answers count as wrong", []int{0}, Result{Correct: 1, Total: 3, Score: 33}},
		{"extra answers ignored", []int{0, 1, 2, 2}, Result{Correct: 3, Total: 3, Score: 100, Passed: true}},
		{"none", nil, Result{Total: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tst.Score(Submission{Answers: tt.answers}))
		})
	}

	assert.Equal(t, Result{Passed: true}, Test{}.Score(Submission{}))
}

func TestTest_Public(t *testing.T) {
	tst := Test{ID: "t1", CourseID: "c1", Title: "Quiz", PassingScore: 50, Questions: []Question{
		{Text: "Which keyword starts a goroutine?", Options: []string{"go", "async"}, Answer: 0},
	}}

	pub := tst.Public()
	assert.Equal(t, "t1", pub.ID)
	assert.Equal(t, "c1", pub.CourseID)
	assert.Equal(t, 50, pub.PassingScore)
	assert.Equal(t, []PublicQuestion{{Text: "Which keyword starts a goroutine?", Options: []string{"go", "async"}}}, pub.Questions)
}

func TestNewCourse_Validate(t *testing.T) {
	validate := newValidator()

	nc := NewCourse{Title: "  Practical Go  ", Category: " Programming "}
	require.NoError(t, nc.Validate(validate))
	assert.Equal(t, "Practical Go", nc.Title)
	assert.Equal(t, "Programming", nc.Category)
	assert.Equal(t, StatusDraft, nc.Status)

	nc = NewCourse{Title: "Practical Go", Status: "live"}
	var valErrs validator.ValidationErrors
	require.True(t, errors.As(nc.Validate(validate), &valErrs))
	assert.Equal(t, "status", valErrs[0].Field())
}

func TestNewMaterial_Validate(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name      string
		nm        NewMaterial
		wantField string
	}{
		{"video", NewMaterial{Title: "Intro", Type: MaterialVideo, URL: "https://videos.coursehub.dev/intro.mp4"}, ""},
		{"text", NewMaterial{Title: "Notes", Type: MaterialText, Content: "Read chapter 1"}, ""},
		{"text without content", NewMaterial{Title: "Notes", Type: MaterialText, Content: "  "}, "content"},
		{"link without url", NewMaterial{Title: "Docs", Type: MaterialLink}, "url"},
		{"bad url", NewMaterial{Title: "Docs", Type: MaterialLink, URL: "not a url"}, "url"},
		{"unknown type", NewMaterial{Title: "Docs", Type: "podcast", URL: "https://a.b"}, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nm.Validate(validate)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var valErrs validator.ValidationErrors
			if errors.As(err, &valErrs) {
				assert.Equal(t, tt.wantField, valErrs[0].Field())
				return
			}
			var appErr *core.ValidationError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantField, appErr.Fields[0].Field)
		})
	}
}

func TestNewTest_Validate(t *testing.T) {
	validate := newValidator()

	nt := NewTest{Title: "Quiz", Questions: []Question{{Text: "?", Options: []string{"a", "b"}, Answer: 1}}}
	assert.NoError(t, nt.Validate(validate))

	nt = NewTest{Title: "Quiz", Questions: []Question{{Text: "?", Options: []string{"a", "b"}, Answer: 2}}}
	var appErr *core.ValidationError
	require.True(t, errors.As(nt.Validate(validate), &appErr))
	assert.Equal(t, "questions", appErr.Fields[0].Field)

	nt = NewTest{Title: "Quiz", Questions: []Question{{Text: "?", Options: []string{"a"}}}}
	assert.Error(t, nt.Validate(validate))

	nt = NewTest{Title: "Quiz"}
	assert.Error(t, nt.Validate(validate))
}
