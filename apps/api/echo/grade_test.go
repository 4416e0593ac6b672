package echoapi

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursehub/core/grade"
)

func Test_gradeApi_query(t *testing.T) {
	app := newTestApp(t)
	tokens := app.tokens(t, adminID, instructor1ID, instructor2ID, tutorID, student1ID, student2ID)

	tests := []struct {
		name  string
		path  string
		token string
		want  []string
	}{
		{"student sees own", "/api/grades", tokens[student1ID], []string{"grade-1", "grade-2"}},
		{"student without grades", "/api/grades", tokens[student2ID], []string{}},
		{"student ignores user_id", "/api/grades?user_id=" + student1ID, tokens[student2ID], []string{}},
		{"instructor 1", "/api/grades", tokens[instructor1ID], []string{"grade-2"}},
		{"instructor 2", "/api/grades", tokens[instructor2ID], []string{"grade-1"}},
		{"instructor filtering outside scope", "/api/grades?course_id=course-go", tokens[instructor2ID], []string{}},
		{"tutor", "/api/grades", tokens[tutorID], []string{"grade-1", "grade-2"}},
		{"course filter", "/api/grades?course_id=course-go", tokens[adminID], []string{"grade-2"}},
		{"test filter", "/api/grades?test_id=test-go-1", tokens[student1ID], []string{"grade-2"}},
		{"user filter", "/api/grades?user_id=" + student2ID, tokens[adminID], []string{}},
		{"best first", "/api/grades?ordering=-score", tokens[student1ID], []string{"grade-1", "grade-2"}},
		{"worst first", "/api/grades?ordering=score", tokens[student1ID], []string{"grade-2", "grade-1"}},
		{"by date", "/api/grades?ordering=graded_at", tokens[student1ID], []string{"grade-2", "grade-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodGet, tt.path, tt.token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, decodeIDs(t, rec, "grades"))
		})
	}
}

func Test_gradeApi_create(t *testing.T) {
	app := newTestApp(t)
	tokens := app.tokens(t, adminID, instructor1ID, instructor2ID, tutorID, student1ID)
	newGrade := grade.NewGrade{UserID: student1ID, CourseID: "course-stats", Title: "Homework 1", Score: 18, MaxScore: 20}

	app.run(t, []httpTest{
		{name: "Student", method: http.MethodPost, path: "/api/grades", token: tokens[student1ID], body: marchallObj(t, newGrade), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Instructor of another course", method: http.MethodPost, path: "/api/grades", token: tokens[instructor1ID], body: marchallObj(t, newGrade), wantCode: http.StatusForbidden},
		{
			name: "Unknown course", method: http.MethodPost, path: "/api/grades", token: tokens[tutorID],
			body:     marchallObj(t, grade.NewGrade{UserID: student1ID, CourseID: "nope", Title: "Homework 1"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": "validation failed", "fields": map[string]string{"course_id": "unknown course"}}),
		},
		{
			name: "Unknown user", method: http.MethodPost, path: "/api/grades", token: tokens[tutorID],
			body:     marchallObj(t, grade.NewGrade{UserID: "nobody", CourseID: "course-stats", Title: "Homework 1"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": "validation failed", "fields": map[string]string{"user_id": "unknown user"}}),
		},
		{
			name: "Score above max", method: http.MethodPost, path: "/api/grades", token: tokens[tutorID],
			body: marchallObj(t, grade.NewGrade{UserID: student1ID, CourseID: "course-stats", Title: "Homework 1", Score: 21, MaxScore: 20}), wantCode: http.StatusBadRequest,
		},
		{
			name: "Title required", method: http.MethodPost, path: "/api/grades", token: tokens[tutorID],
			body:     marchallObj(t, grade.NewGrade{UserID: student1ID, CourseID: "course-stats"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": "validation failed", "fields": map[string]string{"title": "this field is required"}}),
		},
	})

	for _, id := range []string{instructor2ID, tutorID, adminID} {
		t.Run("Graded by "+id, func(t *testing.T) {
			rec := app.do(http.MethodPost, "/api/grades", tokens[id], marchallObj(t, newGrade))
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			var grd grade.Grade
			decodeObj(t, rec, "grade", &grd)
			assert.NotEmpty(t, grd.ID)
			assert.Equal(t, student1ID, grd.UserID)
			assert.Equal(t, "course-stats", grd.CourseID)
			assert.Equal(t, id, grd.GradedBy)
			assert.Equal(t, 90.0, grd.Percent())
		})
	}

	t.Run("Max score defaults to 100", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/grades", tokens[tutorID], marchallObj(t, grade.NewGrade{
			UserID: student1ID, CourseID: "course-go", Title: "Participation", Score: 75,
		}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var grd grade.Grade
		decodeObj(t, rec, "grade", &grd)
		assert.Equal(t, 100.0, grd.MaxScore)
	})
}

func Test_gradeApi_update(t *testing.T) {
	app := newTestApp(t)
	tokens := app.tokens(t, adminID, instructor1ID, instructor2ID, student1ID)
	score := func(f float64) []byte { return marchallObj(t, grade.UpdateGrade{Score: &f}) }

	app.run(t, []httpTest{
		{name: "Student", method: http.MethodPut, path: "/api/grades/grade-1", token: tokens[student1ID], body: score(100), wantCode: http.StatusForbidden},
		{name: "Instructor of another course", method: http.MethodPut, path: "/api/grades/grade-1", token: tokens[instructor1ID], body: score(100), wantCode: http.StatusForbidden},
		{name: "Unknown", method: http.MethodPut, path: "/api/grades/nope", token: tokens[adminID], body: score(1), wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "grade not found"})},
		{
			name: "Score above max", method: http.MethodPut, path: "/api/grades/grade-1", token: tokens[instructor2ID], body: score(101),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": "validation failed", "fields": map[string]string{"score": "score cannot exceed max_score"}}),
		},
	})

	t.Run("Regraded", func(t *testing.T) {
		feedback := "Solid analysis, great plots."
		s := 92.0
		rec := app.do(http.MethodPut, "/api/grades/grade-1", tokens[instructor2ID], marchallObj(t, grade.UpdateGrade{Score: &s, Feedback: &feedback}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var grd grade.Grade
		decodeObj(t, rec, "grade", &grd)
		assert.Equal(t, 92.0, grd.Score)
		assert.Equal(t, 100.0, grd.MaxScore)
		assert.Equal(t, feedback, grd.Feedback)
		assert.Equal(t, "Final project", grd.Title)
		assert.Equal(t, instructor2ID, grd.GradedBy)
	})

	t.Run("Admin rescales", func(t *testing.T) {
		maxScore := 4.0
		rec := app.do(http.MethodPut, "/api/grades/grade-2", tokens[adminID], marchallObj(t, grade.UpdateGrade{MaxScore: &maxScore}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var grd grade.Grade
		decodeObj(t, rec, "grade", &grd)
		assert.Equal(t, 25.0, grd.Percent())
	})
}

func Test_gradeApi_destroy(t *testing.T) {
	app := newTestApp(t)
	tokens := app.tokens(t, adminID, instructor1ID, student1ID)

	app.run(t, []httpTest{
		{name: "Student", method: http.MethodDelete, path: "/api/grades/grade-2", token: tokens[student1ID], wantCode: http.StatusForbidden},
		{name: "Instructor of another course", method: http.MethodDelete, path: "/api/grades/grade-1", token: tokens[instructor1ID], wantCode: http.StatusForbidden},
		{name: "Own course", method: http.MethodDelete, path: "/api/grades/grade-2", token: tokens[instructor1ID], wantCode: http.StatusNoContent},
		{name: "Gone", method: http.MethodDelete, path: "/api/grades/grade-2", token: tokens[adminID], wantCode: http.StatusNotFound},
	})

	rec := app.do(http.MethodGet, "/api/grades", tokens[student1ID])
	assert.Equal(t, []string{"grade-1"}, decodeIDs(t, rec, "grades"))
}

func Test_gradeApi_deletedCourse(t *testing.T) {
	app := newTestApp(t)
	tokens := app.tokens(t, adminID, instructor1ID, tutorID, student1ID)
	score := func(f float64) []byte { return marchallObj(t, grade.UpdateGrade{Score: &f}) }

	rec := app.do(http.MethodDelete, "/api/courses/course-go", tokens[adminID])
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// grades are kept
	rec = app.do(http.MethodGet, "/api/grades", tokens[student1ID])
	require.Equal(t, []string{"grade-1", "grade-2"}, decodeIDs(t, rec, "grades"))

	app.run(t, []httpTest{
		{name: "Student", method: http.MethodPut, path: "/api/grades/grade-2", token: tokens[student1ID], body: score(2), wantCode: http.StatusForbidden},
		{name: "Former instructor", method: http.MethodPut, path: "/api/grades/grade-2", token: tokens[instructor1ID], body: score(2), wantCode: http.StatusForbidden},
		{name: "Tutor regrades", method: http.MethodPut, path: "/api/grades/grade-2", token: tokens[tutorID], body: score(2)},
		{name: "Former instructor deletes", method: http.MethodDelete, path: "/api/grades/grade-2", token: tokens[instructor1ID], wantCode: http.StatusForbidden},
		{name: "Admin deletes", method: http.MethodDelete, path: "/api/grades/grade-2", token: tokens[adminID], wantCode: http.StatusNoContent},
	})

	rec = app.do(http.MethodGet, "/api/grades", tokens[student1ID])
	assert.Equal(t, []string{"grade-1"}, decodeIDs(t, rec, "grades"))
}
