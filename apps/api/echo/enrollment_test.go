package echoapi

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursehub/core/enrollment"
)

func Test_enrollmentApi_query(t *testing.T) {
	app := newTestApp(t)
	tokens := app.tokens(t, adminID, instructor1ID, instructor2ID, tutorID, student1ID, student2ID)

	tests := []struct {
		name  string
		path  string
		token string
		want  []string
	}{
		{"student sees own", "/api/enrollments", tokens[student1ID], []string{"enrollment-1", "enrollment-2"}},
		{"student ignores user_id", "/api/enrollments?user_id=" + student2ID, tokens[student1ID], []string{"enrollment-1", "enrollment-2"}},
		{"student completed", "/api/enrollments?completed=true", tokens[student1ID], []string{"enrollment-2"}},
		{"student by course", "/api/enrollments?course_id=course-go", tokens[student2ID], []string{"enrollment-3"}},
		{"instructor sees own courses", "/api/enrollments", tokens[instructor1ID], []string{"enrollment-1", "enrollment-3"}},
		{"instructor by user", "/api/enrollments?user_id=" + student1ID, tokens[instructor2ID], []string{"enrollment-2"}},
		{"instructor outside scope", "/api/enrollments?course_id=course-go", tokens[instructor2ID], []string{}},
		{"tutor sees all", "/api/enrollments", tokens[tutorID], []string{"enrollment-1", "enrollment-2", "enrollment-3"}},
		{"admin filters", "/api/enrollments?user_id=" + student1ID + "&completed=false", tokens[adminID], []string{"enrollment-1"}},
		{"ordering", "/api/enrollments?ordering=-progress", tokens[adminID], []string{"enrollment-2", "enrollment-1", "enrollment-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodGet, tt.path, tt.token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, decodeIDs(t, rec, "enrollments"))
		})
	}
}

func Test_enrollmentApi_create(t *testing.T) {
	app := newTestApp(t)
	tokens := app.tokens(t, adminID, instructor1ID, student1ID, student2ID)

	app.run(t, []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/api/enrollments", body: marchallObj(t, enrollment.NewEnrollment{CourseID: "course-stats"}), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Course required", method: http.MethodPost, path: "/api/enrollments", token: tokens[student2ID], body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": "validation failed", "fields": map[string]string{"course_id": "this field is required"}}),
		},
		{
			name: "Already enrolled", method: http.MethodPost, path: "/api/enrollments", token: tokens[student1ID],
			body: marchallObj(t, enrollment.NewEnrollment{CourseID: "course-go"}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "already enrolled in this course"}),
		},
		{
			name: "Instructors cannot enroll", method: http.MethodPost, path: "/api/enrollments", token: tokens[instructor1ID],
			body: marchallObj(t, enrollment.NewEnrollment{CourseID: "course-stats"}), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Draft course", method: http.MethodPost, path: "/api/enrollments", token: tokens[student2ID],
			body: marchallObj(t, enrollment.NewEnrollment{CourseID: "course-distsys"}), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "Archived course", method: http.MethodPost, path: "/api/enrollments", token: tokens[student2ID],
			body: marchallObj(t, enrollment.NewEnrollment{CourseID: "course-legacy"}), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "Unknown course", method: http.MethodPost, path: "/api/enrollments", token: tokens[student2ID],
			body: marchallObj(t, enrollment.NewEnrollment{CourseID: "nope"}), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "Students cannot enroll others", method: http.MethodPost, path: "/api/enrollments", token: tokens[student1ID],
			body: marchallObj(t, enrollment.NewEnrollment{CourseID: "course-stats", UserID: student2ID}), wantCode: http.StatusForbidden,
		},
		{
			name: "Admin enrolls unknown user", method: http.MethodPost, path: "/api/enrollments", token: tokens[adminID],
			body:     marchallObj(t, enrollment.NewEnrollment{CourseID: "course-stats", UserID: "nobody"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echo.Map{"error": "validation failed", "fields": map[string]string{"user_id": "unknown user"}}),
		},
	})

	t.Run("Enrolled", func(t *testing.T) {
		app.mail.Reset()
		before := app.getCourse(t, "course-stats").Enrolled

		rec := app.do(http.MethodPost, "/api/enrollments", tokens[student2ID], marchallObj(t, enrollment.NewEnrollment{CourseID: "course-stats"}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var enr enrollment.Enrollment
		decodeObj(t, rec, "enrollment", &enr)
		assert.NotEmpty(t, enr.ID)
		assert.Equal(t, student2ID, enr.UserID)
		assert.Equal(t, "course-stats", enr.CourseID)
		assert.Zero(t, enr.Progress)
		assert.False(t, enr.Completed)
		assert.Equal(t, before+1, app.getCourse(t, "course-stats").Enrolled)

		sent := app.mail.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "ken@coursehub.dev", sent[0].To[0].Address)
		assert.Equal(t, "Enrollment confirmed: Statistics for Data Science", sent[0].Subject)

		// twice is once too many
		rec = app.do(http.MethodPost, "/api/enrollments", tokens[student2ID], marchallObj(t, enrollment.NewEnrollment{CourseID: "course-stats"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, before+1, app.getCourse(t, "course-stats").Enrolled)
	})

	t.Run("Admin enrolls a student", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/enrollments", tokens[adminID], marchallObj(t, enrollment.NewEnrollment{CourseID: "course-stats", UserID: student1ID}))
		assert.Equal(t, http.StatusBadRequest, rec.Code) // already enrolled

		rec = app.do(http.MethodPost, "/api/enrollments", tokens[adminID], marchallObj(t, enrollment.NewEnrollment{CourseID: "course-distsys", UserID: student1ID}))
		assert.Equal(t, http.StatusForbidden, rec.Code) // still a draft
	})
}

func Test_enrollmentApi_updateProgress(t *testing.T) {
	app := newTestApp(t)
	tokens := app.tokens(t, adminID, instructor1ID, student1ID, student2ID)
	progress := func(p int) []byte { return marchallObj(t, enrollment.UpdateProgress{Progress: &p}) }

	app.run(t, []httpTest{
		{name: "Someone else's", method: http.MethodPut, path: "/api/enrollments/enrollment-1/progress", token: tokens[student2ID], body: progress(50), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Instructor", method: http.MethodPut, path: "/api/enrollments/enrollment-1/progress", token: tokens[instructor1ID], body: progress(50), wantCode: http.StatusForbidden},
		{name: "Out of range", method: http.MethodPut, path: "/api/enrollments/enrollment-1/progress", token: tokens[student1ID], body: progress(101), wantCode: http.StatusBadRequest},
		{name: "Negative", method: http.MethodPut, path: "/api/enrollments/enrollment-1/progress", token: tokens[student1ID], body: progress(-1), wantCode: http.StatusBadRequest},
		{name: "Missing", method: http.MethodPut, path: "/api/enrollments/enrollment-1/progress", token: tokens[student1ID], body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{name: "Unknown", method: http.MethodPut, path: "/api/enrollments/nope/progress", token: tokens[student1ID], body: progress(50), wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "enrollment not found"})},
	})

	t.Run("Progress", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/api/enrollments/enrollment-1/progress", tokens[student1ID], progress(75))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var enr enrollment.Enrollment
		decodeObj(t, rec, "enrollment", &enr)
		assert.Equal(t, 75, enr.Progress)
		assert.False(t, enr.Completed)
	})

	t.Run("Completed at 100", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/api/enrollments/enrollment-1/progress", tokens[student1ID], progress(100))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var enr enrollment.Enrollment
		decodeObj(t, rec, "enrollment", &enr)
		assert.Equal(t, 100, enr.Progress)
		assert.True(t, enr.Completed)
	})

	t.Run("Admin resets", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/api/enrollments/enrollment-1/progress", tokens[adminID], progress(0))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var enr enrollment.Enrollment
		decodeObj(t, rec, "enrollment", &enr)
		assert.Zero(t, enr.Progress)
		assert.False(t, enr.Completed)
	})
}

func Test_enrollmentApi_destroy(t *testing.T) {
	app := newTestApp(t)
	tokens := app.tokens(t, adminID, student1ID, student2ID)
	before := app.getCourse(t, "course-go").Enrolled

	app.run(t, []httpTest{
		{name: "Someone else's", method: http.MethodDelete, path: "/api/enrollments/enrollment-1", token: tokens[student2ID], wantCode: http.StatusForbidden},
		{name: "Unenrolled", method: http.MethodDelete, path: "/api/enrollments/enrollment-1", token: tokens[student1ID], wantCode: http.StatusNoContent},
		{name: "Gone", method: http.MethodDelete, path: "/api/enrollments/enrollment-1", token: tokens[student1ID], wantCode: http.StatusNotFound},
		{name: "Admin unenrolls anyone", method: http.MethodDelete, path: "/api/enrollments/enrollment-3", token: tokens[adminID], wantCode: http.StatusNoContent},
	})
	assert.Equal(t, before-2, app.getCourse(t, "course-go").Enrolled)

	rec := app.do(http.MethodGet, "/api/enrollments", tokens[student1ID])
	assert.Equal(t, []string{"enrollment-2"}, decodeIDs(t, rec, "enrollments"))
}
