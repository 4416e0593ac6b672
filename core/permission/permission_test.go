package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/coursehub/core/calendar"
	"github.com/trezcool/coursehub/core/chat"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/user"
)

var (
	admin      = user.User{ID: "a", Role: user.RoleAdmin, IsActive: true}
	instructor = user.User{ID: "i", Role: user.RoleInstructor, IsActive: true}
	colleague  = user.User{ID: "i2", Role: user.RoleInstructor, IsActive: true}
	tutor      = user.User{ID: "t", Role: user.RoleTutor, IsActive: true}
	student    = user.User{ID: "s", Role: user.RoleStudent, IsActive: true}
	inactive   = user.User{ID: "x", Role: user.RoleAdmin}
)

func TestForRole(t *testing.T) {
	tests := []struct {
		role user.Role
		want Permissions
	}{
		{user.RoleStudent, Permissions{CanEnroll: true}},
		{user.RoleTutor, Permissions{CanGrade: true, CanViewAnalytics: true}},
		{user.RoleInstructor, Permissions{CanCreateCourse: true, CanPublishCourse: true, CanGrade: true, CanViewAnalytics: true}},
		{user.RoleAdmin, Permissions{
			CanCreateCourse: true, CanEditAnyCourse: true, CanDeleteAnyCourse: true, CanPublishCourse: true, CanGrade: true,
			CanViewAnalytics: true, CanManageUsers: true, CanManageAllEvents: true, CanViewAllChats: true,
		}},
		{"janitor", Permissions{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, ForRole(tt.role))
		})
	}
}

func TestFor(t *testing.T) {
	assert.Equal(t, ForRole(user.RoleAdmin), For(admin))
	assert.Equal(t, Permissions{}, For(inactive))
}

func TestCoursePredicates(t *testing.T) {
	published := course.Course{ID: "c1", InstructorID: instructor.ID, Status: course.StatusPublished, Enrolled: 3}
	draft := course.Course{ID: "c2", InstructorID: instructor.ID, Status: course.StatusDraft}

	tests := []struct {
		name string
		fn   func(user.User, course.Course) bool
		crs  course.Course
		want map[string]bool // by user id
	}{
		{"view published", CanViewCourse, published, map[string]bool{"a": true, "i": true, "i2": true, "t": true, "s": true, "x": true}},
		{"view draft", CanViewCourse, draft, map[string]bool{"a": true, "i": true, "i2": false, "t": true, "s": false, "x": false}},
		{"edit", CanEditCourse, published, map[string]bool{"a": true, "i": true, "i2": false, "t": false, "s": false, "x": false}},
		{"delete with students", CanDeleteCourse, published, map[string]bool{"a": true, "i": false, "i2": false, "t": false, "s": false, "x": false}},
		{"delete empty", CanDeleteCourse, draft, map[string]bool{"a": true, "i": true, "i2": false, "t": false, "s": false, "x": false}},
		{"publish", CanPublishCourse, draft, map[string]bool{"a": true, "i": true, "i2": false, "t": false, "s": false, "x": false}},
		{"enroll published", CanEnrollInCourse, published, map[string]bool{"a": false, "i": false, "i2": false, "t": false, "s": true, "x": false}},
		{"enroll draft", CanEnrollInCourse, draft, map[string]bool{"a": false, "i": false, "i2": false, "t": false, "s": false, "x": false}},
		{"grade", CanGradeCourse, published, map[string]bool{"a": true, "i": true, "i2": false, "t": true, "s": false, "x": false}},
		{"view enrollments", CanViewEnrollments, published, map[string]bool{"a": true, "i": true, "i2": false, "t": true, "s": false, "x": false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, usr := range []user.User{admin, instructor, colleague, tutor, student, inactive} {
				assert.Equal(t, tt.want[usr.ID], tt.fn(usr, tt.crs), "user %s (%s)", usr.ID, usr.Role)
			}
		})
	}
}

func TestCanViewCourseContent(t *testing.T) {
	crs := course.Course{ID: "c1", InstructorID: instructor.ID, Status: course.StatusPublished}

	assert.True(t, CanViewCourseContent(instructor, crs, false))
	assert.True(t, CanViewCourseContent(tutor, crs, false))
	assert.True(t, CanViewCourseContent(admin, crs, false))
	assert.False(t, CanViewCourseContent(colleague, crs, false))
	assert.False(t, CanViewCourseContent(student, crs, false))
	assert.True(t, CanViewCourseContent(student, crs, true))

	lapsed := student
	lapsed.IsActive = false
	assert.False(t, CanViewCourseContent(lapsed, crs, true))
}

func TestCanManageEvent(t *testing.T) {
	evt := calendar.Event{ID: "e1", OwnerID: student.ID}

	assert.True(t, CanManageEvent(student, evt))
	assert.True(t, CanManageEvent(admin, evt))
	assert.False(t, CanManageEvent(instructor, evt))
	assert.False(t, CanManageEvent(tutor, evt))
	assert.False(t, CanManageEvent(user.User{}, calendar.Event{}))
	assert.False(t, CanManageEvent(inactive, calendar.Event{ID: "e2", OwnerID: inactive.ID}))

	gone := student
	gone.IsActive = false
	assert.False(t, CanManageEvent(gone, evt))
}

func TestCanAccessChat(t *testing.T) {
	ch := chat.Chat{ID: "c1", ParticipantIDs: []string{student.ID, tutor.ID}}

	assert.True(t, CanAccessChat(student, ch))
	assert.True(t, CanAccessChat(tutor, ch))
	assert.True(t, CanAccessChat(admin, ch))
	assert.False(t, CanAccessChat(instructor, ch))
	assert.False(t, CanAccessChat(inactive, ch))

	gone := student
	gone.IsActive = false
	assert.False(t, CanAccessChat(gone, ch))
}
