// Package permission derives what a user may do from their role and from
// their relationship (ownership, participation) with the resource at hand.
package permission

import (
	"errors"

	"github.com/trezcool/coursehub/core/calendar"
	"github.com/trezcool/coursehub/core/chat"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/user"
)

var ErrForbidden = errors.New("permission denied")

type Permissions struct {
	CanCreateCourse    bool `json:"can_create_course"`
	CanEditAnyCourse   bool `json:"can_edit_any_course"`
	CanDeleteAnyCourse bool `json:"can_delete_any_course"`
	CanPublishCourse   bool `json:"can_publish_course"`
	CanEnroll          bool `json:"can_enroll"`
	CanGrade           bool `json:"can_grade"`
	CanViewAnalytics   bool `json:"can_view_analytics"`
	CanManageUsers     bool `json:"can_manage_users"`
	CanManageAllEvents bool `json:"can_manage_all_events"`
	CanViewAllChats    bool `json:"can_view_all_chats"`
}

var rolePermissions = map[user.Role]Permissions{
	user.RoleStudent: {
		CanEnroll: true,
	},
	user.RoleTutor: {
		CanGrade:         true,
		CanViewAnalytics: true,
	},
	user.RoleInstructor: {
		CanCreateCourse:  true,
		CanPublishCourse: true,
		CanGrade:         true,
		CanViewAnalytics: true,
	},
	user.RoleAdmin: {
		CanCreateCourse:    true,
		CanEditAnyCourse:   true,
		CanDeleteAnyCourse: true,
		CanPublishCourse:   true,
		CanGrade:           true,
		CanViewAnalytics:   true,
		CanManageUsers:     true,
		CanManageAllEvents: true,
		CanViewAllChats:    true,
	},
}

// ForRole returns the fixed permission set of role. Unknown roles get nothing.
func ForRole(role user.Role) Permissions {
	return rolePermissions[role]
}

// For returns the permissions of an active user. Inactive users get nothing.
func For(usr user.User) Permissions {
	if !usr.IsActive {
		return Permissions{}
	}
	return ForRole(usr.Role)
}

func owns(usr user.User, crs course.Course) bool {
	return usr.ID != "" && usr.ID == crs.InstructorID
}

// CanViewCourse: published courses are public; drafts and archives are visible to
// their instructor, tutors and admins.
func CanViewCourse(usr user.User, crs course.Course) bool {
	if crs.IsPublished() {
		return true
	}
	perms := For(usr)
	return perms.CanEditAnyCourse || usr.IsTutor() || owns(usr, crs)
}

func CanEditCourse(usr user.User, crs course.Course) bool {
	perms := For(usr)
	return perms.CanEditAnyCourse || (perms.CanCreateCourse && owns(usr, crs))
}

// CanDeleteCourse: instructors may only delete their own courses nobody is enrolled in.
func CanDeleteCourse(usr user.User, crs course.Course) bool {
	perms := For(usr)
	return perms.CanDeleteAnyCourse || (perms.CanCreateCourse && owns(usr, crs) && crs.Enrolled == 0)
}

// CanPublishCourse reports whether usr may move crs to the published status.
func CanPublishCourse(usr user.User, crs course.Course) bool {
	return For(usr).CanPublishCourse && CanEditCourse(usr, crs)
}

func CanEnrollInCourse(usr user.User, crs course.Course) bool {
	return For(usr).CanEnroll && crs.IsPublished()
}

// CanGradeCourse: tutors and admins grade any course, instructors only their own.
func CanGradeCourse(usr user.User, crs course.Course) bool {
	perms := For(usr)
	if !perms.CanGrade {
		return false
	}
	return !usr.IsInstructor() || owns(usr, crs)
}

func CanViewEnrollments(usr user.User, crs course.Course) bool {
	perms := For(usr)
	return perms.CanEditAnyCourse || usr.IsTutor() || owns(usr, crs)
}

// CanViewCourseContent reports whether usr may read the materials and tests of crs.
// Students must be enrolled, which the caller tells through enrolled.
func CanViewCourseContent(usr user.User, crs course.Course, enrolled bool) bool {
	if CanViewEnrollments(usr, crs) {
		return true
	}
	return enrolled && usr.IsActive
}

func CanManageEvent(usr user.User, evt calendar.Event) bool {
	if !usr.IsActive {
		return false
	}
	return For(usr).CanManageAllEvents || (usr.ID != "" && usr.ID == evt.OwnerID)
}

func CanAccessChat(usr user.User, ch chat.Chat) bool {
	if !usr.IsActive {
		return false
	}
	return For(usr).CanViewAllChats || ch.HasParticipant(usr.ID)
}
