package enrollment

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/permission"
	"github.com/trezcool/coursehub/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("enrollment not found")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
)

type (
	Repository interface {
		// CreateEnrollment stores enr & increments the enrolled count of its course in one step.
		// It returns ErrAlreadyEnrolled when the user is already enrolled in the course.
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		QueryEnrollments(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Enrollment, error)
		GetEnrollmentByID(ctx context.Context, id string) (Enrollment, error)
		GetEnrollment(ctx context.Context, userID, courseID string) (Enrollment, error)
		UpdateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		// DeleteEnrollment removes the enrollment & decrements the enrolled count of its course.
		DeleteEnrollment(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Enroll(ctx context.Context, usr user.User, crs course.Course) (Enrollment, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Enrollment, error)
		GetByID(ctx context.Context, id string) (Enrollment, error)
		IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
		UpdateProgress(ctx context.Context, actor user.User, id string, up UpdateProgress) (Enrollment, error)
		Unenroll(ctx context.Context, actor user.User, id string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

// Enroll enrolls usr in crs and sends them a confirmation email.
func (svc *Service) Enroll(ctx context.Context, usr user.User, crs course.Course) (Enrollment, error) {
	if !permission.CanEnrollInCourse(usr, crs) {
		return Enrollment{}, permission.ErrForbidden
	}

	now := time.Now().UTC()
	enr, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		UserID:     usr.ID,
		CourseID:   crs.ID,
		EnrolledAt: now,
		UpdatedAt:  now,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyEnrolled) {
			return Enrollment{}, core.NewValidationError(err)
		}
		return Enrollment{}, err
	}

	svc.sendConfirmationMail(usr, crs)
	return enr, nil
}

func (svc *Service) sendConfirmationMail(usr user.User, crs course.Course) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Enrollment confirmed: " + crs.Title,
		TemplateName: "enrollment_confirmation",
		TemplateData: struct {
			Name        string
			CourseTitle string
			CourseID    string
		}{usr.Name, crs.Title, crs.ID},
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Enrollment, error) {
	return svc.repo.GetEnrollmentByID(ctx, id)
}

func (svc *Service) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	if _, err := svc.repo.GetEnrollment(ctx, userID, courseID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func canManage(actor user.User, enr Enrollment) bool {
	return actor.ID == enr.UserID || permission.For(actor).CanManageUsers
}

func (svc *Service) UpdateProgress(ctx context.Context, actor user.User, id string, up UpdateProgress) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollmentByID(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	if !canManage(actor, enr) {
		return Enrollment{}, permission.ErrForbidden
	}
	if up.Progress != nil {
		enr.SetProgress(*up.Progress)
	}
	enr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEnrollment(ctx, enr)
}

func (svc *Service) Unenroll(ctx context.Context, actor user.User, id string) error {
	enr, err := svc.repo.GetEnrollmentByID(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(actor, enr) {
		return permission.ErrForbidden
	}
	return svc.repo.DeleteEnrollment(ctx, id)
}
