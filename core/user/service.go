package user

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/trezcool/coursehub/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) (int, error)
	}

	ServiceInterface interface {
		CheckUniqueness(ctx context.Context, email string, exclUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Exists(ctx context.Context, id string) (bool, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		UpdateProfile(ctx context.Context, id string, up UpdateProfile) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		Delete(ctx context.Context, ids ...string) error
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

func (svc *Service) CheckUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	return emailError(svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...))
}

// emailError turns ErrEmailExists into a validation error on the email field.
func emailError(err error) error {
	if errors.Is(err, ErrEmailExists) {
		return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
	}
	return err
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:         nu.Name,
		Email:        nu.Email,
		Role:         nu.Role,
		Avatar:       nu.Avatar,
		OnlineStatus: StatusOffline,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, emailError(err)
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *Service) sendWelcomeMail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Your account is ready",
		TemplateName: "welcome",
		TemplateData: struct {
			Name  string
			Email string
			Role  Role
		}{usr.Name, usr.Email, usr.Role},
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := svc.repo.GetUserByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Name = uu.Name
	usr.Email = uu.Email
	usr.Role = uu.Role
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	usr.UpdatedAt = time.Now().UTC()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, emailError(err)
	}
	return usr, nil
}

func (svc *Service) UpdateProfile(ctx context.Context, id string, up UpdateProfile) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Name = up.Name
	usr.OnlineStatus = up.OnlineStatus
	if up.Avatar != nil {
		usr.Avatar = *up.Avatar
	}
	if up.Bio != nil {
		usr.Bio = *up.Bio
	}
	if up.Password != "" {
		if err := usr.SetPassword(up.Password); err != nil {
			return User{}, err
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	usr.OnlineStatus = StatusOnline
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteUsersByID(ctx, ids...)
	return err
}
