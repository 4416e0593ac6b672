package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/coursehub/core"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleTutor      Role = "tutor"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

type OnlineStatus string

const (
	StatusOnline  OnlineStatus = "online"
	StatusAway    OnlineStatus = "away"
	StatusOffline OnlineStatus = "offline"
)

var (
	AllRoles = []Role{RoleStudent, RoleTutor, RoleInstructor, RoleAdmin}

	rolePriorities = map[Role]int{
		RoleAdmin:      30,
		RoleInstructor: 20,
		RoleTutor:      15,
		RoleStudent:    1,
	}

	Roles = []RoleInfo{
		{Name: "Student", Value: RoleStudent},
		{Name: "Tutor", Value: RoleTutor},
		{Name: "Instructor", Value: RoleInstructor},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func (r Role) IsValid() bool {
	_, ok := rolePriorities[r]
	return ok
}

func RolePriority(role Role) int {
	return rolePriorities[role]
}

type RoleInfo struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

type User struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Role         Role         `json:"role"`
	Avatar       string       `json:"avatar"`
	Bio          string       `json:"bio"`
	OnlineStatus OnlineStatus `json:"online_status"`
	IsActive     bool         `json:"is_active"`
	PasswordHash []byte       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"` // UTC
	UpdatedAt    time.Time    `json:"updated_at"` // UTC
	LastLogin    time.Time    `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u User) IsInstructor() bool { return u.Role == RoleInstructor }
func (u User) IsTutor() bool      { return u.Role == RoleTutor }
func (u User) IsStudent() bool    { return u.Role == RoleStudent }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Role            Role   `json:"role" validate:"required,userrole"`
	Avatar          string `json:"avatar" validate:"omitempty,url"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information an admin may provide to modify an existing User.
type UpdateUser struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     Role   `json:"role" validate:"omitempty,userrole"`
	IsActive *bool  `json:"is_active"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc ServiceInterface) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if uu.Role == "" {
		uu.Role = origUsr.Role
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Email, origUsr)
}

// UpdateProfile defines what a User may change about themselves.
type UpdateProfile struct {
	Name            string       `json:"name"`
	Avatar          *string      `json:"avatar" validate:"omitempty,url"`
	Bio             *string      `json:"bio" validate:"omitempty,max=500"`
	OnlineStatus    OnlineStatus `json:"online_status" validate:"omitempty,onlinestatus"`
	Password        string       `json:"password"`
	PasswordConfirm string       `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`

	// used by the password policy only
	email string
}

func (up *UpdateProfile) Validate(origUsr User, validate *validator.Validate) error {
	if name := core.CleanString(up.Name); name != "" {
		up.Name = name
	} else {
		up.Name = origUsr.Name
	}
	if up.OnlineStatus == "" {
		up.OnlineStatus = origUsr.OnlineStatus
	}
	up.email = origUsr.Email
	return validate.Struct(up)
}

type QueryFilter struct {
	Search   string
	Roles    []Role
	IsActive *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
