package main

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/user"
	"github.com/trezcool/coursehub/storage/fixtures"
)

// addUser updates or creates a fixture user & saves the fixtures file.
func (cli *commandLine) addUser(path, name, email, role, pwd string) error {
	fx, err := fixtures.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		cli.logger.Infow("starting new fixtures file", "path", path)
		fx = new(fixtures.Fixtures)
	}

	nu := user.NewUser{
		Name:            core.CleanString(name),
		Email:           core.CleanString(email, true /* lower */),
		Role:            user.Role(core.CleanString(role, true /* lower */)),
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err = cli.validateStruct(nu); err != nil {
		return err
	}

	now := time.Now().UTC()
	idx := fx.FindUser(nu.Email)
	if idx < 0 {
		fx.Users = append(fx.Users, fixtures.User{User: user.User{
			ID:           uuid.New().String(),
			Email:        nu.Email,
			OnlineStatus: user.StatusOffline,
			CreatedAt:    now,
		}})
		idx = len(fx.Users) - 1
		cli.logger.Infow("creating user", "email", nu.Email)
	} else {
		cli.logger.Infow("updating user", "email", nu.Email, "id", fx.Users[idx].ID)
	}

	fu := &fx.Users[idx]
	fu.Name = nu.Name
	fu.Role = nu.Role
	fu.IsActive = true
	fu.UpdatedAt = now
	if err = fu.SetPassword(pwd); err != nil {
		return err
	}
	return fx.Save(path)
}

// validateStruct validates s & flattens validation errors into a single readable error.
func (cli *commandLine) validateStruct(s interface{}) error {
	err := cli.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Translate(cli.translator)))
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "; "))
}
