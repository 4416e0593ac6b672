package main

import (
	"time"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/user"
	"github.com/trezcool/coursehub/storage/fixtures"
)

func (cli *commandLine) resetPassword(path, email, pwd string) error {
	fx, err := fixtures.Load(path)
	if err != nil {
		return err
	}
	idx := fx.FindUser(core.CleanString(email, true /* lower */))
	if idx < 0 {
		return user.ErrNotFound
	}
	fu := &fx.Users[idx]

	// apply the same password policy as account creation
	if err = cli.validateStruct(user.NewUser{
		Name:            fu.Name,
		Email:           fu.Email,
		Role:            fu.Role,
		Password:        pwd,
		PasswordConfirm: pwd,
	}); err != nil {
		return err
	}

	if err = fu.SetPassword(pwd); err != nil {
		return err
	}
	fu.UpdatedAt = time.Now().UTC()
	cli.logger.Infow("password reset", "email", fu.Email, "id", fu.ID)
	return fx.Save(path)
}
