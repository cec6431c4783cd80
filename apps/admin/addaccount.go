package main

import (
	"context"

	"github.com/campusops/acerp/core"
	"github.com/campusops/acerp/core/account"
)

// addAccount creates an admin account, or resets the credentials of an
// existing account with that email.
func (cli *commandLine) addAccount(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	acct, err := cli.acctSvc.GetByEmail(ctx, email)
	if err != nil {
		if err != account.ErrNotFound {
			return err
		}
		_, err = cli.acctSvc.Create(ctx, account.NewAccount{
			Name:            name,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
			Role:            account.RoleAdmin,
		})
		return err
	}

	acct.IsActive = true
	_, err = cli.acctSvc.UpdateProfile(ctx, acct, account.UpdateProfile{Name: name, Email: email, Password: pwd})
	return err
}
