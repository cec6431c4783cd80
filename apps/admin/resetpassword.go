package main

import (
	"context"

	"github.com/campusops/acerp/core/account"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()

	acct, err := cli.acctSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	_, err = cli.acctSvc.UpdateProfile(ctx, acct, account.UpdateProfile{Name: acct.Name, Email: acct.Email, Password: pwd})
	return err
}
