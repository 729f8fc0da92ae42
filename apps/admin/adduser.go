package main

import (
	"context"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(ctx context.Context, name, email, pwd string, isAdmin bool) error {
	roles := user.StudentRoles
	if isAdmin {
		roles = user.AdminRoles
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	switch {
	case core.IsNotFound(err):
		nu := user.NewUser{Name: name, Email: email, Password: pwd, PasswordConfirm: pwd, Roles: roles}
		if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
			return err
		}
		if usr, err = cli.usrSvc.Create(ctx, nu); err != nil {
			return err
		}
		cli.printf("created user %s <%s>\n", usr.ID, usr.Email)
		return nil
	case err != nil:
		return err
	}

	active := true
	uu := user.UpdateUser{Name: name, Roles: roles, IsActive: &active, Password: pwd, PasswordConfirm: pwd}
	if err := uu.Validate(ctx, usr, cli.validate, cli.usrSvc); err != nil {
		return err
	}
	if usr, err = cli.usrSvc.Update(ctx, usr.ID, uu); err != nil {
		return err
	}
	cli.printf("updated user %s <%s>\n", usr.ID, usr.Email)
	return nil
}
