package main

import (
	"context"
	"fmt"

	"github.com/trezcool/ccourse/core/user"
)

// addUser updates or creates an active user.User.
func (cli *commandLine) addUser(name, email, pwd string, isTutor bool) error {
	roles := []string{user.RoleStudent}
	if isTutor {
		roles = []string{user.RoleTutor}
	}
	usr, err := cli.usrSvc.UpdateOrCreate(context.Background(), user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	if err != nil {
		return err
	}
	fmt.Printf("user %s <%s> saved\n", usr.Name, usr.Email)
	return nil
}
