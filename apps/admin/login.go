package main

import (
	"context"
	"fmt"

	"github.com/tclass/web/core/auth"
)

// login runs the web login flow and prints the resulting role and landing page.
// The token itself is never printed.
func (cli *commandLine) login(ctx context.Context, email, pwd, role string) error {
	cred, err := cli.authSvc.Login(ctx, auth.LoginRequest{Email: email, Password: pwd, Role: role})
	if err != nil {
		return fmt.Errorf("%s", auth.FailureMessage(err))
	}
	fmt.Fprintf(cli.out, "Logged in as %s (role: %s, home: %s)\n", cred.Email, cred.Role, cred.Home())
	return nil
}
