package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates through the gateway. The
// gateway decides whether the remote or the mirror answers; the REPL only
// reports which one did and starts the background sync on success.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}

	account, err := a.gw.Login(ctx, username, password)
	if err != nil {
		printlnFn("Login failed:", err)
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s (%s)", account.Name, account.Role))
	if a.gw.UsingDefaultPassword(ctx) {
		printlnFn("You are still using the default password. Run 'passwd' to change it.")
	}
	a.startBackgroundSync(ctx)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.stopBackgroundSync()
	a.gw.Logout()
	a.discardSnapshots()
	printlnFn("Logged out.")
	return nil
}

// Passwd changes the session account's password.
func (a *App) Passwd(ctx context.Context) error {
	oldPassword, err := getPassword(os.Stdout, "Current password")
	if err != nil {
		return err
	}
	newPassword, err := getPassword(os.Stdout, "New password")
	if err != nil {
		return err
	}

	if err := a.gw.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		printlnFn("Password change failed:", err)
		return err
	}
	printlnFn("Password changed.")
	return nil
}
