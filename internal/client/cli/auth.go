package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopauth/internal/client/client"
	"github.com/dmitrijs2005/shopauth/internal/common"
)

// getSimpleText and getPassword are indirections swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, name and password and creates an account.
// A successful registration also signs the user in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Register(ctx, email, name, password)
	if err != nil {
		a.report("Registration unsuccessful", err)
		return err
	}

	fmt.Fprintf(a.out, "Registered and logged in as %s\n", u.Email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, email, password)
	if err != nil {
		a.report("Login unsuccessful", err)
		return err
	}

	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Logged in as %s\n", u.Email)
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	u, err := a.authService.Profile(ctx)
	if err != nil {
		a.report("Cannot load profile", err)
		return err
	}

	fmt.Fprintf(a.out, "ID:        %s\n", u.ID)
	fmt.Fprintf(a.out, "Email:     %s\n", u.Email)
	fmt.Fprintf(a.out, "Name:      %s\n", u.Name)
	fmt.Fprintf(a.out, "Picture:   %s\n", u.Picture)
	fmt.Fprintf(a.out, "Stores:    %d\n", len(u.Stores))
	fmt.Fprintf(a.out, "Favorites: %d\n", len(u.Favorites))
	fmt.Fprintf(a.out, "Orders:    %d\n", len(u.Orders))
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.authService.Refresh(ctx); err != nil {
		a.report("Refresh unsuccessful", err)
		return err
	}
	fmt.Fprintln(a.out, "Tokens refreshed")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.report("Logout unsuccessful", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// report prints a short reason for a failed command.
func (a *App) report(prefix string, err error) {
	var reason string
	switch {
	case errors.Is(err, client.ErrUnavailable):
		reason = "server unavailable"
		a.setMode(ModeOffline)
	case errors.Is(err, client.ErrUnauthorized):
		reason = "invalid credentials or session expired"
	case errors.Is(err, common.ErrorNotFound):
		reason = "user not found"
	case errors.Is(err, common.ErrorConflict):
		reason = "user already exists"
	default:
		reason = err.Error()
	}
	fmt.Fprintf(a.out, "%s: %s\n", prefix, reason)
}
