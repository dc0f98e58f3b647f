package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignUp asks for a username, e-mail and password and requests a
// verification e-mail.
func (a *App) SignUp(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.SignUp(ctx, userName, email, password); err != nil {
		printlnFn("Sign-up failed:", err)
		return err
	}

	printlnFn("Check your inbox for the verification link.")
	return nil
}

// SignIn asks for credentials and saves the issued token.
func (a *App) SignIn(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	renew, err := GetYesNo(a.reader, "Allow renewal?", a.out)
	if err != nil {
		return err
	}

	s, err := a.authService.SignIn(ctx, email, password, renew)
	if err != nil {
		printlnFn("Sign-in failed:", err)
		return err
	}

	a.email = s.Email
	printlnFn("Signed in.", describeExpiry(s.Expiry))
	return nil
}

func (a *App) Renew(ctx context.Context) error {
	s, err := a.authService.Renew(ctx)
	if err != nil {
		printlnFn("Renewal failed:", err)
		return err
	}
	printlnFn("Token renewed.", describeExpiry(s.Expiry))
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	id, err := a.authService.Validate(ctx)
	if err != nil {
		printlnFn("Token check failed:", err)
		a.email = ""
		return err
	}
	printlnFn("Signed in as", a.email, "user id", id)
	return nil
}

func (a *App) SignOut(ctx context.Context) error {
	if err := a.authService.SignOut(ctx); err != nil {
		return err
	}
	a.email = ""
	printlnFn("Signed out.")
	return nil
}

// Avatar uploads the image at path as the user's avatar.
func (a *App) Avatar(ctx context.Context, path string) error {
	if path == "" {
		printlnFn("Usage: avatar <image file>")
		return nil
	}
	up, err := a.avatars.Upload(ctx, path)
	if err != nil {
		printlnFn("Avatar upload failed:", err)
		return err
	}
	printlnFn("Avatar stored as", up.Key)
	return nil
}

func describeExpiry(exp *time.Time) string {
	if exp == nil {
		return "Token does not expire."
	}
	return fmt.Sprintf("Token expires %s.", exp.Local().Format(time.RFC1123))
}
