// Package validate holds the input checks shared by services and clients.
package validate

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

const (
	MinUserNameLength = 6
	MaxUserNameLength = 32
)

// Email accepts addresses of the form local@domain.tld: exactly one '@',
// non-empty local part, a domain of at least two non-empty dot-separated
// labels, no spaces and at most common.MaxEmailLength bytes.
func Email(email string) error {
	if len(email) > common.MaxEmailLength {
		return fmt.Errorf("%w: email longer than %d bytes", common.ErrValidation, common.MaxEmailLength)
	}
	if strings.ContainsRune(email, ' ') {
		return fmt.Errorf("%w: email contains spaces", common.ErrValidation)
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") || local == "" || domain == "" {
		return fmt.Errorf("%w: malformed email", common.ErrValidation)
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return fmt.Errorf("%w: email domain needs a dot", common.ErrValidation)
	}
	for _, l := range labels {
		if l == "" {
			return fmt.Errorf("%w: empty label in email domain", common.ErrValidation)
		}
	}
	return nil
}

// UserName checks the byte length of a username.
func UserName(name string) error {
	if len(name) < MinUserNameLength || len(name) > MaxUserNameLength {
		return fmt.Errorf("%w: username must be %d to %d bytes", common.ErrValidation, MinUserNameLength, MaxUserNameLength)
	}
	return nil
}

// Size checks that b is exactly n bytes.
func Size(what string, b []byte, n int) error {
	if len(b) != n {
		return fmt.Errorf("%w: %s must be %d bytes, got %d", common.ErrValidation, what, n, len(b))
	}
	return nil
}
