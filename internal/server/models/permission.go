package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Permission is a set of account capabilities. It is persisted as a
// SMALLINT bit set; the integer form is only used by repositories.
type Permission uint8

const (
	PermUpload Permission = 1 << iota
	PermModerate
	PermAdmin

	permAll = PermUpload | PermModerate | PermAdmin
)

var permissionNames = []struct {
	p    Permission
	name string
}{
	{PermUpload, "upload"},
	{PermModerate, "moderate"},
	{PermAdmin, "admin"},
}

// PermissionFromColumn converts the stored integer into a Permission,
// rejecting bits that have no meaning.
func PermissionFromColumn(v int16) (Permission, error) {
	if v < 0 || Permission(v)&^permAll != 0 {
		return 0, fmt.Errorf("unknown permission bits %#x", v)
	}
	return Permission(v), nil
}

// Column returns the integer stored in the database.
func (p Permission) Column() int16 { return int16(p) }

func (p Permission) Has(q Permission) bool { return p&q == q }

// Names lists the set permissions in a stable order.
func (p Permission) Names() []string {
	names := []string{}
	for _, pn := range permissionNames {
		if p.Has(pn.p) {
			names = append(names, pn.name)
		}
	}
	return names
}

func (p Permission) String() string {
	if p == 0 {
		return "none"
	}
	return strings.Join(p.Names(), "|")
}

func (p Permission) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Names())
}
