package domain

import (
	"strings"
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	// RoleDelimiter separates role labels in the persisted role-set field.
	RoleDelimiter = ","

	legacyRolePrefix = "ROLE_"
)

// Identity models a registered principal.
type Identity struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        string    `json:"roles"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleSet parses the delimited role field into individual labels.
// Blank entries are dropped and the legacy "ROLE_" prefix is stripped, so
// "ROLE_USER, ROLE_ADMIN" and "USER,ADMIN" yield the same set.
func (i *Identity) RoleSet() []string {
	parts := strings.Split(i.Roles, RoleDelimiter)
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimPrefix(strings.TrimSpace(p), legacyRolePrefix)
		if p == "" {
			continue
		}
		roles = append(roles, p)
	}
	return roles
}

// JoinRoles is the inverse of RoleSet.
func JoinRoles(roles ...string) string {
	return strings.Join(roles, RoleDelimiter)
}
