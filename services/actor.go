package services

import (
	"strings"

	"rageroom-backend/models"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// AdminPolicy decides who is an administrator: a configured e-mail or the admin role.
type AdminPolicy struct {
	emails map[string]struct{}
}

func NewAdminPolicy(emails []string) AdminPolicy {
	p := AdminPolicy{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			p.emails[e] = struct{}{}
		}
	}
	return p
}

func (p AdminPolicy) IsAdmin(email, role string) bool {
	if role == models.RoleAdmin {
		return true
	}
	_, ok := p.emails[normalizeEmail(email)]
	return ok
}

// Emails lists the configured admin e-mails.
func (p AdminPolicy) Emails() []string {
	out := make([]string, 0, len(p.emails))
	for e := range p.emails {
		out = append(out, e)
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
