// Package authz holds the static (method, path) → requirement rule table
// evaluated after authentication and before any handler runs.
//
// Rules are plain data, evaluated in declaration order; the first match wins.
// When nothing matches, the policy's default requirement applies.
package authz

import (
	"net/http"
	"strings"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

// Requirement is the capability a request must hold to pass a rule.
type Requirement struct {
	kind kind
	role string
}

type kind int

const (
	kindAuthenticated kind = iota
	kindPublic
	kindRole
)

var (
	// Public lets any request through, with or without a principal.
	Public = Requirement{kind: kindPublic}
	// Authenticated requires a principal.
	Authenticated = Requirement{kind: kindAuthenticated}
)

// Role requires a principal holding role.
func Role(role string) Requirement {
	return Requirement{kind: kindRole, role: role}
}

func (r Requirement) String() string {
	switch r.kind {
	case kindPublic:
		return "public"
	case kindRole:
		return "role:" + r.role
	default:
		return "authenticated"
	}
}

// AnyMethod matches every HTTP method.
const AnyMethod = ""

// Rule maps a method and path pattern to a requirement.
//
// Pattern forms:
//
//	"*"        every path
//	"/x/*"     "/x" itself and anything below "/x/"
//	"/x/y"     exactly "/x/y" (a trailing slash is ignored)
type Rule struct {
	Method      string
	Pattern     string
	Requirement Requirement
}

func (r Rule) String() string {
	m := r.Method
	if m == AnyMethod {
		m = "ANY"
	}
	return m + " " + r.Pattern + " -> " + r.Requirement.String()
}

func (r Rule) matches(method, path string) bool {
	if r.Method != AnyMethod && !strings.EqualFold(r.Method, method) {
		return false
	}
	return MatchPath(r.Pattern, path)
}

// MatchPath reports whether path satisfies pattern.
func MatchPath(pattern, path string) bool {
	if pattern == "*" {
		return true
	}
	path = trimSlash(path)
	if base, ok := strings.CutSuffix(pattern, "/*"); ok {
		base = trimSlash(base)
		return path == base || strings.HasPrefix(path, base+"/")
	}
	return path == trimSlash(pattern)
}

func trimSlash(p string) string {
	if len(p) > 1 {
		return strings.TrimRight(p, "/")
	}
	return p
}

// Decision is the outcome of evaluating a request against the policy.
// Err is nil when Allowed, otherwise domain.ErrUnauthenticated (no
// principal) or domain.ErrInsufficientRole (principal lacks the role).
type Decision struct {
	Allowed bool
	Err     error
	Rule    string
}

// Policy is an immutable ordered rule table.
type Policy struct {
	rules    []Rule
	fallback Requirement
}

// NewPolicy copies rules so later changes by the caller are not observed.
// Requests matching no rule must satisfy fallback.
func NewPolicy(fallback Requirement, rules ...Rule) *Policy {
	return &Policy{rules: append([]Rule(nil), rules...), fallback: fallback}
}

// DefaultRules is the gateway's rule table.
//
// GET /auth/me is listed before the public /auth/* rule: it reports on the
// caller and therefore needs a principal.
func DefaultRules() []Rule {
	return []Rule{
		{Method: http.MethodGet, Pattern: "/auth/me", Requirement: Authenticated},
		{Method: AnyMethod, Pattern: "/auth/*", Requirement: Public},
		{Method: AnyMethod, Pattern: "/health/*", Requirement: Public},
		{Method: http.MethodGet, Pattern: "/metrics", Requirement: Public},
		{Method: http.MethodGet, Pattern: "/swagger/*", Requirement: Public},
		{Method: http.MethodGet, Pattern: "/products/*", Requirement: Authenticated},
		{Method: http.MethodPost, Pattern: "/products", Requirement: Authenticated},
		{Method: http.MethodPut, Pattern: "/products/*", Requirement: Role(domain.RoleAdmin)},
		{Method: http.MethodDelete, Pattern: "/products/*", Requirement: Role(domain.RoleAdmin)},
	}
}

// DefaultPolicy returns DefaultRules with an "authenticated" fallback.
func DefaultPolicy() *Policy {
	return NewPolicy(Authenticated, DefaultRules()...)
}

// Evaluate is a pure function of its inputs. p is nil for anonymous requests.
func (pol *Policy) Evaluate(method, path string, p *domain.Principal) Decision {
	for _, r := range pol.rules {
		if r.matches(method, path) {
			return decide(r.Requirement, p, r.String())
		}
	}
	return decide(pol.fallback, p, "default -> "+pol.fallback.String())
}

func decide(req Requirement, p *domain.Principal, rule string) Decision {
	switch req.kind {
	case kindPublic:
		return Decision{Allowed: true, Rule: rule}
	case kindRole:
		if p == nil {
			return Decision{Err: domain.ErrUnauthenticated, Rule: rule}
		}
		if !p.HasRole(req.role) {
			return Decision{Err: domain.ErrInsufficientRole, Rule: rule}
		}
		return Decision{Allowed: true, Rule: rule}
	default:
		if p == nil {
			return Decision{Err: domain.ErrUnauthenticated, Rule: rule}
		}
		return Decision{Allowed: true, Rule: rule}
	}
}
