package auth

import (
	"context"
	"fmt"
	"strings"
)

const (
	RoleAdmin    = "admin"
	RoleOwner    = "owner"
	RoleCustomer = "customer"
)

// Identity is the caller resolved from an API key: a garage role and the
// user id that customer-scope queries are restricted to.
type Identity struct {
	Role   string
	UserID string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOwner, RoleCustomer:
		return true
	default:
		return false
	}
}

type APIKeyValidator interface {
	Validate(ctx context.Context, apiKey string) (Identity, bool)
}

type StaticAPIKeyValidator struct {
	keys map[string]Identity
}

// NewStaticAPIKeyValidator parses a comma-separated "key:role:user_id" spec.
func NewStaticAPIKeyValidator(spec string) (*StaticAPIKeyValidator, error) {
	validator := &StaticAPIKeyValidator{keys: map[string]Identity{}}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return validator, nil
	}

	entries := strings.Split(spec, ",")
	for _, entry := range entries {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid static key entry %q: expected key:role:user_id", entry)
		}
		key := strings.TrimSpace(parts[0])
		role := strings.ToLower(strings.TrimSpace(parts[1]))
		userID := strings.TrimSpace(parts[2])
		if key == "" || userID == "" {
			return nil, fmt.Errorf("invalid static key entry %q: empty key/user id", entry)
		}
		if !ValidRole(role) {
			return nil, fmt.Errorf("invalid static key entry %q: unknown role %q", entry, role)
		}
		validator.keys[key] = Identity{Role: role, UserID: userID}
	}

	return validator, nil
}

func (v *StaticAPIKeyValidator) Validate(_ context.Context, apiKey string) (Identity, bool) {
	identity, ok := v.keys[apiKey]
	return identity, ok
}
