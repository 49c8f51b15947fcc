package domain

import (
	"errors"
	"strings"
)

// ErrEmptyScope is returned when a scope is requested for an empty company id.
var ErrEmptyScope = errors.New("company scope requires a company id")

// CompanyScope is the tenant capability every store call requires. It can only
// be built through ScopeFor, so a store method cannot be invoked without naming
// the company it reads or writes.
type CompanyScope struct {
	companyID string
}

// ScopeFor returns the scope for companyID.
func ScopeFor(companyID string) (CompanyScope, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return CompanyScope{}, ErrEmptyScope
	}
	return CompanyScope{companyID: companyID}, nil
}

// MustScope is ScopeFor for ids that are known to be non-empty (tests, system actors).
func MustScope(companyID string) CompanyScope {
	s, err := ScopeFor(companyID)
	if err != nil {
		panic(err)
	}
	return s
}

// CompanyID returns the company the scope is bound to.
func (s CompanyScope) CompanyID() string { return s.companyID }

// Valid is false for the zero value.
func (s CompanyScope) Valid() bool { return s.companyID != "" }

// Owns reports whether a row stamped with companyID is visible through this scope.
func (s CompanyScope) Owns(companyID string) bool {
	return s.Valid() && s.companyID == companyID
}
