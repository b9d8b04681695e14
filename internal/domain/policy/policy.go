// Package policy holds the numeric business limits shared by the domain
// services. Every service receives a Limits value at construction so that
// the caps live in exactly one place instead of per-call-site literals.
package policy

// Limits bundles the platform-wide validation caps.
type Limits struct {
	// MaxBalance is the ceiling on a patient's point balance.
	MaxBalance int
	// MaxNameLen caps reward names.
	MaxNameLen int
	// MaxDescriptionLen caps reward and plan descriptions.
	MaxDescriptionLen int
	// ExpiringSoonDays is the default lookahead window for plans
	// approaching their end date.
	ExpiringSoonDays int
}

// Default returns the production limits.
func Default() Limits {
	return Limits{
		MaxBalance:        10000,
		MaxNameLen:        255,
		MaxDescriptionLen: 500,
		ExpiringSoonDays:  7,
	}
}

// WithOverrides returns a copy of l with any positive override applied.
func (l Limits) WithOverrides(maxBalance, expiringSoonDays int) Limits {
	if maxBalance > 0 {
		l.MaxBalance = maxBalance
	}
	if expiringSoonDays > 0 {
		l.ExpiringSoonDays = expiringSoonDays
	}
	return l
}
