// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Role is the coverage alignment a defender plays against a receiver.
type Role int

// Alignment roles. The numeric values index RoleWeights.
const (
	Slot Role = iota
	Wide
	Safety
	Linebacker
)

// NumRoles is the number of alignment roles.
const NumRoles = 4

// Roles lists every role in canonical order.
var Roles = [NumRoles]Role{Slot, Wide, Safety, Linebacker}

var roleNames = [NumRoles]string{"slot", "wide", "safety", "linebacker"}

// String returns the lower-case role name used in tables and logs.
func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// Valid reports whether r is one of the four alignment roles.
func (r Role) Valid() bool {
	return r >= Slot && r <= Linebacker
}

// ParseRole maps a role name to a Role. "lb" is accepted for linebacker.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slot":
		return Slot, nil
	case "wide":
		return Wide, nil
	case "safety":
		return Safety, nil
	case "linebacker", "lb":
		return Linebacker, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// RoleWeights holds one value per role: usage weights, penalties and
// alignment probabilities all share this shape.
type RoleWeights [NumRoles]float64

// Get returns the value for r.
func (w RoleWeights) Get(r Role) float64 { return w[r] }

// Sum returns the total across all roles.
func (w RoleWeights) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// Uniform returns weights with v for every role.
func Uniform(v float64) RoleWeights {
	return RoleWeights{v, v, v, v}
}
