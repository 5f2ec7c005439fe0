// Package alignment classifies defenders into coverage roles.
//
// Every defender gets two labels: a hard role chosen by a fixed priority of
// rules, and a soft distribution over all four roles. Projection modes pick
// one or the other, so both are kept even when they disagree.
package alignment

import (
	"fmt"
	"strings"

	"github.com/okian/yaculator/internal/domain/model"
)

// Hard-role thresholds.
const (
	wideManRateThreshold   = 0.5
	slotCatchRateThreshold = 0.7
)

// Mode selects which alignment label the penalty model consumes.
type Mode int

// Alignment modes.
const (
	Soft Mode = iota
	Hard
)

func (m Mode) String() string {
	if m == Hard {
		return "hard"
	}
	return "soft"
}

// ParseMode maps "soft"/"hard" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "soft":
		return Soft, nil
	case "hard":
		return Hard, nil
	}
	return Soft, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// DefenderInput carries one defender row as read from the stat table.
type DefenderInput struct {
	Name     string
	Team     string
	Position string
	// Role, when set, is a charted alignment that replaces the rule-based
	// hard role. The soft distribution still comes from the stats.
	Role  string
	Stats model.CoverageStats
}

// Classify validates in and returns a defender with both role labels.
func Classify(in DefenderInput) (model.Defender, error) {
	name := strings.TrimSpace(in.Name)
	team := strings.TrimSpace(in.Team)
	if name == "" || team == "" {
		return model.Defender{}, fmt.Errorf("%w: defender name=%q team=%q", model.ErrMissingIdentity, in.Name, in.Team)
	}
	stats, err := model.NewCoverageStats(in.Stats)
	if err != nil {
		return model.Defender{}, fmt.Errorf("defender %s: %w", name, err)
	}
	pos := normalizePosition(in.Position)
	role := HardRole(pos, stats)
	if strings.TrimSpace(in.Role) != "" {
		if role, err = model.ParseRole(in.Role); err != nil {
			return model.Defender{}, fmt.Errorf("defender %s: %w", name, err)
		}
	}
	return model.Defender{
		Name:     name,
		Team:     team,
		Position: pos,
		Stats:    stats,
		Role:     role,
		Probs:    SoftRoles(pos, stats),
	}, nil
}

// HardRole assigns exactly one role. Rules are checked in order and the
// first match wins: safeties and linebackers by position, then heavy man
// coverage as wide, then high catch rate allowed as slot, else wide.
func HardRole(position string, s model.CoverageStats) model.Role {
	switch normalizePosition(position) {
	case model.PositionSafety:
		return model.Safety
	case model.PositionLinebacker:
		return model.Linebacker
	}
	if s.ManCoverageRate > wideManRateThreshold {
		return model.Wide
	}
	if s.CatchRateAllowed > slotCatchRateThreshold {
		return model.Slot
	}
	return model.Wide
}

// SoftRoles returns the role distribution. Raw scores are catch rate (slot),
// man rate (wide), and position indicators for safety and linebacker. A zero
// total falls back to uniform.
func SoftRoles(position string, s model.CoverageStats) model.RoleWeights {
	pos := normalizePosition(position)
	var raw model.RoleWeights
	raw[model.Slot] = s.CatchRateAllowed
	raw[model.Wide] = s.ManCoverageRate
	if pos == model.PositionSafety {
		raw[model.Safety] = 1
	}
	if pos == model.PositionLinebacker {
		raw[model.Linebacker] = 1
	}

	total := raw.Sum()
	if total <= 0 {
		return model.Uniform(1.0 / model.NumRoles)
	}
	var probs model.RoleWeights
	for _, r := range model.Roles {
		probs[r] = raw[r] / total
	}
	return probs
}

func normalizePosition(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}
