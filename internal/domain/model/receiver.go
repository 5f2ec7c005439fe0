package model

import (
	"fmt"
	"math"
	"strings"
)

// Usage weight constants for the safety and linebacker roles. Receivers with
// meaningful slot usage see more safety and linebacker coverage.
const (
	safetyShareHighSlot     = 0.2
	safetyShareLowSlot      = 0.05
	safetySlotThreshold     = 0.3
	linebackerShareHighSlot = 0.1
	linebackerSlotThreshold = 0.2
)

// WeightMultipliers scale the usage weights derived from snap splits.
type WeightMultipliers struct {
	Slot       float64
	Wide       float64
	Safety     float64
	Linebacker float64
}

// DefaultWeightMultipliers returns the stock role multipliers.
func DefaultWeightMultipliers() WeightMultipliers {
	return WeightMultipliers{Slot: 1.0, Wide: 1.0, Safety: 0.2, Linebacker: 0.1}
}

func (m WeightMultipliers) validate() error {
	for _, v := range [...]float64{m.Slot, m.Wide, m.Safety, m.Linebacker} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %g", ErrInvalidWeightMultiplier, v)
		}
	}
	return nil
}

// ReceiverInput carries one receiver row as read from the stat table.
type ReceiverInput struct {
	Name         string
	Team         string
	SlotSnapRate float64
	SnapShare    float64
	RoutesRun    float64
	VsMan        SplitProfile
	VsZone       SplitProfile
}

// Receiver is a wide receiver with derived usage weights. It is immutable
// once built; weekly history lives outside the receiver.
type Receiver struct {
	Name         string
	Team         string
	SlotSnapRate float64
	WideSnapRate float64
	SnapShare    float64
	RoutesRun    float64
	Weights      RoleWeights
	VsMan        SplitProfile
	VsZone       SplitProfile
}

// NewReceiver validates in and derives the role usage weights.
func NewReceiver(in ReceiverInput, mult WeightMultipliers) (Receiver, error) {
	name := strings.TrimSpace(in.Name)
	team := strings.TrimSpace(in.Team)
	if name == "" || team == "" {
		return Receiver{}, fmt.Errorf("%w: receiver name=%q team=%q", ErrMissingIdentity, in.Name, in.Team)
	}
	if err := mult.validate(); err != nil {
		return Receiver{}, err
	}
	slot := in.SlotSnapRate
	if math.IsNaN(slot) || slot < 0 || slot > 1 {
		return Receiver{}, fmt.Errorf("%w: %s has %g", ErrInvalidSnapRate, name, slot)
	}
	if err := checkNonNegative("snap_share", in.SnapShare); err != nil {
		return Receiver{}, fmt.Errorf("receiver %s: %w", name, err)
	}
	if err := checkNonNegative("routes_run", in.RoutesRun); err != nil {
		return Receiver{}, fmt.Errorf("receiver %s: %w", name, err)
	}
	vsMan, err := NewSplitProfile(in.VsMan)
	if err != nil {
		return Receiver{}, fmt.Errorf("receiver %s vs man: %w", name, err)
	}
	vsZone, err := NewSplitProfile(in.VsZone)
	if err != nil {
		return Receiver{}, fmt.Errorf("receiver %s vs zone: %w", name, err)
	}

	weights := UsageWeights(slot, mult)
	if weights.Sum() == 0 {
		return Receiver{}, fmt.Errorf("%w: %s", ErrDegenerateUsageWeights, name)
	}

	return Receiver{
		Name:         name,
		Team:         team,
		SlotSnapRate: slot,
		WideSnapRate: 1 - slot,
		SnapShare:    in.SnapShare,
		RoutesRun:    in.RoutesRun,
		Weights:      weights,
		VsMan:        vsMan,
		VsZone:       vsZone,
	}, nil
}

// UsageWeights derives per-role usage weights from a slot snap rate.
func UsageWeights(slotRate float64, mult WeightMultipliers) RoleWeights {
	safety := safetyShareLowSlot
	if slotRate > safetySlotThreshold {
		safety = safetyShareHighSlot
	}
	var lb float64
	if slotRate > linebackerSlotThreshold {
		lb = linebackerShareHighSlot
	}
	var w RoleWeights
	w[Slot] = slotRate * mult.Slot
	w[Wide] = (1 - slotRate) * mult.Wide
	w[Safety] = safety * mult.Safety
	w[Linebacker] = lb * mult.Linebacker
	return w
}
