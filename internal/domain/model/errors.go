package model

import "errors"

// Sentinel kinds for model construction errors.
var (
	ErrUnknownRole             = errors.New("unknown alignment role")
	ErrInvalidStat             = errors.New("invalid statistic")
	ErrMissingIdentity         = errors.New("missing player identity")
	ErrDegenerateUsageWeights  = errors.New("receiver usage weights sum to zero")
	ErrInvalidSnapRate         = errors.New("slot snap rate outside [0,1]")
	ErrInvalidWeightMultiplier = errors.New("invalid role weight multiplier")
)
