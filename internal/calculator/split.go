package calculator

import (
	"errors"
	"fmt"
)

var (
	ErrNoParticipants = errors.New("must have at least one participant")
	ErrZeroWeight     = errors.New("weight must be positive")
)

// FairShares computes each participant's portion of amount, proportional to
// its weight: share_i = amount × weight_i / Σ weights.
// Weights are summed in a uint32 so any number of uint8 weights a ledger can
// realistically hold cannot overflow.
func FairShares(amount float64, weights []uint8) ([]float64, error) {
	if len(weights) == 0 {
		return nil, ErrNoParticipants
	}

	var total uint32
	for i, w := range weights {
		if w == 0 {
			return nil, fmt.Errorf("%w: position %d", ErrZeroWeight, i)
		}
		total += uint32(w)
	}

	shares := make([]float64, len(weights))
	for i, w := range weights {
		shares[i] = amount * float64(w) / float64(total)
	}
	return shares, nil
}

// EqualShares splits amount equally among n participants.
func EqualShares(amount float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, ErrNoParticipants
	}
	per := amount / float64(n)
	shares := make([]float64, n)
	for i := range shares {
		shares[i] = per
	}
	return shares, nil
}
