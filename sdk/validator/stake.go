// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validator

import (
	"errors"
	"fmt"
)

// DefaultMaxWeightChangePercentage is the largest share of the L1 total weight
// a single change may move, matching the default validator manager churn limit
const DefaultMaxWeightChangePercentage = 20.0

var ErrStakeDeltaExceeded = errors.New("weight change exceeds the maximum allowed percentage of total weight")

// StakeDelta is the result of comparing a proposed validator weight against the L1 total weight
type StakeDelta struct {
	PercentageChange float64
	ExceedsMaximum   bool
}

// ValidateStakeDelta checks a change from [currentWeight] to [proposedWeight] against
// [DefaultMaxWeightChangePercentage] of [totalWeight]
func ValidateStakeDelta(totalWeight, proposedWeight, currentWeight uint64) StakeDelta {
	return ValidateStakeDeltaWithMaximum(totalWeight, proposedWeight, currentWeight, DefaultMaxWeightChangePercentage)
}

// ValidateStakeDeltaWithMaximum computes |proposed-current|/total*100 and flags it when it
// reaches [maxPercentage]. A zero [totalWeight] means the total is unknown, and the check is skipped
func ValidateStakeDeltaWithMaximum(totalWeight, proposedWeight, currentWeight uint64, maxPercentage float64) StakeDelta {
	if totalWeight == 0 {
		return StakeDelta{}
	}
	var diff uint64
	if proposedWeight > currentWeight {
		diff = proposedWeight - currentWeight
	} else {
		diff = currentWeight - proposedWeight
	}
	percentage := float64(diff) * 100 / float64(totalWeight)
	return StakeDelta{
		PercentageChange: percentage,
		ExceedsMaximum:   percentage >= maxPercentage,
	}
}

// CheckStakeDelta returns ErrStakeDeltaExceeded if the change is over [maxPercentage]
func CheckStakeDelta(totalWeight, proposedWeight, currentWeight uint64, maxPercentage float64) (StakeDelta, error) {
	delta := ValidateStakeDeltaWithMaximum(totalWeight, proposedWeight, currentWeight, maxPercentage)
	if delta.ExceedsMaximum {
		return delta, fmt.Errorf(
			"%w: changing weight from %d to %d is %.2f%% of total weight %d (maximum %.2f%%)",
			ErrStakeDeltaExceeded,
			currentWeight,
			proposedWeight,
			delta.PercentageChange,
			totalWeight,
			maxPercentage,
		)
	}
	return delta, nil
}
