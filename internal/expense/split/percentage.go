package split

import "github.com/fkhayef/splitledger/internal/money"

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// Validate checks that every participant carries a percentage in [0, 100%]
// and that the percentages sum to exactly 100% (10000 basis points).
func (s *PercentageStrategy) Validate(total money.Money, participants []SplitInput) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	var sumBps int64
	for _, p := range participants {
		if p.PercentBps == nil {
			return ErrMissingPercentage
		}
		if *p.PercentBps < 0 || *p.PercentBps > WholeBasisPoints {
			return ErrPercentageOutOfRange
		}
		sumBps += *p.PercentBps
	}

	if sumBps != WholeBasisPoints {
		return ErrInvalidPercentage
	}
	return nil
}

// Calculate computes floor(total * pct / 100%) per participant, then
// distributes the rounding residue one minor unit at a time to the first
// participants in declared order so the shares reconcile to the total.
func (s *PercentageStrategy) Calculate(total money.Money, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	outputs := make([]SplitOutput, len(participants))
	var distributed money.Money
	for i, p := range participants {
		share, err := total.Ratio(*p.PercentBps, WholeBasisPoints)
		if err != nil {
			return nil, err
		}
		outputs[i] = SplitOutput{
			MemberID:   p.MemberID,
			AmountOwed: share,
		}
		if distributed, err = distributed.Add(share); err != nil {
			return nil, err
		}
	}
	distributeRemainder(outputs, total-distributed)

	return outputs, nil
}
