package split

import "github.com/fkhayef/splitledger/internal/money"

// =============================================================================
// SHARES SPLIT STRATEGY
// Divides the expense proportionally to integer weights ("2 shares" vs "1")
// =============================================================================

// SharesStrategy implements the Strategy interface for weighted splits
type SharesStrategy struct{}

// Type returns the split type identifier
func (s *SharesStrategy) Type() SplitType {
	return SplitTypeShares
}

// Validate checks that every participant carries a strictly positive weight.
func (s *SharesStrategy) Validate(total money.Money, participants []SplitInput) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	for _, p := range participants {
		if p.Shares == nil {
			return ErrMissingShares
		}
		if *p.Shares <= 0 {
			return ErrInvalidShares
		}
	}
	return nil
}

// Calculate computes floor(total * weight / totalWeight) per participant,
// then distributes the rounding residue one minor unit at a time to the
// first participants in declared order.
func (s *SharesStrategy) Calculate(total money.Money, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	var totalWeight int64
	for _, p := range participants {
		totalWeight += *p.Shares
	}

	outputs := make([]SplitOutput, len(participants))
	var distributed money.Money
	for i, p := range participants {
		share, err := total.Ratio(*p.Shares, totalWeight)
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
