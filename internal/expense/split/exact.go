package split

import "github.com/fkhayef/splitledger/internal/money"

// =============================================================================
// EXACT SPLIT STRATEGY
// Each participant owes a specific literal amount (must sum to total)
// =============================================================================

// ExactStrategy implements the Strategy interface for exact amount splits
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() SplitType {
	return SplitTypeExact
}

// Validate checks that every participant carries a non-negative amount and
// that the amounts sum to the total exactly. Integer minor units leave no
// tolerance window: off by one unit is a mismatch.
func (s *ExactStrategy) Validate(total money.Money, participants []SplitInput) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	var sum money.Money
	var err error
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingExactAmount
		}
		if *p.Amount < 0 {
			return money.ErrInvalidAmount
		}
		if sum, err = sum.Add(*p.Amount); err != nil {
			return err
		}
	}

	if sum != total {
		return ErrShareMismatch
	}
	return nil
}

// Calculate returns the caller-supplied amounts unchanged, in input order.
func (s *ExactStrategy) Calculate(total money.Money, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{
			MemberID:   p.MemberID,
			AmountOwed: *p.Amount,
		}
	}

	return outputs, nil
}
