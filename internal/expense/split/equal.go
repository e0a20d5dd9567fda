package split

import "github.com/fkhayef/splitledger/internal/money"

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense as evenly as possible among all participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() SplitType {
	return SplitTypeEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(total money.Money, participants []SplitInput) error {
	return validateCommon(total, participants)
}

// Calculate gives every participant floor(total/n), then distributes the
// remaining total mod n minor units one at a time to the first participants
// in declared order. Exactly total mod n participants end up one unit above
// the base share and the sum always reconciles to the total.
func (s *EqualStrategy) Calculate(total money.Money, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	base, remainder, err := total.Divide(len(participants))
	if err != nil {
		return nil, err
	}

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{
			MemberID:   p.MemberID,
			AmountOwed: base,
		}
	}
	distributeRemainder(outputs, remainder)

	return outputs, nil
}
