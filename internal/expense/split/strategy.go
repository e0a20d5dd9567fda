package split

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/money"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypeExact      SplitType = "EXACT"
	SplitTypePercentage SplitType = "PERCENTAGE"
	SplitTypeShares     SplitType = "SHARES"
)

// WholeBasisPoints is 100% expressed in basis points. Percentages are carried
// as integer basis points (100 bp = 1%) so the sum-to-100% check is exact.
const WholeBasisPoints int64 = 10000

// SplitInput is one participant in a split with its strategy-dependent value.
// Exactly one of the optional fields is consulted, depending on the strategy.
type SplitInput struct {
	MemberID   uuid.UUID    `json:"member_id"`
	Amount     *money.Money `json:"amount,omitempty"`      // For EXACT split, minor units
	PercentBps *int64       `json:"percent_bps,omitempty"` // For PERCENTAGE split, basis points
	Shares     *int64       `json:"shares,omitempty"`      // For SHARES split, positive weight
}

// SplitOutput is the resolved share for a single participant.
type SplitOutput struct {
	MemberID   uuid.UUID   `json:"member_id"`
	AmountOwed money.Money `json:"amount_owed"`
}

// Strategy is the interface that all split strategies must implement.
//
// Contract for every variant: the output covers exactly the participant set,
// in input order; every share is >= 0; the shares sum to the total with no
// minor unit lost or duplicated; identical inputs produce identical outputs.
type Strategy interface {
	// Calculate computes the resolved share for every participant,
	// including the payer (the ledger skips the payer when applying debts).
	Calculate(total money.Money, participants []SplitInput) ([]SplitOutput, error)

	// Type returns the type identifier for this strategy
	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(total money.Money, participants []SplitInput) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEqual:
		return &EqualStrategy{}, nil
	case SplitTypeExact:
		return &ExactStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	case SplitTypeShares:
		return &SharesStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split type: %s", splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(SplitType(splitType))
}

var (
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrDuplicateParticipant = errors.New("participant listed more than once")
	ErrShareMismatch        = errors.New("exact amounts must sum to total amount")
	ErrInvalidPercentage    = errors.New("percentages must sum to 100")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrInvalidShares        = errors.New("share weights must be positive")
	ErrMissingExactAmount   = errors.New("exact amount required for all participants")
	ErrMissingPercentage    = errors.New("percentage required for all participants")
	ErrMissingShares        = errors.New("share weight required for all participants")
)

// validateCommon checks the constraints shared by every strategy:
// a positive total and a non-empty, duplicate-free participant set.
func validateCommon(total money.Money, participants []SplitInput) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if !total.IsPositive() {
		return money.ErrInvalidAmount
	}
	seen := make(map[uuid.UUID]struct{}, len(participants))
	for _, p := range participants {
		if _, dup := seen[p.MemberID]; dup {
			return ErrDuplicateParticipant
		}
		seen[p.MemberID] = struct{}{}
	}
	return nil
}

// distributeRemainder hands out a rounding residue one minor unit at a time
// to the earliest participants in declared order. Floored proportional shares
// always leave a residue smaller than the participant count, so each
// participant gains at most one unit.
func distributeRemainder(outputs []SplitOutput, remainder money.Money) {
	for i := 0; remainder > 0; i++ {
		outputs[i].AmountOwed++
		remainder--
	}
}
