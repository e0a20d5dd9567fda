package group

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyName       = errors.New("group name can't be empty")
	ErrEmptyCurrency   = errors.New("group currency can't be empty")
	ErrNoMembers       = errors.New("group needs at least one member")
	ErrDuplicateMember = errors.New("duplicate member in group")
	ErrEmptyMemberName = errors.New("member name can't be empty")
	ErrUnknownMember   = errors.New("member is not part of the group")
)

// Member is an opaque identity plus a display label. No balance state lives
// here; everything a member owes or is owed is derived by the ledger.
type Member struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Group is an ordered set of members sharing expenses. The declared member
// order is load-bearing: remainder distribution, balance canonicalization and
// settlement tie-breaks all follow it, so membership is frozen once any
// expense references the group.
type Group struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"` // ISO code, opaque to the core
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// New validates and creates a group with the given members, preserving their
// declared order.
func New(name, currency string, members []Member) (*Group, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if currency == "" {
		return nil, ErrEmptyCurrency
	}
	if len(members) == 0 {
		return nil, ErrNoMembers
	}

	seen := make(map[uuid.UUID]struct{}, len(members))
	for _, m := range members {
		if m.Name == "" {
			return nil, ErrEmptyMemberName
		}
		if _, dup := seen[m.ID]; dup {
			return nil, ErrDuplicateMember
		}
		seen[m.ID] = struct{}{}
	}

	return &Group{
		ID:        uuid.New(),
		Name:      name,
		Currency:  currency,
		Members:   append([]Member(nil), members...),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// IsMember reports whether id belongs to the group.
func (g *Group) IsMember(id uuid.UUID) bool {
	return g.MemberIndex(id) >= 0
}

// MemberIndex returns the position of id in the declared member order,
// or -1 if id is not a member.
func (g *Group) MemberIndex(id uuid.UUID) int {
	for i, m := range g.Members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// MemberByID returns the member with the given id.
func (g *Group) MemberByID(id uuid.UUID) (Member, bool) {
	if i := g.MemberIndex(id); i >= 0 {
		return g.Members[i], true
	}
	return Member{}, false
}
