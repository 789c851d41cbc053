package models

// ProductType classifies products.
type ProductType string

const (
	ProductTypeDevice  ProductType = "device"
	ProductTypeFashion ProductType = "fashion"
	ProductTypeFood    ProductType = "food"
	ProductTypeGeneral ProductType = "general"
)

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeDevice, ProductTypeFashion, ProductTypeFood, ProductTypeGeneral:
		return true
	}
	return false
}

// Role is the account role, fixed when the account is created.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller:
		return true
	}
	return false
}

// GroupBuyStatus is the lifecycle state of a group buy.
type GroupBuyStatus string

const (
	StatusRecruiting GroupBuyStatus = "recruiting"
	StatusConfirmed  GroupBuyStatus = "confirmed"
	StatusCompleted  GroupBuyStatus = "completed"
	StatusCancelled  GroupBuyStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s GroupBuyStatus) Valid() bool {
	switch s {
	case StatusRecruiting, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a group buy in state s may move to next.
// Staying in the same valid state is always allowed.
func (s GroupBuyStatus) CanTransitionTo(next GroupBuyStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	switch s {
	case StatusRecruiting:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	case StatusCompleted, StatusCancelled:
		return false
	}
	return false
}

// AcceptsParticipants reports whether new members may join in state s.
func (s GroupBuyStatus) AcceptsParticipants() bool {
	switch s {
	case StatusRecruiting:
		return true
	case StatusConfirmed, StatusCompleted, StatusCancelled:
		return false
	}
	return false
}
