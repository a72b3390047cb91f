package entity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Role is a named permission bucket. Membership is tracked per authority in
// RoleMember rows; which role may grant/revoke a role is tracked in
// RoleAdminRule rows.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMinter Role = "minter"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMinter:
		return true
	}
	return false
}

// Authority is one deployed token issuance authority. NextTokenID is the
// monotonic identifier counter: every issued asset consumes exactly one value
// and advances it by one. Values are never reused or decremented.
type Authority struct {
	Address       common.Address
	Creator       common.Address
	BaseURIPrefix string
	NextTokenID   *uint256.Int
	CreatedAt     time.Time
}

type RoleMember struct {
	Authority common.Address
	Role      Role
	Principal common.Address
	// Immutable marks the creator's admin membership written at construction.
	// No operation removes it.
	Immutable bool
	GrantedAt time.Time
}

// RoleAdminRule maps a role to the role authorized to grant and revoke it.
type RoleAdminRule struct {
	Authority common.Address
	Role      Role
	AdminRole Role
}

type Balance struct {
	Authority common.Address
	Owner     common.Address
	TokenID   *uint256.Int
	Amount    *uint256.Int
}

type TokenURI struct {
	Authority common.Address
	TokenID   *uint256.Int
	URI       string
}

type OperatorApproval struct {
	Authority common.Address
	Owner     common.Address
	Operator  common.Address
	Approved  bool
}
