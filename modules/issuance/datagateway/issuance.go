package datagateway

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
)

type IssuanceDataGateway interface {
	BeginIssuanceTx(ctx context.Context) (IssuanceDataGatewayWithTx, error)

	CreateAuthority(ctx context.Context, arg entity.Authority) error
	// GetAuthority returns errs.NotFound if no authority exists at the address.
	GetAuthority(ctx context.Context, address common.Address) (*entity.Authority, error)
	GetLatestAuthority(ctx context.Context) (*entity.Authority, error)
	// GetAuthorityForUpdate locks the authority row for the duration of the
	// current transaction. Every mutating operation goes through it, which
	// serializes token id allocation.
	GetAuthorityForUpdate(ctx context.Context, address common.Address) (*entity.Authority, error)
	SetNextTokenID(ctx context.Context, address common.Address, next *uint256.Int) error
	SetBaseURIPrefix(ctx context.Context, address common.Address, prefix string) error

	CreateRoleAdminRule(ctx context.Context, arg entity.RoleAdminRule) error
	// GetRoleAdminRule returns entity.RoleAdmin when no explicit rule exists.
	GetRoleAdminRule(ctx context.Context, authority common.Address, role entity.Role) (entity.Role, error)
	AddRoleMember(ctx context.Context, arg entity.RoleMember) error
	// RemoveRoleMember returns the number of removed memberships. Immutable
	// memberships are never removed.
	RemoveRoleMember(ctx context.Context, arg RemoveRoleMemberParams) (int64, error)
	HasRole(ctx context.Context, arg HasRoleParams) (bool, error)
	GetRoleMembers(ctx context.Context, authority common.Address, role entity.Role) ([]entity.RoleMember, error)

	CreditBalance(ctx context.Context, arg CreditBalanceParams) error
	GetBalance(ctx context.Context, arg GetBalanceParams) (*uint256.Int, error)
	GetBalancesByOwner(ctx context.Context, authority, owner common.Address) ([]entity.Balance, error)

	SetTokenURI(ctx context.Context, arg SetTokenURIParams) error
	// GetTokenURI returns errs.NotFound if no per-token uri was stored.
	GetTokenURI(ctx context.Context, arg GetTokenURIParams) (string, error)

	SetOperatorApproval(ctx context.Context, arg entity.OperatorApproval) error
	IsApprovedForAll(ctx context.Context, arg OperatorApprovalParams) (bool, error)

	// AppendEvent appends to the notification log and returns the assigned
	// sequence number.
	AppendEvent(ctx context.Context, arg entity.Event) (uint64, error)
	ListEvents(ctx context.Context, arg ListEventsParams) ([]entity.Event, error)
}

type IssuanceDataGatewayWithTx interface {
	IssuanceDataGateway
	Tx
}

type RemoveRoleMemberParams struct {
	Authority common.Address
	Role      entity.Role
	Principal common.Address
}

type HasRoleParams struct {
	Authority common.Address
	Role      entity.Role
	Principal common.Address
}

type CreditBalanceParams struct {
	Authority common.Address
	Owner     common.Address
	TokenID   *uint256.Int
	Amount    *uint256.Int
}

type GetBalanceParams struct {
	Authority common.Address
	Owner     common.Address
	TokenID   *uint256.Int
}

type SetTokenURIParams struct {
	Authority common.Address
	TokenID   *uint256.Int
	URI       string
}

type GetTokenURIParams struct {
	Authority common.Address
	TokenID   *uint256.Int
}

type OperatorApprovalParams struct {
	Authority common.Address
	Owner     common.Address
	Operator  common.Address
}

type ListEventsParams struct {
	Authority    common.Address
	FromSequence uint64
	Limit        int32
}
