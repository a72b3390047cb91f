package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/datagateway"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
)

type DeployParams struct {
	Creator common.Address
	// InitialMinter receives the minter role at construction so issuance can
	// start without a separate grant call.
	InitialMinter common.Address
	BaseURIPrefix string
}

// Deploy constructs a new issuance authority. The deploying principal becomes
// an irrevocable admin, the initial minter gets the minter role, and the
// admin role administers the minter role. Deploy runs once per authority; the
// address is derived from the creator the way contract addresses are.
func Deploy(ctx context.Context, issuanceDg datagateway.IssuanceDataGateway, params DeployParams) (*entity.Authority, error) {
	if params.Creator == zeroAddress {
		return nil, errors.Wrap(errs.InvalidArgument, "creator must not be the zero principal")
	}
	if params.InitialMinter == zeroAddress {
		return nil, errors.Wrap(errs.InvalidArgument, "initial minter must not be the zero principal")
	}

	address := crypto.CreateAddress(params.Creator, 0)

	dgTx, err := issuanceDg.BeginIssuanceTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin issuance transaction")
	}
	defer func() {
		_ = dgTx.Rollback(ctx)
	}()

	if _, err := dgTx.GetAuthority(ctx, address); err == nil {
		return nil, errors.Errorf("authority %s already exists", address)
	} else if !errors.Is(err, errs.NotFound) {
		return nil, errors.Wrap(err, "failed to check existing authority")
	}

	now := time.Now().UTC()
	authority := entity.Authority{
		Address:       address,
		Creator:       params.Creator,
		BaseURIPrefix: params.BaseURIPrefix,
		NextTokenID:   uint256.NewInt(0),
		CreatedAt:     now,
	}
	if err := dgTx.CreateAuthority(ctx, authority); err != nil {
		return nil, errors.Wrap(err, "failed to create authority")
	}

	if err := dgTx.CreateRoleAdminRule(ctx, entity.RoleAdminRule{
		Authority: address,
		Role:      entity.RoleMinter,
		AdminRole: entity.RoleAdmin,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to create role admin rule")
	}

	if err := dgTx.AddRoleMember(ctx, entity.RoleMember{
		Authority: address,
		Role:      entity.RoleAdmin,
		Principal: params.Creator,
		Immutable: true,
		GrantedAt: now,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to add creator admin membership")
	}
	if _, err := dgTx.AppendEvent(ctx, entity.Event{
		Authority: address,
		Type:      entity.EventRoleGranted,
		Operator:  params.Creator,
		Payload: entity.EventPayload{
			Principal: &params.Creator,
			Role:      entity.RoleAdmin,
		},
		CreatedAt: now,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to append event")
	}

	if err := dgTx.AddRoleMember(ctx, entity.RoleMember{
		Authority: address,
		Role:      entity.RoleMinter,
		Principal: params.InitialMinter,
		GrantedAt: now,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to add initial minter membership")
	}
	if _, err := dgTx.AppendEvent(ctx, entity.Event{
		Authority: address,
		Type:      entity.EventRoleGranted,
		Operator:  params.Creator,
		Payload: entity.EventPayload{
			Principal: &params.InitialMinter,
			Role:      entity.RoleMinter,
		},
		CreatedAt: now,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to append event")
	}

	if err := dgTx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit issuance transaction")
	}
	return &authority, nil
}
