package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/datagateway"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
)

// GrantMinter adds principal to the minter role. The caller must hold the
// role that administers minters.
func (u *Usecase) GrantMinter(ctx context.Context, caller, principal common.Address) error {
	return u.withTx(ctx, func(dg datagateway.IssuanceDataGatewayWithTx) ([]entity.Event, error) {
		if err := u.requireRoleAdmin(ctx, dg, entity.RoleMinter, caller); err != nil {
			return nil, errors.WithStack(err)
		}

		has, err := dg.HasRole(ctx, datagateway.HasRoleParams{
			Authority: u.authority,
			Role:      entity.RoleMinter,
			Principal: principal,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to check role membership")
		}
		if has {
			return nil, errors.Wrapf(errs.AlreadyMember, "principal %s already holds the minter role", principal)
		}

		now := time.Now().UTC()
		if err := dg.AddRoleMember(ctx, entity.RoleMember{
			Authority: u.authority,
			Role:      entity.RoleMinter,
			Principal: principal,
			GrantedAt: now,
		}); err != nil {
			return nil, errors.Wrap(err, "failed to add role member")
		}

		event := entity.Event{
			Authority: u.authority,
			Type:      entity.EventRoleGranted,
			Operator:  caller,
			Payload: entity.EventPayload{
				Principal: &principal,
				Role:      entity.RoleMinter,
			},
			CreatedAt: now,
		}
		sequence, err := dg.AppendEvent(ctx, event)
		if err != nil {
			return nil, errors.Wrap(err, "failed to append event")
		}
		event.Sequence = sequence
		return []entity.Event{event}, nil
	})
}

// RevokeMinter removes principal from the minter role. Revoking does not
// disturb balances already issued by the principal.
func (u *Usecase) RevokeMinter(ctx context.Context, caller, principal common.Address) error {
	return u.withTx(ctx, func(dg datagateway.IssuanceDataGatewayWithTx) ([]entity.Event, error) {
		if err := u.requireRoleAdmin(ctx, dg, entity.RoleMinter, caller); err != nil {
			return nil, errors.WithStack(err)
		}

		removed, err := dg.RemoveRoleMember(ctx, datagateway.RemoveRoleMemberParams{
			Authority: u.authority,
			Role:      entity.RoleMinter,
			Principal: principal,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to remove role member")
		}
		if removed == 0 {
			return nil, errors.Wrapf(errs.NotMember, "principal %s does not hold the minter role", principal)
		}

		event := entity.Event{
			Authority: u.authority,
			Type:      entity.EventRoleRevoked,
			Operator:  caller,
			Payload: entity.EventPayload{
				Principal: &principal,
				Role:      entity.RoleMinter,
			},
			CreatedAt: time.Now().UTC(),
		}
		sequence, err := dg.AppendEvent(ctx, event)
		if err != nil {
			return nil, errors.Wrap(err, "failed to append event")
		}
		event.Sequence = sequence
		return []entity.Event{event}, nil
	})
}

func (u *Usecase) HasRole(ctx context.Context, role entity.Role, principal common.Address) (bool, error) {
	if !role.IsValid() {
		return false, errors.Wrapf(errs.InvalidArgument, "unknown role %q", role)
	}
	has, err := u.issuanceDg.HasRole(ctx, datagateway.HasRoleParams{
		Authority: u.authority,
		Role:      role,
		Principal: principal,
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to check role membership")
	}
	return has, nil
}

func (u *Usecase) GetRoleMembers(ctx context.Context, role entity.Role) ([]entity.RoleMember, error) {
	if !role.IsValid() {
		return nil, errors.Wrapf(errs.InvalidArgument, "unknown role %q", role)
	}
	members, err := u.issuanceDg.GetRoleMembers(ctx, u.authority, role)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list role members")
	}
	return members, nil
}
