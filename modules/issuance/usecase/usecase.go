package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/datagateway"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
)

// Publisher delivers committed events to external observers. Publishing is
// best-effort and happens strictly after the transaction commits.
type Publisher interface {
	Publish(ctx context.Context, events ...entity.Event)
}

type Usecase struct {
	issuanceDg datagateway.IssuanceDataGateway
	authority  common.Address
	publisher  Publisher
}

func New(issuanceDg datagateway.IssuanceDataGateway, authority common.Address, publisher Publisher) *Usecase {
	return &Usecase{
		issuanceDg: issuanceDg,
		authority:  authority,
		publisher:  publisher,
	}
}

func (u *Usecase) Authority() common.Address {
	return u.authority
}

// withTx runs fn in a single transaction and publishes the events fn returns
// after a successful commit. Any error discards every write fn made.
func (u *Usecase) withTx(ctx context.Context, fn func(dg datagateway.IssuanceDataGatewayWithTx) ([]entity.Event, error)) error {
	dgTx, err := u.issuanceDg.BeginIssuanceTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin issuance transaction")
	}
	defer func() {
		_ = dgTx.Rollback(ctx)
	}()

	events, err := fn(dgTx)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := dgTx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit issuance transaction")
	}

	if u.publisher != nil && len(events) > 0 {
		u.publisher.Publish(ctx, events...)
	}
	return nil
}

func (u *Usecase) requireRole(ctx context.Context, dg datagateway.IssuanceDataGateway, role entity.Role, principal common.Address) error {
	has, err := dg.HasRole(ctx, datagateway.HasRoleParams{
		Authority: u.authority,
		Role:      role,
		Principal: principal,
	})
	if err != nil {
		return errors.Wrap(err, "failed to check role membership")
	}
	if !has {
		return errors.Wrapf(errs.NotAuthorized, "principal %s does not hold the %s role", principal, role)
	}
	return nil
}

// requireRoleAdmin checks that caller holds the role authorized to manage
// membership of role.
func (u *Usecase) requireRoleAdmin(ctx context.Context, dg datagateway.IssuanceDataGateway, role entity.Role, caller common.Address) error {
	adminRole, err := dg.GetRoleAdminRule(ctx, u.authority, role)
	if err != nil {
		return errors.Wrap(err, "failed to resolve role admin rule")
	}
	return u.requireRole(ctx, dg, adminRole, caller)
}
