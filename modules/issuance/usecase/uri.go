package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/datagateway"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
)

// SetBaseURIPrefix replaces the authority-wide uri prefix used when a token
// has no stored per-token uri. The caller must hold the admin role.
func (u *Usecase) SetBaseURIPrefix(ctx context.Context, caller common.Address, prefix string) error {
	return u.withTx(ctx, func(dg datagateway.IssuanceDataGatewayWithTx) ([]entity.Event, error) {
		if err := u.requireRole(ctx, dg, entity.RoleAdmin, caller); err != nil {
			return nil, errors.WithStack(err)
		}

		if err := dg.SetBaseURIPrefix(ctx, u.authority, prefix); err != nil {
			return nil, errors.Wrap(err, "failed to set base uri prefix")
		}

		event := entity.Event{
			Authority: u.authority,
			Type:      entity.EventURIPrefixSet,
			Operator:  caller,
			Payload: entity.EventPayload{
				URIPrefix: &prefix,
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

// ResolveURI returns the stored per-token uri, or the authority prefix
// concatenated with the decimal token id when none was stored. It performs no
// existence check: ids that were never issued still resolve to the fallback.
func (u *Usecase) ResolveURI(ctx context.Context, tokenID *uint256.Int) (string, error) {
	uri, err := u.issuanceDg.GetTokenURI(ctx, datagateway.GetTokenURIParams{
		Authority: u.authority,
		TokenID:   tokenID,
	})
	if err == nil {
		return uri, nil
	}
	if !errors.Is(err, errs.NotFound) {
		return "", errors.Wrap(err, "failed to get token uri")
	}

	authority, err := u.issuanceDg.GetAuthority(ctx, u.authority)
	if err != nil {
		return "", errors.Wrap(err, "failed to get authority")
	}
	return authority.BaseURIPrefix + tokenID.Dec(), nil
}
