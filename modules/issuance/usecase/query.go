package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/openmint/issuer-node/modules/issuance/capability"
	"github.com/openmint/issuer-node/modules/issuance/datagateway"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
)

func (u *Usecase) GetAuthority(ctx context.Context) (*entity.Authority, error) {
	authority, err := u.issuanceDg.GetAuthority(ctx, u.authority)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get authority")
	}
	return authority, nil
}

func (u *Usecase) GetBalance(ctx context.Context, owner common.Address, tokenID *uint256.Int) (*uint256.Int, error) {
	balance, err := u.issuanceDg.GetBalance(ctx, datagateway.GetBalanceParams{
		Authority: u.authority,
		Owner:     owner,
		TokenID:   tokenID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return balance, nil
}

func (u *Usecase) GetBalancesByOwner(ctx context.Context, owner common.Address) ([]entity.Balance, error) {
	balances, err := u.issuanceDg.GetBalancesByOwner(ctx, u.authority, owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balances")
	}
	return balances, nil
}

func (u *Usecase) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	approved, err := u.issuanceDg.IsApprovedForAll(ctx, datagateway.OperatorApprovalParams{
		Authority: u.authority,
		Owner:     owner,
		Operator:  operator,
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to get operator approval")
	}
	return approved, nil
}

func (u *Usecase) ListEvents(ctx context.Context, fromSequence uint64, limit int32) ([]entity.Event, error) {
	events, err := u.issuanceDg.ListEvents(ctx, datagateway.ListEventsParams{
		Authority:    u.authority,
		FromSequence: fromSequence,
		Limit:        limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}
	return events, nil
}

// SupportsCapability reports whether the authority implements the queried
// capability. Unknown identifiers return false rather than an error.
func (u *Usecase) SupportsCapability(id capability.ID) bool {
	return capability.IsSupported(id)
}
