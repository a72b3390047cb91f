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
	"github.com/shopspring/decimal"
)

var zeroAddress common.Address

type IssueSingleParams struct {
	Caller   common.Address
	Receiver common.Address
	// Claimable grants the caller operator approval over the receiver's
	// holdings, so the caller can later move the asset on the receiver's
	// behalf.
	Claimable bool
	Quantity  *uint256.Int
	URI       string
}

type IssueSingleResult struct {
	TokenID *uint256.Int
	Events  []entity.Event
}

// IssueSingle allocates the next token id and credits quantity units of it to
// the receiver. The allocated id is observable through the emitted transfer
// event.
func (u *Usecase) IssueSingle(ctx context.Context, params IssueSingleParams) (*IssueSingleResult, error) {
	var result IssueSingleResult
	err := u.withTx(ctx, func(dg datagateway.IssuanceDataGatewayWithTx) ([]entity.Event, error) {
		// the role gate is checked before anything else, so unauthorized
		// callers get NotAuthorized regardless of receiver and quantities
		if err := u.requireRole(ctx, dg, entity.RoleMinter, params.Caller); err != nil {
			return nil, errors.WithStack(err)
		}
		if params.Receiver == zeroAddress {
			return nil, errors.Wrap(errs.InvalidReceiver, "receiver must not be the zero principal")
		}

		authority, err := dg.GetAuthorityForUpdate(ctx, u.authority)
		if err != nil {
			return nil, errors.Wrap(err, "failed to lock authority")
		}
		tokenID := authority.NextTokenID.Clone()
		next := new(uint256.Int).AddUint64(tokenID, 1)
		if err := dg.SetNextTokenID(ctx, u.authority, next); err != nil {
			return nil, errors.Wrap(err, "failed to advance token id counter")
		}

		if err := dg.CreditBalance(ctx, datagateway.CreditBalanceParams{
			Authority: u.authority,
			Owner:     params.Receiver,
			TokenID:   tokenID,
			Amount:    params.Quantity,
		}); err != nil {
			return nil, errors.Wrap(err, "failed to credit balance")
		}
		if params.URI != "" {
			if err := dg.SetTokenURI(ctx, datagateway.SetTokenURIParams{
				Authority: u.authority,
				TokenID:   tokenID,
				URI:       params.URI,
			}); err != nil {
				return nil, errors.Wrap(err, "failed to set token uri")
			}
		}

		now := time.Now().UTC()
		events := make([]entity.Event, 0, 2)

		if params.Claimable {
			claimEvent, err := u.approveClaim(ctx, dg, params.Receiver, params.Caller, now)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			events = append(events, *claimEvent)
		}

		from := zeroAddress
		transferEvent := entity.Event{
			Authority: u.authority,
			Type:      entity.EventTransferSingle,
			Operator:  params.Caller,
			Payload: entity.EventPayload{
				From:     &from,
				To:       &params.Receiver,
				TokenIDs: []*uint256.Int{tokenID},
				Amounts:  []*uint256.Int{params.Quantity},
				URIs:     []string{params.URI},
			},
			CreatedAt: now,
		}
		sequence, err := dg.AppendEvent(ctx, transferEvent)
		if err != nil {
			return nil, errors.Wrap(err, "failed to append event")
		}
		transferEvent.Sequence = sequence
		events = append(events, transferEvent)

		result = IssueSingleResult{
			TokenID: tokenID,
			Events:  events,
		}
		return events, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &result, nil
}

type IssueBatchParams struct {
	Caller     common.Address
	Receiver   common.Address
	Claimable  bool
	Quantities []*uint256.Int
	// Prices is accepted for call-shape compatibility with external mint
	// pipelines and recorded in the event payload verbatim. No pricing,
	// payment, or accounting logic consumes it.
	Prices []decimal.Decimal
	URIs   []string
}

type IssueBatchResult struct {
	TokenIDs []*uint256.Int
	Events   []entity.Event
}

// IssueBatch allocates len(Quantities) consecutive token ids and credits them
// all to one receiver. The batch is atomic: any failure leaves the counter,
// balances, and uri storage untouched.
func (u *Usecase) IssueBatch(ctx context.Context, params IssueBatchParams) (*IssueBatchResult, error) {
	var result IssueBatchResult
	err := u.withTx(ctx, func(dg datagateway.IssuanceDataGatewayWithTx) ([]entity.Event, error) {
		// preconditions are checked in a fixed order: role gate, receiver,
		// then argument shape. All of them run before any write, so a
		// rejected batch leaves the counter untouched.
		if err := u.requireRole(ctx, dg, entity.RoleMinter, params.Caller); err != nil {
			return nil, errors.WithStack(err)
		}
		if params.Receiver == zeroAddress {
			return nil, errors.Wrap(errs.InvalidReceiver, "receiver must not be the zero principal")
		}
		if len(params.Quantities) != len(params.Prices) || len(params.Quantities) != len(params.URIs) {
			return nil, errors.Wrapf(errs.LengthMismatch,
				"quantities, prices and uris must have equal lengths, got %d/%d/%d",
				len(params.Quantities), len(params.Prices), len(params.URIs))
		}

		authority, err := dg.GetAuthorityForUpdate(ctx, u.authority)
		if err != nil {
			return nil, errors.Wrap(err, "failed to lock authority")
		}

		count := uint64(len(params.Quantities))
		tokenIDs := make([]*uint256.Int, 0, count)
		for i := uint64(0); i < count; i++ {
			tokenIDs = append(tokenIDs, new(uint256.Int).AddUint64(authority.NextTokenID, i))
		}
		next := new(uint256.Int).AddUint64(authority.NextTokenID, count)
		if err := dg.SetNextTokenID(ctx, u.authority, next); err != nil {
			return nil, errors.Wrap(err, "failed to advance token id counter")
		}

		for i, tokenID := range tokenIDs {
			if err := dg.CreditBalance(ctx, datagateway.CreditBalanceParams{
				Authority: u.authority,
				Owner:     params.Receiver,
				TokenID:   tokenID,
				Amount:    params.Quantities[i],
			}); err != nil {
				return nil, errors.Wrapf(err, "failed to credit balance for token %s", tokenID)
			}
			if params.URIs[i] == "" {
				continue
			}
			if err := dg.SetTokenURI(ctx, datagateway.SetTokenURIParams{
				Authority: u.authority,
				TokenID:   tokenID,
				URI:       params.URIs[i],
			}); err != nil {
				return nil, errors.Wrapf(err, "failed to set token uri for token %s", tokenID)
			}
		}

		now := time.Now().UTC()
		events := make([]entity.Event, 0, 2)

		if params.Claimable {
			claimEvent, err := u.approveClaim(ctx, dg, params.Receiver, params.Caller, now)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			events = append(events, *claimEvent)
		}

		from := zeroAddress
		transferEvent := entity.Event{
			Authority: u.authority,
			Type:      entity.EventTransferBatch,
			Operator:  params.Caller,
			Payload: entity.EventPayload{
				From:     &from,
				To:       &params.Receiver,
				TokenIDs: tokenIDs,
				Amounts:  params.Quantities,
				URIs:     params.URIs,
				Prices:   params.Prices,
			},
			CreatedAt: now,
		}
		sequence, err := dg.AppendEvent(ctx, transferEvent)
		if err != nil {
			return nil, errors.Wrap(err, "failed to append event")
		}
		transferEvent.Sequence = sequence
		events = append(events, transferEvent)

		result = IssueBatchResult{
			TokenIDs: tokenIDs,
			Events:   events,
		}
		return events, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &result, nil
}

// approveClaim grants the minter operator approval over the receiver's
// holdings so the minted assets can be claimed back later.
func (u *Usecase) approveClaim(ctx context.Context, dg datagateway.IssuanceDataGateway, owner, operator common.Address, now time.Time) (*entity.Event, error) {
	if err := dg.SetOperatorApproval(ctx, entity.OperatorApproval{
		Authority: u.authority,
		Owner:     owner,
		Operator:  operator,
		Approved:  true,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to set operator approval")
	}

	approved := true
	event := entity.Event{
		Authority: u.authority,
		Type:      entity.EventApprovalForAll,
		Operator:  operator,
		Payload: entity.EventPayload{
			From:     &owner,
			To:       &operator,
			Approved: &approved,
		},
		CreatedAt: now,
	}
	sequence, err := dg.AppendEvent(ctx, event)
	if err != nil {
		return nil, errors.Wrap(err, "failed to append event")
	}
	event.Sequence = sequence
	return &event, nil
}
