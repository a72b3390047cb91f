package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/datagateway"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
)

func (r *Repository) CreditBalance(ctx context.Context, arg datagateway.CreditBalanceParams) error {
	_, err := r.q().Exec(ctx, `
		INSERT INTO issuance_balances (authority, owner, token_id, amount)
		VALUES ($1, $2, $3::numeric, $4::numeric)
		ON CONFLICT (authority, owner, token_id)
		DO UPDATE SET amount = issuance_balances.amount + EXCLUDED.amount`,
		addressToString(arg.Authority),
		addressToString(arg.Owner),
		uint256ToString(arg.TokenID),
		uint256ToString(arg.Amount),
	)
	if err != nil {
		return errors.Wrap(err, "failed to credit balance")
	}
	return nil
}

func (r *Repository) GetBalance(ctx context.Context, arg datagateway.GetBalanceParams) (*uint256.Int, error) {
	var amountStr string
	err := r.q().QueryRow(ctx, `
		SELECT amount::text FROM issuance_balances
		WHERE authority = $1 AND owner = $2 AND token_id = $3::numeric`,
		addressToString(arg.Authority),
		addressToString(arg.Owner),
		uint256ToString(arg.TokenID),
	).Scan(&amountStr)
	if err != nil {
		// owners without a row hold a zero balance
		if errors.Is(err, pgx.ErrNoRows) {
			return uint256.NewInt(0), nil
		}
		return nil, errors.Wrap(err, "failed to get balance")
	}
	amount, err := uint256FromString(amountStr)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return amount, nil
}

func (r *Repository) GetBalancesByOwner(ctx context.Context, authority, owner common.Address) ([]entity.Balance, error) {
	rows, err := r.q().Query(ctx, `
		SELECT token_id::text, amount::text FROM issuance_balances
		WHERE authority = $1 AND owner = $2
		ORDER BY token_id`,
		addressToString(authority),
		addressToString(owner),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query balances")
	}
	defer rows.Close()

	var balances []entity.Balance
	for rows.Next() {
		var tokenIDStr, amountStr string
		if err := rows.Scan(&tokenIDStr, &amountStr); err != nil {
			return nil, errors.Wrap(err, "failed to scan balance")
		}
		tokenID, err := uint256FromString(tokenIDStr)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		amount, err := uint256FromString(amountStr)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		balances = append(balances, entity.Balance{
			Authority: authority,
			Owner:     owner,
			TokenID:   tokenID,
			Amount:    amount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate balances")
	}
	return balances, nil
}

func (r *Repository) SetTokenURI(ctx context.Context, arg datagateway.SetTokenURIParams) error {
	_, err := r.q().Exec(ctx, `
		INSERT INTO issuance_token_uris (authority, token_id, uri)
		VALUES ($1, $2::numeric, $3)
		ON CONFLICT (authority, token_id) DO UPDATE SET uri = EXCLUDED.uri`,
		addressToString(arg.Authority),
		uint256ToString(arg.TokenID),
		arg.URI,
	)
	if err != nil {
		return errors.Wrap(err, "failed to set token uri")
	}
	return nil
}

func (r *Repository) GetTokenURI(ctx context.Context, arg datagateway.GetTokenURIParams) (string, error) {
	var uri string
	err := r.q().QueryRow(ctx, `
		SELECT uri FROM issuance_token_uris
		WHERE authority = $1 AND token_id = $2::numeric`,
		addressToString(arg.Authority),
		uint256ToString(arg.TokenID),
	).Scan(&uri)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errors.WithStack(errs.NotFound)
		}
		return "", errors.Wrap(err, "failed to get token uri")
	}
	return uri, nil
}

func (r *Repository) SetOperatorApproval(ctx context.Context, arg entity.OperatorApproval) error {
	_, err := r.q().Exec(ctx, `
		INSERT INTO issuance_operator_approvals (authority, owner, operator, approved)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (authority, owner, operator) DO UPDATE SET approved = EXCLUDED.approved`,
		addressToString(arg.Authority),
		addressToString(arg.Owner),
		addressToString(arg.Operator),
		arg.Approved,
	)
	if err != nil {
		return errors.Wrap(err, "failed to set operator approval")
	}
	return nil
}

func (r *Repository) IsApprovedForAll(ctx context.Context, arg datagateway.OperatorApprovalParams) (bool, error) {
	var approved bool
	err := r.q().QueryRow(ctx, `
		SELECT approved FROM issuance_operator_approvals
		WHERE authority = $1 AND owner = $2 AND operator = $3`,
		addressToString(arg.Authority),
		addressToString(arg.Owner),
		addressToString(arg.Operator),
	).Scan(&approved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to get operator approval")
	}
	return approved, nil
}
