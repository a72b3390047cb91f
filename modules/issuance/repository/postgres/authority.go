package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
)

func (r *Repository) CreateAuthority(ctx context.Context, arg entity.Authority) error {
	_, err := r.q().Exec(ctx, `
		INSERT INTO issuance_authorities (address, creator, base_uri_prefix, next_token_id, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5)`,
		addressToString(arg.Address),
		addressToString(arg.Creator),
		arg.BaseURIPrefix,
		uint256ToString(arg.NextTokenID),
		arg.CreatedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert authority")
	}
	return nil
}

func (r *Repository) GetAuthority(ctx context.Context, address common.Address) (*entity.Authority, error) {
	row := r.q().QueryRow(ctx, `
		SELECT address, creator, base_uri_prefix, next_token_id::text, created_at
		FROM issuance_authorities
		WHERE address = $1`,
		addressToString(address),
	)
	return scanAuthority(row)
}

func (r *Repository) GetLatestAuthority(ctx context.Context) (*entity.Authority, error) {
	row := r.q().QueryRow(ctx, `
		SELECT address, creator, base_uri_prefix, next_token_id::text, created_at
		FROM issuance_authorities
		ORDER BY created_at DESC
		LIMIT 1`,
	)
	return scanAuthority(row)
}

// GetAuthorityForUpdate takes a row-level lock on the authority until the
// current transaction ends. Callers must be inside a transaction.
func (r *Repository) GetAuthorityForUpdate(ctx context.Context, address common.Address) (*entity.Authority, error) {
	row := r.q().QueryRow(ctx, `
		SELECT address, creator, base_uri_prefix, next_token_id::text, created_at
		FROM issuance_authorities
		WHERE address = $1
		FOR UPDATE`,
		addressToString(address),
	)
	return scanAuthority(row)
}

func scanAuthority(row pgx.Row) (*entity.Authority, error) {
	var (
		addressStr string
		creatorStr string
		prefix     string
		nextIDStr  string
		createdAt  time.Time
	)
	if err := row.Scan(&addressStr, &creatorStr, &prefix, &nextIDStr, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to scan authority")
	}
	address, err := addressFromString(addressStr)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	creator, err := addressFromString(creatorStr)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	nextID, err := uint256FromString(nextIDStr)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &entity.Authority{
		Address:       address,
		Creator:       creator,
		BaseURIPrefix: prefix,
		NextTokenID:   nextID,
		CreatedAt:     createdAt,
	}, nil
}

func (r *Repository) SetNextTokenID(ctx context.Context, address common.Address, next *uint256.Int) error {
	tag, err := r.q().Exec(ctx, `
		UPDATE issuance_authorities SET next_token_id = $2::numeric WHERE address = $1`,
		addressToString(address),
		uint256ToString(next),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update next token id")
	}
	if tag.RowsAffected() == 0 {
		return errors.WithStack(errs.NotFound)
	}
	return nil
}

func (r *Repository) SetBaseURIPrefix(ctx context.Context, address common.Address, prefix string) error {
	tag, err := r.q().Exec(ctx, `
		UPDATE issuance_authorities SET base_uri_prefix = $2 WHERE address = $1`,
		addressToString(address),
		prefix,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update base uri prefix")
	}
	if tag.RowsAffected() == 0 {
		return errors.WithStack(errs.NotFound)
	}
	return nil
}
