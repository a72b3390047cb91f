package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/openmint/issuer-node/modules/issuance/datagateway"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
)

func (r *Repository) CreateRoleAdminRule(ctx context.Context, arg entity.RoleAdminRule) error {
	_, err := r.q().Exec(ctx, `
		INSERT INTO issuance_role_admin_rules (authority, role, admin_role)
		VALUES ($1, $2, $3)
		ON CONFLICT (authority, role) DO UPDATE SET admin_role = EXCLUDED.admin_role`,
		addressToString(arg.Authority),
		arg.Role.String(),
		arg.AdminRole.String(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert role admin rule")
	}
	return nil
}

func (r *Repository) GetRoleAdminRule(ctx context.Context, authority common.Address, role entity.Role) (entity.Role, error) {
	var adminRole string
	err := r.q().QueryRow(ctx, `
		SELECT admin_role FROM issuance_role_admin_rules
		WHERE authority = $1 AND role = $2`,
		addressToString(authority),
		role.String(),
	).Scan(&adminRole)
	if err != nil {
		// roles without an explicit rule are governed by the admin role
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.RoleAdmin, nil
		}
		return "", errors.Wrap(err, "failed to get role admin rule")
	}
	return entity.Role(adminRole), nil
}

func (r *Repository) AddRoleMember(ctx context.Context, arg entity.RoleMember) error {
	_, err := r.q().Exec(ctx, `
		INSERT INTO issuance_role_members (authority, role, principal, immutable, granted_at)
		VALUES ($1, $2, $3, $4, $5)`,
		addressToString(arg.Authority),
		arg.Role.String(),
		addressToString(arg.Principal),
		arg.Immutable,
		arg.GrantedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert role member")
	}
	return nil
}

func (r *Repository) RemoveRoleMember(ctx context.Context, arg datagateway.RemoveRoleMemberParams) (int64, error) {
	tag, err := r.q().Exec(ctx, `
		DELETE FROM issuance_role_members
		WHERE authority = $1 AND role = $2 AND principal = $3 AND NOT immutable`,
		addressToString(arg.Authority),
		arg.Role.String(),
		addressToString(arg.Principal),
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete role member")
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) HasRole(ctx context.Context, arg datagateway.HasRoleParams) (bool, error) {
	var exists bool
	err := r.q().QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM issuance_role_members
			WHERE authority = $1 AND role = $2 AND principal = $3
		)`,
		addressToString(arg.Authority),
		arg.Role.String(),
		addressToString(arg.Principal),
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check role membership")
	}
	return exists, nil
}

func (r *Repository) GetRoleMembers(ctx context.Context, authority common.Address, role entity.Role) ([]entity.RoleMember, error) {
	rows, err := r.q().Query(ctx, `
		SELECT authority, role, principal, immutable, granted_at
		FROM issuance_role_members
		WHERE authority = $1 AND role = $2
		ORDER BY granted_at`,
		addressToString(authority),
		role.String(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query role members")
	}
	defer rows.Close()

	var members []entity.RoleMember
	for rows.Next() {
		var (
			authorityStr string
			roleStr      string
			principalStr string
			immutable    bool
			grantedAt    time.Time
		)
		if err := rows.Scan(&authorityStr, &roleStr, &principalStr, &immutable, &grantedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan role member")
		}
		authorityAddr, err := addressFromString(authorityStr)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		principal, err := addressFromString(principalStr)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		members = append(members, entity.RoleMember{
			Authority: authorityAddr,
			Role:      entity.Role(roleStr),
			Principal: principal,
			Immutable: immutable,
			GrantedAt: grantedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate role members")
	}
	return members, nil
}
