// Package memory provides an in-memory IssuanceDataGateway with the same
// transactional all-or-nothing semantics as the postgres repository. It backs
// unit tests and local development without a database.
package memory

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/datagateway"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
)

type roleKey struct {
	authority common.Address
	role      entity.Role
}

type memberKey struct {
	authority common.Address
	role      entity.Role
	principal common.Address
}

type balanceKey struct {
	authority common.Address
	owner     common.Address
	tokenID   string
}

type uriKey struct {
	authority common.Address
	tokenID   string
}

type approvalKey struct {
	authority common.Address
	owner     common.Address
	operator  common.Address
}

type state struct {
	authorities    map[common.Address]entity.Authority
	roleAdminRules map[roleKey]entity.Role
	roleMembers    map[memberKey]entity.RoleMember
	balances       map[balanceKey]*uint256.Int
	tokenURIs      map[uriKey]string
	approvals      map[approvalKey]bool
	events         []entity.Event
}

func newState() *state {
	return &state{
		authorities:    make(map[common.Address]entity.Authority),
		roleAdminRules: make(map[roleKey]entity.Role),
		roleMembers:    make(map[memberKey]entity.RoleMember),
		balances:       make(map[balanceKey]*uint256.Int),
		tokenURIs:      make(map[uriKey]string),
		approvals:      make(map[approvalKey]bool),
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.authorities {
		v.NextTokenID = v.NextTokenID.Clone()
		out.authorities[k] = v
	}
	for k, v := range s.roleAdminRules {
		out.roleAdminRules[k] = v
	}
	for k, v := range s.roleMembers {
		out.roleMembers[k] = v
	}
	for k, v := range s.balances {
		out.balances[k] = v.Clone()
	}
	for k, v := range s.tokenURIs {
		out.tokenURIs[k] = v
	}
	for k, v := range s.approvals {
		out.approvals[k] = v
	}
	out.events = append(out.events, s.events...)
	return out
}

// Repository holds state behind a mutex that is held for the whole lifetime
// of an open transaction, mirroring the row lock the postgres repository
// takes on the authority. Transactions operate on a deep copy and swap it in
// on commit.
type Repository struct {
	mu    sync.Mutex
	state *state

	root  *Repository
	draft *state
	done  bool
}

func NewRepository() *Repository {
	return &Repository{
		state: newState(),
	}
}

var _ datagateway.IssuanceDataGateway = (*Repository)(nil)

func (r *Repository) withState(fn func(s *state) error) error {
	if r.root != nil {
		if r.done {
			return errors.New("transaction already closed")
		}
		return fn(r.draft)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.state)
}

func (r *Repository) BeginIssuanceTx(ctx context.Context) (datagateway.IssuanceDataGatewayWithTx, error) {
	if r.root != nil {
		return nil, errors.New("nested transactions are not supported")
	}
	r.mu.Lock()
	return &Repository{
		root:  r,
		draft: r.state.clone(),
	}, nil
}

func (r *Repository) Commit(ctx context.Context) error {
	if r.root == nil || r.done {
		return nil
	}
	r.root.state = r.draft
	r.done = true
	r.root.mu.Unlock()
	return nil
}

func (r *Repository) Rollback(ctx context.Context) error {
	if r.root == nil || r.done {
		return nil
	}
	r.done = true
	r.root.mu.Unlock()
	return nil
}

func (r *Repository) CreateAuthority(ctx context.Context, arg entity.Authority) error {
	return r.withState(func(s *state) error {
		if _, ok := s.authorities[arg.Address]; ok {
			return errors.Errorf("authority %s already exists", arg.Address)
		}
		arg.NextTokenID = arg.NextTokenID.Clone()
		s.authorities[arg.Address] = arg
		return nil
	})
}

func (r *Repository) getAuthority(s *state, address common.Address) (*entity.Authority, error) {
	authority, ok := s.authorities[address]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	authority.NextTokenID = authority.NextTokenID.Clone()
	return &authority, nil
}

func (r *Repository) GetAuthority(ctx context.Context, address common.Address) (out *entity.Authority, err error) {
	err = r.withState(func(s *state) error {
		out, err = r.getAuthority(s, address)
		return err
	})
	return out, err
}

func (r *Repository) GetLatestAuthority(ctx context.Context) (out *entity.Authority, err error) {
	err = r.withState(func(s *state) error {
		for _, authority := range s.authorities {
			if out == nil || authority.CreatedAt.After(out.CreatedAt) {
				authority.NextTokenID = authority.NextTokenID.Clone()
				out = &authority
			}
		}
		if out == nil {
			return errors.WithStack(errs.NotFound)
		}
		return nil
	})
	return out, err
}

func (r *Repository) GetAuthorityForUpdate(ctx context.Context, address common.Address) (*entity.Authority, error) {
	// the transaction already holds the repository mutex
	return r.GetAuthority(ctx, address)
}

func (r *Repository) SetNextTokenID(ctx context.Context, address common.Address, next *uint256.Int) error {
	return r.withState(func(s *state) error {
		authority, ok := s.authorities[address]
		if !ok {
			return errors.WithStack(errs.NotFound)
		}
		authority.NextTokenID = next.Clone()
		s.authorities[address] = authority
		return nil
	})
}

func (r *Repository) SetBaseURIPrefix(ctx context.Context, address common.Address, prefix string) error {
	return r.withState(func(s *state) error {
		authority, ok := s.authorities[address]
		if !ok {
			return errors.WithStack(errs.NotFound)
		}
		authority.BaseURIPrefix = prefix
		s.authorities[address] = authority
		return nil
	})
}

func (r *Repository) CreateRoleAdminRule(ctx context.Context, arg entity.RoleAdminRule) error {
	return r.withState(func(s *state) error {
		s.roleAdminRules[roleKey{arg.Authority, arg.Role}] = arg.AdminRole
		return nil
	})
}

func (r *Repository) GetRoleAdminRule(ctx context.Context, authority common.Address, role entity.Role) (out entity.Role, err error) {
	err = r.withState(func(s *state) error {
		adminRole, ok := s.roleAdminRules[roleKey{authority, role}]
		if !ok {
			adminRole = entity.RoleAdmin
		}
		out = adminRole
		return nil
	})
	return out, err
}

func (r *Repository) AddRoleMember(ctx context.Context, arg entity.RoleMember) error {
	return r.withState(func(s *state) error {
		key := memberKey{arg.Authority, arg.Role, arg.Principal}
		if _, ok := s.roleMembers[key]; ok {
			return errors.Errorf("principal %s already holds role %s", arg.Principal, arg.Role)
		}
		s.roleMembers[key] = arg
		return nil
	})
}

func (r *Repository) RemoveRoleMember(ctx context.Context, arg datagateway.RemoveRoleMemberParams) (removed int64, err error) {
	err = r.withState(func(s *state) error {
		key := memberKey{arg.Authority, arg.Role, arg.Principal}
		member, ok := s.roleMembers[key]
		if !ok || member.Immutable {
			return nil
		}
		delete(s.roleMembers, key)
		removed = 1
		return nil
	})
	return removed, err
}

func (r *Repository) HasRole(ctx context.Context, arg datagateway.HasRoleParams) (out bool, err error) {
	err = r.withState(func(s *state) error {
		_, out = s.roleMembers[memberKey{arg.Authority, arg.Role, arg.Principal}]
		return nil
	})
	return out, err
}

func (r *Repository) GetRoleMembers(ctx context.Context, authority common.Address, role entity.Role) (out []entity.RoleMember, err error) {
	err = r.withState(func(s *state) error {
		for key, member := range s.roleMembers {
			if key.authority == authority && key.role == role {
				out = append(out, member)
			}
		}
		return nil
	})
	return out, err
}

func (r *Repository) CreditBalance(ctx context.Context, arg datagateway.CreditBalanceParams) error {
	return r.withState(func(s *state) error {
		key := balanceKey{arg.Authority, arg.Owner, arg.TokenID.Dec()}
		current, ok := s.balances[key]
		if !ok {
			current = uint256.NewInt(0)
		}
		s.balances[key] = new(uint256.Int).Add(current, arg.Amount)
		return nil
	})
}

func (r *Repository) GetBalance(ctx context.Context, arg datagateway.GetBalanceParams) (out *uint256.Int, err error) {
	err = r.withState(func(s *state) error {
		current, ok := s.balances[balanceKey{arg.Authority, arg.Owner, arg.TokenID.Dec()}]
		if !ok {
			current = uint256.NewInt(0)
		}
		out = current.Clone()
		return nil
	})
	return out, err
}

func (r *Repository) GetBalancesByOwner(ctx context.Context, authority, owner common.Address) (out []entity.Balance, err error) {
	err = r.withState(func(s *state) error {
		for key, amount := range s.balances {
			if key.authority != authority || key.owner != owner {
				continue
			}
			tokenID, err := uint256.FromDecimal(key.tokenID)
			if err != nil {
				return errors.Wrap(err, "corrupted balance key")
			}
			out = append(out, entity.Balance{
				Authority: authority,
				Owner:     owner,
				TokenID:   tokenID,
				Amount:    amount.Clone(),
			})
		}
		return nil
	})
	return out, err
}

func (r *Repository) SetTokenURI(ctx context.Context, arg datagateway.SetTokenURIParams) error {
	return r.withState(func(s *state) error {
		s.tokenURIs[uriKey{arg.Authority, arg.TokenID.Dec()}] = arg.URI
		return nil
	})
}

func (r *Repository) GetTokenURI(ctx context.Context, arg datagateway.GetTokenURIParams) (out string, err error) {
	err = r.withState(func(s *state) error {
		uri, ok := s.tokenURIs[uriKey{arg.Authority, arg.TokenID.Dec()}]
		if !ok {
			return errors.WithStack(errs.NotFound)
		}
		out = uri
		return nil
	})
	return out, err
}

func (r *Repository) SetOperatorApproval(ctx context.Context, arg entity.OperatorApproval) error {
	return r.withState(func(s *state) error {
		s.approvals[approvalKey{arg.Authority, arg.Owner, arg.Operator}] = arg.Approved
		return nil
	})
}

func (r *Repository) IsApprovedForAll(ctx context.Context, arg datagateway.OperatorApprovalParams) (out bool, err error) {
	err = r.withState(func(s *state) error {
		out = s.approvals[approvalKey{arg.Authority, arg.Owner, arg.Operator}]
		return nil
	})
	return out, err
}

func (r *Repository) AppendEvent(ctx context.Context, arg entity.Event) (sequence uint64, err error) {
	err = r.withState(func(s *state) error {
		arg.Sequence = uint64(len(s.events)) + 1
		s.events = append(s.events, arg)
		sequence = arg.Sequence
		return nil
	})
	return sequence, err
}

func (r *Repository) ListEvents(ctx context.Context, arg datagateway.ListEventsParams) (out []entity.Event, err error) {
	limit := arg.Limit
	if limit <= 0 {
		limit = 100
	}
	err = r.withState(func(s *state) error {
		for _, event := range s.events {
			if event.Authority != arg.Authority || event.Sequence <= arg.FromSequence {
				continue
			}
			out = append(out, event)
			if len(out) >= int(limit) {
				break
			}
		}
		return nil
	})
	return out, err
}
