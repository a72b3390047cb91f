package usecase

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/capability"
	"github.com/openmint/issuer-node/modules/issuance/datagateway"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
	"github.com/openmint/issuer-node/modules/issuance/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	creator  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	minter   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	receiver = common.HexToAddress("0x3333333333333333333333333333333333333333")
	stranger = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

type eventRecorder struct {
	events []entity.Event
}

func (r *eventRecorder) Publish(_ context.Context, events ...entity.Event) {
	r.events = append(r.events, events...)
}

func setup(t *testing.T) (*Usecase, *memory.Repository, *eventRecorder) {
	t.Helper()
	ctx := context.Background()
	repo := memory.NewRepository()
	authority, err := Deploy(ctx, repo, DeployParams{
		Creator:       creator,
		InitialMinter: minter,
		BaseURIPrefix: "https://meta.example.com/tokens/",
	})
	require.NoError(t, err)
	recorder := &eventRecorder{}
	return New(repo, authority.Address, recorder), repo, recorder
}

func nextTokenID(t *testing.T, u *Usecase) *uint256.Int {
	t.Helper()
	authority, err := u.GetAuthority(context.Background())
	require.NoError(t, err)
	return authority.NextTokenID
}

func TestDeploy(t *testing.T) {
	ctx := context.Background()
	u, repo, _ := setup(t)

	t.Run("creator is admin", func(t *testing.T) {
		has, err := u.HasRole(ctx, entity.RoleAdmin, creator)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("initial minter has minter role", func(t *testing.T) {
		has, err := u.HasRole(ctx, entity.RoleMinter, minter)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("counter starts at zero", func(t *testing.T) {
		assert.True(t, nextTokenID(t, u).IsZero())
	})

	t.Run("emits role granted events", func(t *testing.T) {
		events, err := u.ListEvents(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, entity.EventRoleGranted, events[0].Type)
		assert.Equal(t, entity.EventRoleGranted, events[1].Type)
	})

	t.Run("creator admin membership cannot be removed", func(t *testing.T) {
		removed, err := repo.RemoveRoleMember(ctx, datagateway.RemoveRoleMemberParams{
			Authority: u.Authority(),
			Role:      entity.RoleAdmin,
			Principal: creator,
		})
		require.NoError(t, err)
		assert.Zero(t, removed)

		has, err := u.HasRole(ctx, entity.RoleAdmin, creator)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("deploying twice for the same creator fails", func(t *testing.T) {
		_, err := Deploy(ctx, repo, DeployParams{
			Creator:       creator,
			InitialMinter: minter,
		})
		assert.Error(t, err)
	})
}

func TestGrantMinter(t *testing.T) {
	ctx := context.Background()

	t.Run("admin grants a new minter", func(t *testing.T) {
		u, _, recorder := setup(t)
		require.NoError(t, u.GrantMinter(ctx, creator, stranger))

		has, err := u.HasRole(ctx, entity.RoleMinter, stranger)
		require.NoError(t, err)
		assert.True(t, has)

		require.Len(t, recorder.events, 1)
		assert.Equal(t, entity.EventRoleGranted, recorder.events[0].Type)
		assert.Equal(t, entity.RoleMinter, recorder.events[0].Payload.Role)
	})

	t.Run("non-admin caller is rejected", func(t *testing.T) {
		u, _, recorder := setup(t)
		err := u.GrantMinter(ctx, minter, stranger)
		assert.ErrorIs(t, err, errs.NotAuthorized)
		assert.Empty(t, recorder.events)
	})

	t.Run("granting an existing member fails", func(t *testing.T) {
		u, _, _ := setup(t)
		err := u.GrantMinter(ctx, creator, minter)
		assert.ErrorIs(t, err, errs.AlreadyMember)
	})
}

func TestRevokeMinter(t *testing.T) {
	ctx := context.Background()

	t.Run("admin revokes a minter", func(t *testing.T) {
		u, _, recorder := setup(t)
		require.NoError(t, u.RevokeMinter(ctx, creator, minter))

		has, err := u.HasRole(ctx, entity.RoleMinter, minter)
		require.NoError(t, err)
		assert.False(t, has)

		require.Len(t, recorder.events, 1)
		assert.Equal(t, entity.EventRoleRevoked, recorder.events[0].Type)
	})

	t.Run("revoking a non-member fails", func(t *testing.T) {
		u, _, _ := setup(t)
		err := u.RevokeMinter(ctx, creator, stranger)
		assert.ErrorIs(t, err, errs.NotMember)
	})

	t.Run("non-admin caller is rejected", func(t *testing.T) {
		u, _, _ := setup(t)
		err := u.RevokeMinter(ctx, minter, minter)
		assert.ErrorIs(t, err, errs.NotAuthorized)
	})

	t.Run("revoked minter can no longer issue", func(t *testing.T) {
		u, _, _ := setup(t)
		require.NoError(t, u.RevokeMinter(ctx, creator, minter))

		_, err := u.IssueSingle(ctx, IssueSingleParams{
			Caller:   minter,
			Receiver: receiver,
			Quantity: uint256.NewInt(1),
		})
		assert.ErrorIs(t, err, errs.NotAuthorized)
	})

	t.Run("revoking does not disturb issued balances", func(t *testing.T) {
		u, _, _ := setup(t)
		result, err := u.IssueSingle(ctx, IssueSingleParams{
			Caller:   minter,
			Receiver: receiver,
			Quantity: uint256.NewInt(5),
		})
		require.NoError(t, err)
		require.NoError(t, u.RevokeMinter(ctx, creator, minter))

		balance, err := u.GetBalance(ctx, receiver, result.TokenID)
		require.NoError(t, err)
		assert.Equal(t, uint256.NewInt(5), balance)
	})
}

func TestIssueSingle(t *testing.T) {
	ctx := context.Background()

	t.Run("allocates monotonic token ids", func(t *testing.T) {
		u, _, _ := setup(t)
		for i := uint64(0); i < 3; i++ {
			result, err := u.IssueSingle(ctx, IssueSingleParams{
				Caller:   minter,
				Receiver: receiver,
				Quantity: uint256.NewInt(1),
			})
			require.NoError(t, err)
			assert.Equal(t, uint256.NewInt(i), result.TokenID)
		}
		assert.Equal(t, uint256.NewInt(3), nextTokenID(t, u))
	})

	t.Run("credits the receiver balance", func(t *testing.T) {
		u, _, _ := setup(t)
		result, err := u.IssueSingle(ctx, IssueSingleParams{
			Caller:   minter,
			Receiver: receiver,
			Quantity: uint256.NewInt(42),
		})
		require.NoError(t, err)

		balance, err := u.GetBalance(ctx, receiver, result.TokenID)
		require.NoError(t, err)
		assert.Equal(t, uint256.NewInt(42), balance)
	})

	t.Run("emits a transfer event from the zero principal", func(t *testing.T) {
		u, _, recorder := setup(t)
		_, err := u.IssueSingle(ctx, IssueSingleParams{
			Caller:   minter,
			Receiver: receiver,
			Quantity: uint256.NewInt(1),
		})
		require.NoError(t, err)

		require.Len(t, recorder.events, 1)
		event := recorder.events[0]
		assert.Equal(t, entity.EventTransferSingle, event.Type)
		assert.Equal(t, common.Address{}, *event.Payload.From)
		assert.Equal(t, receiver, *event.Payload.To)
		require.Len(t, event.Payload.TokenIDs, 1)
		assert.Equal(t, uint256.NewInt(0), event.Payload.TokenIDs[0])
	})

	t.Run("stores the token uri", func(t *testing.T) {
		u, _, _ := setup(t)
		result, err := u.IssueSingle(ctx, IssueSingleParams{
			Caller:   minter,
			Receiver: receiver,
			Quantity: uint256.NewInt(1),
			URI:      "ipfs://QmToken",
		})
		require.NoError(t, err)

		uri, err := u.ResolveURI(ctx, result.TokenID)
		require.NoError(t, err)
		assert.Equal(t, "ipfs://QmToken", uri)
	})

	t.Run("non-minter caller is rejected and the counter is unchanged", func(t *testing.T) {
		u, _, recorder := setup(t)
		_, err := u.IssueSingle(ctx, IssueSingleParams{
			Caller:   stranger,
			Receiver: receiver,
			Quantity: uint256.NewInt(1),
		})
		assert.ErrorIs(t, err, errs.NotAuthorized)
		assert.True(t, nextTokenID(t, u).IsZero())
		assert.Empty(t, recorder.events)
	})

	t.Run("zero receiver is rejected", func(t *testing.T) {
		u, _, _ := setup(t)
		_, err := u.IssueSingle(ctx, IssueSingleParams{
			Caller:   minter,
			Receiver: common.Address{},
			Quantity: uint256.NewInt(1),
		})
		assert.ErrorIs(t, err, errs.InvalidReceiver)
	})

	t.Run("non-minter caller is rejected even with a zero receiver", func(t *testing.T) {
		u, _, _ := setup(t)
		_, err := u.IssueSingle(ctx, IssueSingleParams{
			Caller:   stranger,
			Receiver: common.Address{},
			Quantity: uint256.NewInt(1),
		})
		assert.ErrorIs(t, err, errs.NotAuthorized)
		assert.NotErrorIs(t, err, errs.InvalidReceiver)
	})

	t.Run("claimable issuance grants the minter operator approval", func(t *testing.T) {
		u, _, recorder := setup(t)
		_, err := u.IssueSingle(ctx, IssueSingleParams{
			Caller:    minter,
			Receiver:  receiver,
			Claimable: true,
			Quantity:  uint256.NewInt(1),
		})
		require.NoError(t, err)

		approved, err := u.IsApprovedForAll(ctx, receiver, minter)
		require.NoError(t, err)
		assert.True(t, approved)

		require.Len(t, recorder.events, 2)
		assert.Equal(t, entity.EventApprovalForAll, recorder.events[0].Type)
		assert.Equal(t, entity.EventTransferSingle, recorder.events[1].Type)
	})

	t.Run("non-claimable issuance grants no approval", func(t *testing.T) {
		u, _, _ := setup(t)
		_, err := u.IssueSingle(ctx, IssueSingleParams{
			Caller:   minter,
			Receiver: receiver,
			Quantity: uint256.NewInt(1),
		})
		require.NoError(t, err)

		approved, err := u.IsApprovedForAll(ctx, receiver, minter)
		require.NoError(t, err)
		assert.False(t, approved)
	})
}

func TestIssueBatch(t *testing.T) {
	ctx := context.Background()

	batchParams := func() IssueBatchParams {
		return IssueBatchParams{
			Caller:   minter,
			Receiver: receiver,
			Quantities: []*uint256.Int{
				uint256.NewInt(1),
				uint256.NewInt(10),
				uint256.NewInt(100),
			},
			Prices: []decimal.Decimal{
				decimal.NewFromInt(0),
				decimal.RequireFromString("19.99"),
				decimal.NewFromInt(5),
			},
			URIs: []string{"ipfs://a", "", "ipfs://c"},
		}
	}

	t.Run("allocates consecutive token ids", func(t *testing.T) {
		u, _, _ := setup(t)
		result, err := u.IssueBatch(ctx, batchParams())
		require.NoError(t, err)

		require.Len(t, result.TokenIDs, 3)
		for i, tokenID := range result.TokenIDs {
			assert.Equal(t, uint256.NewInt(uint64(i)), tokenID)
		}
		assert.Equal(t, uint256.NewInt(3), nextTokenID(t, u))
	})

	t.Run("credits every balance to the single receiver", func(t *testing.T) {
		u, _, _ := setup(t)
		params := batchParams()
		result, err := u.IssueBatch(ctx, params)
		require.NoError(t, err)

		for i, tokenID := range result.TokenIDs {
			balance, err := u.GetBalance(ctx, receiver, tokenID)
			require.NoError(t, err)
			assert.Equal(t, params.Quantities[i], balance)
		}
	})

	t.Run("records prices in the event payload without consuming them", func(t *testing.T) {
		u, _, recorder := setup(t)
		params := batchParams()
		_, err := u.IssueBatch(ctx, params)
		require.NoError(t, err)

		require.Len(t, recorder.events, 1)
		event := recorder.events[0]
		assert.Equal(t, entity.EventTransferBatch, event.Type)
		assert.Equal(t, params.Prices, event.Payload.Prices)
	})

	t.Run("length mismatch is rejected before any mutation", func(t *testing.T) {
		u, _, recorder := setup(t)
		params := batchParams()
		params.Prices = params.Prices[:2]

		_, err := u.IssueBatch(ctx, params)
		assert.ErrorIs(t, err, errs.LengthMismatch)
		assert.True(t, nextTokenID(t, u).IsZero())
		assert.Empty(t, recorder.events)

		events, err := u.ListEvents(ctx, 2, 0)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("zero receiver is rejected", func(t *testing.T) {
		u, _, _ := setup(t)
		params := batchParams()
		params.Receiver = common.Address{}

		_, err := u.IssueBatch(ctx, params)
		assert.ErrorIs(t, err, errs.InvalidReceiver)
	})

	t.Run("zero receiver is rejected before the length check", func(t *testing.T) {
		u, _, _ := setup(t)
		params := batchParams()
		params.Receiver = common.Address{}
		params.Prices = params.Prices[:2]

		_, err := u.IssueBatch(ctx, params)
		assert.ErrorIs(t, err, errs.InvalidReceiver)
		assert.NotErrorIs(t, err, errs.LengthMismatch)
	})

	t.Run("non-minter caller is rejected before the receiver and length checks", func(t *testing.T) {
		u, _, _ := setup(t)
		params := batchParams()
		params.Caller = stranger
		params.Receiver = common.Address{}
		params.Prices = params.Prices[:2]

		_, err := u.IssueBatch(ctx, params)
		assert.ErrorIs(t, err, errs.NotAuthorized)
		assert.NotErrorIs(t, err, errs.InvalidReceiver)
		assert.NotErrorIs(t, err, errs.LengthMismatch)
	})

	t.Run("non-minter caller is rejected", func(t *testing.T) {
		u, _, _ := setup(t)
		params := batchParams()
		params.Caller = stranger

		_, err := u.IssueBatch(ctx, params)
		assert.ErrorIs(t, err, errs.NotAuthorized)
		assert.True(t, nextTokenID(t, u).IsZero())
	})

	t.Run("empty batch allocates nothing", func(t *testing.T) {
		u, _, _ := setup(t)
		result, err := u.IssueBatch(ctx, IssueBatchParams{
			Caller:   minter,
			Receiver: receiver,
		})
		require.NoError(t, err)
		assert.Empty(t, result.TokenIDs)
		assert.True(t, nextTokenID(t, u).IsZero())
	})
}

func TestResolveURI(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to the prefix and decimal id when no uri is stored", func(t *testing.T) {
		u, _, _ := setup(t)
		result, err := u.IssueSingle(ctx, IssueSingleParams{
			Caller:   minter,
			Receiver: receiver,
			Quantity: uint256.NewInt(1),
		})
		require.NoError(t, err)

		uri, err := u.ResolveURI(ctx, result.TokenID)
		require.NoError(t, err)
		assert.Equal(t, "https://meta.example.com/tokens/0", uri)
	})

	t.Run("never-issued ids still resolve to the fallback", func(t *testing.T) {
		u, _, _ := setup(t)
		uri, err := u.ResolveURI(ctx, uint256.NewInt(123456))
		require.NoError(t, err)
		assert.Equal(t, "https://meta.example.com/tokens/123456", uri)
	})

	t.Run("stored uri takes precedence over the prefix", func(t *testing.T) {
		u, _, _ := setup(t)
		result, err := u.IssueSingle(ctx, IssueSingleParams{
			Caller:   minter,
			Receiver: receiver,
			Quantity: uint256.NewInt(1),
			URI:      "ipfs://QmStored",
		})
		require.NoError(t, err)

		uri, err := u.ResolveURI(ctx, result.TokenID)
		require.NoError(t, err)
		assert.Equal(t, "ipfs://QmStored", uri)
	})

	t.Run("admin can replace the prefix", func(t *testing.T) {
		u, _, recorder := setup(t)
		require.NoError(t, u.SetBaseURIPrefix(ctx, creator, "ipfs://prefix/"))

		uri, err := u.ResolveURI(ctx, uint256.NewInt(7))
		require.NoError(t, err)
		assert.Equal(t, "ipfs://prefix/7", uri)

		require.Len(t, recorder.events, 1)
		assert.Equal(t, entity.EventURIPrefixSet, recorder.events[0].Type)
	})

	t.Run("non-admin cannot replace the prefix", func(t *testing.T) {
		u, _, _ := setup(t)
		err := u.SetBaseURIPrefix(ctx, minter, "ipfs://prefix/")
		assert.ErrorIs(t, err, errs.NotAuthorized)
	})
}

func TestSupportsCapability(t *testing.T) {
	u, _, _ := setup(t)

	assert.True(t, u.SupportsCapability(capability.Discovery))
	assert.True(t, u.SupportsCapability(capability.MultiTokenLedger))
	assert.True(t, u.SupportsCapability(capability.RoleControl))
	assert.False(t, u.SupportsCapability(capability.ID{0xde, 0xad, 0xbe, 0xef}))
}
