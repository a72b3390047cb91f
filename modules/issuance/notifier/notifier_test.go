package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(sequence uint64) entity.Event {
	to := ethcommon.HexToAddress("0x3333333333333333333333333333333333333333")
	return entity.Event{
		Sequence:  sequence,
		Authority: ethcommon.HexToAddress("0x1111111111111111111111111111111111111111"),
		Type:      entity.EventTransferSingle,
		Operator:  ethcommon.HexToAddress("0x2222222222222222222222222222222222222222"),
		Payload: entity.EventPayload{
			To:       &to,
			TokenIDs: []*uint256.Int{uint256.NewInt(0)},
			Amounts:  []*uint256.Int{uint256.NewInt(1)},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestSlowSinkDoesNotDelayOtherSinks(t *testing.T) {
	received := make(chan struct{}, 1)
	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
	}))
	defer fast.Close()
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(3 * time.Second)
	}))
	defer slow.Close()

	n, err := New([]string{slow.URL, fast.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = n.Run(ctx)
	}()
	defer n.Shutdown()

	n.Publish(ctx, testEvent(1))

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("fast sink did not receive the event while the slow sink was busy")
	}
}

func TestFailingDeliveryIsRetriedOnce(t *testing.T) {
	var hits atomic.Int32
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	n, err := New([]string{failing.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = n.Run(ctx)
	}()
	defer n.Shutdown()

	n.Publish(ctx, testEvent(1))

	assert.Eventually(t, func() bool {
		return hits.Load() == 2
	}, 5*time.Second, 50*time.Millisecond)
}

func TestShutdownWithoutRunReturnsImmediately(t *testing.T) {
	n, err := New([]string{"http://127.0.0.1:1/webhook"})
	require.NoError(t, err)

	finished := make(chan struct{})
	go func() {
		n.Shutdown()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Shutdown blocked even though Run was never started")
	}
}
