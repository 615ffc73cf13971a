package syncer

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultaevm/ship-receiver/ship/channel"
	"github.com/vaultaevm/ship-receiver/ship/downstream"
	"github.com/vaultaevm/ship-receiver/ship/shipconfig"
	"github.com/vaultaevm/ship-receiver/ship/transport"
)

// --- wire frame builders, mirroring ship/protocol's decode order ---

func putU32(out []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(out, b[:]...)
}

func putBool(out []byte, v bool) []byte {
	if v {
		return append(out, 1)
	}
	return append(out, 0)
}

func statusResultFrame(traceBeginBlock uint32) []byte {
	out := []byte{0} // tagGetStatusResultV0
	out = putU32(out, 0)
	out = append(out, make([]byte, 32)...) // head id
	out = putU32(out, 0)
	out = append(out, make([]byte, 32)...) // lib id
	out = putU32(out, traceBeginBlock)
	out = putU32(out, ^uint32(0))
	out = putU32(out, 0)
	out = putU32(out, 0)
	return out
}

func blocksResultFrame(blockNum, lib uint32) []byte {
	out := []byte{1} // tagGetBlocksResultV0
	out = putU32(out, blockNum)
	out = append(out, make([]byte, 32)...) // head id
	out = putU32(out, lib)
	out = append(out, make([]byte, 32)...) // lib id
	out = putBool(out, true)               // this_block present
	out = putU32(out, blockNum)
	out = append(out, make([]byte, 32)...) // this_block id
	out = putBool(out, false)              // prev_block absent
	out = putBool(out, false)              // block absent
	out = putBool(out, false)              // traces absent
	out = putBool(out, false)              // deltas absent
	return out
}

// --- fakes ---

type fakeTransport struct {
	mu          sync.Mutex
	connectErrs []error
	frames      [][]byte
	afterErr    error
	closeCount  int
	connectHook func()
}

func (t *fakeTransport) Connect(ctx context.Context, host, port string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.connectHook != nil {
		t.connectHook()
	}
	if len(t.connectErrs) == 0 {
		return nil
	}
	err := t.connectErrs[0]
	t.connectErrs = t.connectErrs[1:]
	return err
}

func (t *fakeTransport) Send([]byte) error { return nil }

func (t *fakeTransport) Read() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.frames) == 0 {
		if t.afterErr != nil {
			return nil, t.afterErr
		}
		return nil, io.EOF
	}
	f := t.frames[0]
	t.frames = t.frames[1:]
	return f, nil
}

func (t *fakeTransport) AsyncRead(ctx context.Context) <-chan transport.ReadResult {
	out := make(chan transport.ReadResult, 1)
	b, err := t.Read()
	out <- transport.ReadResult{Data: b, Err: err}
	close(out)
	return out
}

func (t *fakeTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeCount++
}

type staticProvider struct {
	height uint32
}

func (p *staticProvider) CanonicalBlockAtHeight(_ context.Context, _ *uint64) (*downstream.CanonicalBlock, error) {
	return &downstream.CanonicalBlock{
		Header: downstream.Header{
			Number:     uint64(p.height),
			PrevRandao: downstream.EncodeSourceHeight(p.height),
		},
	}, nil
}

func newTestController(t *testing.T, maxRetry uint32, provider downstream.CanonicalBlockProvider) *Controller {
	t.Helper()
	cfg := shipconfig.Config{
		Endpoint:    "127.0.0.1:8999",
		CoreAccount: "evmevmevmevm",
		MaxRetry:    maxRetry,
		DelaySecond: 0,
	}
	ctrl, err := New(cfg, channel.New(), provider)
	require.NoError(t, err)
	return ctrl
}

// --- tests ---

func TestColdStartPublishesThenExhaustsRetryBudget(t *testing.T) {
	ctrl := newTestController(t, 0, &staticProvider{height: 0})
	sub := ctrl.feed.Subscribe()

	ctrl.newTransport = func() transport.Transport {
		return &fakeTransport{
			frames: [][]byte{
				[]byte("schema descriptor\x00"),
				statusResultFrame(0),
				blocksResultFrame(1, 0),
			},
		}
	}

	err := ctrl.Run(context.Background())
	assert.ErrorIs(t, err, ErrRetryBudgetExhausted)

	block, ok := sub.Next()
	require.True(t, ok)
	assert.Equal(t, uint32(1), block.BlockNum)
	assert.Equal(t, StateTerminated, ctrl.State())
}

func TestHistoryPrunedIsFatalOnFirstAttempt(t *testing.T) {
	ctrl := newTestController(t, 5, &staticProvider{height: 10})
	connectCount := 0
	ctrl.newTransport = func() transport.Transport {
		connectCount++
		return &fakeTransport{
			frames: [][]byte{
				[]byte("schema descriptor\x00"),
				statusResultFrame(100), // trace_begin_block(100) > start_from(11)
			},
		}
	}

	err := ctrl.Run(context.Background())
	assert.ErrorIs(t, err, ErrHistoryPruned)
	assert.Equal(t, 1, connectCount, "history-pruned must not consume the retry budget")
}

func TestRetryBudgetExhaustedAfterExactAttemptCount(t *testing.T) {
	ctrl := newTestController(t, 2, &staticProvider{height: 0})
	var mu sync.Mutex
	attempts := 0
	ctrl.newTransport = func() transport.Transport {
		return &fakeTransport{
			connectErrs: []error{errors.New("refused")},
			connectHook: func() {
				mu.Lock()
				attempts++
				mu.Unlock()
			},
		}
	}

	err := ctrl.Run(context.Background())
	assert.ErrorIs(t, err, ErrRetryBudgetExhausted)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts, "max_retry=2 allows exactly 3 connect attempts")
}

func TestContextCancelDuringBackoffExitsCleanly(t *testing.T) {
	ctrl := newTestController(t, 1000, &staticProvider{height: 0})
	ctrl.delay = 200 * time.Millisecond
	ctrl.newTransport = func() transport.Transport {
		return &fakeTransport{connectErrs: []error{errors.New("refused")}}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after context cancellation during backoff")
	}
}

func TestReconnectComputesStartFromMinOfLibAndLastBlockNum(t *testing.T) {
	ctrl := newTestController(t, 1, &staticProvider{height: 0})
	ctrl.lastBlockNum = 50
	ctrl.lastLIB = 40

	start, err := ctrl.computeStartFrom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(41), start)
}

func TestInitialSyncStartFromUsesDownstreamCanonicalHeight(t *testing.T) {
	ctrl := newTestController(t, 1, &staticProvider{height: 99})
	start, err := ctrl.computeStartFrom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(100), start)
}

func TestDownstreamUnavailableIsFatal(t *testing.T) {
	ctrl := newTestController(t, 5, nil)
	ctrl.provider = &errorProvider{}
	ctrl.newTransport = func() transport.Transport {
		return &fakeTransport{frames: [][]byte{[]byte("schema\x00"), statusResultFrame(0)}}
	}
	err := ctrl.Run(context.Background())
	assert.ErrorIs(t, err, downstream.ErrDownstreamUnavailable)
}

type errorProvider struct{}

func (errorProvider) CanonicalBlockAtHeight(context.Context, *uint64) (*downstream.CanonicalBlock, error) {
	return nil, downstream.ErrDownstreamUnavailable
}

func TestIsFatalClassification(t *testing.T) {
	assert.True(t, isFatal(ErrHistoryPruned))
	assert.True(t, isFatal(ErrRetryBudgetExhausted))
	assert.True(t, isFatal(ErrUnexpectedEmptyBlock))
	assert.True(t, isFatal(downstream.ErrDownstreamUnavailable))
	assert.False(t, isFatal(io.EOF))
	assert.False(t, isFatal(errors.New("transport: read: connection reset")))
}

func TestStateStringCoversAllValues(t *testing.T) {
	for s := StateIdle; s <= StateTerminated; s++ {
		assert.NotEqual(t, "Unknown", s.String())
	}
}

