package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"cluster_chat_server/internal/config"
	"cluster_chat_server/pkg/errorx"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inbound struct {
	userID  int64
	payload string
}

func newTestRelay(t *testing.T, mr *miniredis.Miniredis, prefix string) (*RedisRelay, chan inbound) {
	t.Helper()
	conf := &config.RedisConfig{Host: mr.Host(), Port: mustPort(t, mr)}
	relay := NewRedisRelay(NewClient(conf), prefix)
	got := make(chan inbound, 8)
	relay.SetInboundHandler(func(userID int64, payload []byte) {
		got <- inbound{userID: userID, payload: string(payload)}
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, relay.Connect(ctx))
	go relay.Start(ctx)
	t.Cleanup(func() {
		cancel()
		_ = relay.Close()
	})
	return relay, got
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return port
}

func waitSubscribed(t *testing.T, relay *RedisRelay, userID int64, want int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		n, err := relay.NumSub(context.Background(), userID)
		return err == nil && n == want
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisRelayPublishToSubscriber(t *testing.T) {
	mr := miniredis.RunT(t)
	a, _ := newTestRelay(t, mr, "chat:")
	b, gotB := newTestRelay(t, mr, "chat:")
	ctx := context.Background()

	require.NoError(t, b.Subscribe(ctx, 42))
	waitSubscribed(t, a, 42, 1)

	payload := `{"msgid":6,"id":1,"toid":42,"msg":"hi"}`
	require.NoError(t, a.Publish(ctx, 42, []byte(payload)))

	select {
	case msg := <-gotB:
		assert.Equal(t, int64(42), msg.userID)
		assert.Equal(t, payload, msg.payload)
	case <-time.After(2 * time.Second):
		t.Fatal("relay message not received")
	}
}

func TestRedisRelayNoSubscriber(t *testing.T) {
	mr := miniredis.RunT(t)
	a, _ := newTestRelay(t, mr, "")
	ctx := context.Background()

	err := a.Publish(ctx, 7, []byte("x"))
	assert.ErrorIs(t, err, errorx.ErrNoSubscriber)

	require.NoError(t, a.Subscribe(ctx, 7))
	waitSubscribed(t, a, 7, 1)
	require.NoError(t, a.Unsubscribe(ctx, 7))
	waitSubscribed(t, a, 7, 0)

	err = a.Publish(ctx, 7, []byte("x"))
	assert.ErrorIs(t, err, errorx.ErrNoSubscriber)
}

func TestRedisRelayConnectFails(t *testing.T) {
	mr := miniredis.RunT(t)
	conf := &config.RedisConfig{Host: mr.Host(), Port: mustPort(t, mr)}
	mr.Close()

	relay := NewRedisRelay(NewClient(conf), "")
	t.Cleanup(func() { _ = relay.Close() })
	err := relay.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, errorx.CodeRelayError, errorx.GetCode(err))
	assert.ErrorIs(t, relay.Subscribe(context.Background(), 1), errorx.ErrRelayClosed)
}
