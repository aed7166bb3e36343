package chat

import (
	"context"
	"strconv"
	"testing"
	"time"

	"cluster_chat_server/internal/config"
	"cluster_chat_server/internal/dao/mysql/dbtest"
	"cluster_chat_server/internal/dao/mysql/repository"
	myredis "cluster_chat_server/internal/dao/redis"
	"cluster_chat_server/pkg/enum/message_type_enum"
	"cluster_chat_server/pkg/enum/user_state_enum"
	"cluster_chat_server/pkg/errorx"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisServer(t *testing.T, mr *miniredis.Miniredis, repos *repository.Repositories, instanceID string) *ChatServer {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	cs, err := NewChatServer(ChatServerConfig{
		Mode:          RelayModeRedis,
		InstanceID:    instanceID,
		Repos:         repos,
		Redis:         config.RedisConfig{Host: mr.Host(), Port: port},
		ChannelPrefix: "user:",
	})
	require.NoError(t, err)
	require.NoError(t, cs.Start(context.Background()))
	return cs
}

func waitRedisSubscribed(t *testing.T, cs *ChatServer, userID int64) {
	t.Helper()
	relay, ok := cs.Relay.(*myredis.RedisRelay)
	require.True(t, ok)
	require.Eventually(t, func() bool {
		n, err := relay.NumSub(context.Background(), userID)
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisClusterDelivery(t *testing.T) {
	mr := miniredis.RunT(t)
	repos := dbtest.NewRepositories(t)
	nodeA := newRedisServer(t, mr, repos, "a")
	nodeB := newRedisServer(t, mr, repos, "b")

	alice := createUser(t, repos, "alice", "pw1")
	bob := createUser(t, repos, "bob", "pw2")
	aliceConn, bobConn := &fakeConn{}, &fakeConn{}
	login(t, nodeA.Service, aliceConn, alice.ID, "pw1")
	login(t, nodeB.Service, bobConn, bob.ID, "pw2")
	waitRedisSubscribed(t, nodeA, alice.ID)

	before := aliceConn.count()
	raw := send(t, nodeB.Service, bobConn, map[string]any{"msgid": message_type_enum.OneChatMsg, "id": bob.ID, "toid": alice.ID, "msg": "via redis"})
	require.Eventually(t, func() bool { return aliceConn.count() == before+1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, string(raw), aliceConn.messages()[before])

	status := nodeA.Status()
	assert.Equal(t, "a", status.InstanceID)
	assert.Equal(t, RelayModeRedis, status.RelayMode)
	assert.Equal(t, 1, status.OnlineUsers)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, nodeA.Close(ctx))
	require.NoError(t, nodeB.Close(ctx))

	assert.True(t, aliceConn.isClosed())
	assert.Equal(t, user_state_enum.Offline, userState(t, repos, alice.ID))
	assert.Equal(t, user_state_enum.Offline, userState(t, repos, bob.ID))
}

func TestNewChatServerModes(t *testing.T) {
	repos := dbtest.NewRepositories(t)

	cs, err := NewChatServer(ChatServerConfig{Repos: repos, InstanceID: "solo"})
	require.NoError(t, err)
	assert.Equal(t, RelayModeChannel, cs.Status().RelayMode)
	require.NoError(t, cs.Start(context.Background()))
	require.NoError(t, cs.Close(context.Background()))

	cs, err = NewChatServer(ChatServerConfig{Repos: repos, Mode: RelayModeKafka, InstanceID: "k1"})
	require.NoError(t, err)
	assert.Equal(t, RelayModeKafka, cs.Status().RelayMode)

	_, err = NewChatServer(ChatServerConfig{Repos: repos, Mode: "carrier-pigeon"})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
	assert.Equal(t, `unknown relay mode "carrier-pigeon"`, err.Error())
	_, err = NewChatServer(ChatServerConfig{})
	assert.Error(t, err)
}
