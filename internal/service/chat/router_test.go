package chat

import (
	"context"
	"errors"
	"testing"

	"cluster_chat_server/internal/dao/mysql/dbtest"
	"cluster_chat_server/internal/dao/mysql/repository"
	"cluster_chat_server/internal/service/chat/mock"
	"cluster_chat_server/pkg/enum/user_state_enum"
	"cluster_chat_server/pkg/errorx"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routerFixture struct {
	repos    *repository.Repositories
	registry *ConnRegistry
	relay    *mock.MockRelay
	router   *MessageRouter
}

// 没有设置期望的 relay 调用都会让测试失败
func newRouterFixture(t *testing.T) *routerFixture {
	ctrl := gomock.NewController(t)
	f := &routerFixture{
		repos:    dbtest.NewRepositories(t),
		registry: NewConnRegistry(),
		relay:    mock.NewMockRelay(ctrl),
	}
	f.router = NewMessageRouter(f.registry, f.repos.User, f.repos.OfflineMessage, f.relay)
	return f
}

func (f *routerFixture) drain(t *testing.T, userID int64) []string {
	t.Helper()
	msgs, err := f.repos.OfflineMessage.Drain(userID)
	require.NoError(t, err)
	return msgs
}

func TestDeliverLocalSuppressesRelayAndOffline(t *testing.T) {
	f := newRouterFixture(t)
	a := createUser(t, f.repos, "a", "pw")
	require.NoError(t, f.repos.User.UpdateState(a.ID, user_state_enum.Online))
	conn := &fakeConn{}
	f.registry.Register(a.ID, conn)

	payload := []byte(`{"msgid":6,"id":2,"name":"b","toid":1,"msg":"hello"}`)
	route := f.router.Deliver(context.Background(), a.ID, payload)

	assert.Equal(t, RouteLocal, route)
	assert.Equal(t, []string{string(payload)}, conn.messages())
	assert.Empty(t, f.drain(t, a.ID))
}

func TestDeliverRemoteOnline(t *testing.T) {
	f := newRouterFixture(t)
	a := createUser(t, f.repos, "a", "pw")
	require.NoError(t, f.repos.User.UpdateState(a.ID, user_state_enum.Online))

	payload := []byte(`{"msgid":6,"toid":1,"msg":"x"}`)
	f.relay.EXPECT().Publish(gomock.Any(), a.ID, payload).Return(nil)

	assert.Equal(t, RouteRelay, f.router.Deliver(context.Background(), a.ID, payload))
	assert.Empty(t, f.drain(t, a.ID))
}

func TestDeliverPublishFailureFallsBackToOffline(t *testing.T) {
	f := newRouterFixture(t)
	a := createUser(t, f.repos, "a", "pw")
	require.NoError(t, f.repos.User.UpdateState(a.ID, user_state_enum.Online))

	payload := []byte(`{"msgid":6,"toid":1}`)
	f.relay.EXPECT().Publish(gomock.Any(), a.ID, payload).Return(errorx.ErrNoSubscriber)

	assert.Equal(t, RouteOffline, f.router.Deliver(context.Background(), a.ID, payload))
	assert.Equal(t, []string{string(payload)}, f.drain(t, a.ID))
}

func TestDeliverOfflineTarget(t *testing.T) {
	f := newRouterFixture(t)
	a := createUser(t, f.repos, "a", "pw")

	payload := []byte(`{"msgid":6,"toid":1,"msg":"later"}`)
	assert.Equal(t, RouteOffline, f.router.Deliver(context.Background(), a.ID, payload))
	assert.Equal(t, []string{string(payload)}, f.drain(t, a.ID))
}

// 目标用户不存在时同样落离线，不发布
func TestDeliverUnknownTarget(t *testing.T) {
	f := newRouterFixture(t)
	assert.Equal(t, RouteOffline, f.router.Deliver(context.Background(), 404, []byte("{}")))
	assert.Equal(t, []string{"{}"}, f.drain(t, 404))
}

func TestDeliverLocalSendFailure(t *testing.T) {
	f := newRouterFixture(t)
	a := createUser(t, f.repos, "a", "pw")
	f.registry.Register(a.ID, &fakeConn{err: errors.New("buffer full")})

	assert.Equal(t, RouteOffline, f.router.Deliver(context.Background(), a.ID, []byte("m")))
	assert.Equal(t, []string{"m"}, f.drain(t, a.ID))
}

func TestDeliverGroupEachMemberOnce(t *testing.T) {
	f := newRouterFixture(t)
	local := createUser(t, f.repos, "local", "pw")
	remote := createUser(t, f.repos, "remote", "pw")
	away := createUser(t, f.repos, "away", "pw")
	require.NoError(t, f.repos.User.UpdateState(remote.ID, user_state_enum.Online))
	conn := &fakeConn{}
	f.registry.Register(local.ID, conn)

	payload := []byte(`{"msgid":10,"groupid":1,"msg":"all"}`)
	f.relay.EXPECT().Publish(gomock.Any(), remote.ID, payload).Return(nil).Times(1)

	routes := f.router.DeliverGroup(context.Background(), []int64{local.ID, remote.ID, away.ID, local.ID}, payload)
	assert.Equal(t, map[int64]Route{
		local.ID:  RouteLocal,
		remote.ID: RouteRelay,
		away.ID:   RouteOffline,
	}, routes)
	assert.Equal(t, 1, conn.count())
	assert.Empty(t, f.drain(t, remote.ID))
	assert.Equal(t, []string{string(payload)}, f.drain(t, away.ID))
}

func TestDeliverInboundNeverRepublishes(t *testing.T) {
	f := newRouterFixture(t)
	a := createUser(t, f.repos, "a", "pw")
	require.NoError(t, f.repos.User.UpdateState(a.ID, user_state_enum.Online))

	// 本地没有连接时落离线，不会再次发布
	assert.Equal(t, RouteOffline, f.router.DeliverInbound(a.ID, []byte("one")))
	assert.Equal(t, []string{"one"}, f.drain(t, a.ID))

	conn := &fakeConn{}
	f.registry.Register(a.ID, conn)
	assert.Equal(t, RouteLocal, f.router.DeliverInbound(a.ID, []byte("two")))
	assert.Equal(t, []string{"two"}, conn.messages())
}

func TestRouteString(t *testing.T) {
	assert.Equal(t, "local", RouteLocal.String())
	assert.Equal(t, "relay", RouteRelay.String())
	assert.Equal(t, "offline", RouteOffline.String())
	assert.Equal(t, "failed", RouteFailed.String())
}
