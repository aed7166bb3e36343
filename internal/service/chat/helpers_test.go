package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"cluster_chat_server/internal/dao/mysql/repository"
	"cluster_chat_server/internal/model"

	"github.com/stretchr/testify/require"
)

// fakeConn 记录发给客户端的报文
type fakeConn struct {
	mu     sync.Mutex
	msgs   [][]byte
	err    error
	closed bool
}

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, append([]byte(nil), payload...))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]string, 0, len(c.msgs))
	for _, m := range c.msgs {
		res = append(res, string(m))
	}
	return res
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

// last 把最后一条报文解析到 v
func (c *fakeConn) last(t *testing.T, v any) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.msgs, "connection received nothing")
	require.NoError(t, json.Unmarshal(c.msgs[len(c.msgs)-1], v))
}

func createUser(t *testing.T, repos *repository.Repositories, name, password string) *model.User {
	t.Helper()
	user := &model.User{Name: name, RawPassword: password}
	require.NoError(t, repos.User.Create(user))
	return user
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// send 模拟客户端发来一条报文
func send(t *testing.T, s *ChatService, conn Conn, v any) []byte {
	t.Helper()
	data := mustJSON(t, v)
	s.HandleMessage(context.Background(), conn, data, time.Now())
	return data
}
