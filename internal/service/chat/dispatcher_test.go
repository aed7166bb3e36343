package chat

import (
	"context"
	"testing"
	"time"

	"cluster_chat_server/internal/dto/request"
	"cluster_chat_server/pkg/enum/message_type_enum"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher(t *testing.T) {
	d := NewDispatcher()
	called := 0
	d.Register(message_type_enum.LoginMsg, func(ctx context.Context, conn Conn, msg *request.Envelope, ts time.Time) {
		called++
	})

	d.Resolve(message_type_enum.LoginMsg)(context.Background(), &fakeConn{}, &request.Envelope{}, time.Now())
	assert.Equal(t, 1, called)

	// 未知类型只记日志
	assert.NotPanics(t, func() {
		d.Resolve(message_type_enum.MsgType(99))(context.Background(), &fakeConn{}, &request.Envelope{}, time.Now())
	})
	assert.Equal(t, 1, called)
}

func TestDispatcherValidate(t *testing.T) {
	d := NewDispatcher()
	d.Register(message_type_enum.LoginMsg, func(context.Context, Conn, *request.Envelope, time.Time) {})

	err := d.Validate([]message_type_enum.MsgType{message_type_enum.LoginMsg, message_type_enum.RegMsg, message_type_enum.GroupChatMsg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GROUP_CHAT_MSG, REG_MSG")
	assert.NoError(t, d.Validate([]message_type_enum.MsgType{message_type_enum.LoginMsg}))
}
