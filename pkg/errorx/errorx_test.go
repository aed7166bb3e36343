package errorx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeSuccess, GetCode(nil))
	assert.Equal(t, CodeServerBusy, GetCode(errors.New("boom")))
	assert.Equal(t, CodeDBError, GetCode(Wrap(errors.New("boom"), CodeDBError, "创建用户")))

	// 多层包装后仍能取到最内层的 CodeError
	wrapped := Wrapf(ErrNoSubscriber, CodeRelayError, "publish user %d", 7)
	assert.Equal(t, CodeRelayError, GetCode(wrapped))
}

func TestNewf(t *testing.T) {
	err := Newf(CodeInvalidParam, "unknown relay mode %q", "x")
	assert.Equal(t, `unknown relay mode "x"`, err.Error())
	assert.Equal(t, CodeInvalidParam, GetCode(err))
	assert.Nil(t, err.Unwrap())
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(errors.New("dial tcp: refused"), CodeDBError, "查询用户")
	assert.Equal(t, "查询用户: dial tcp: refused", err.Error())
	assert.Equal(t, "查询用户", GetMsg(err))
	assert.Equal(t, ErrServerBusy.Msg, GetMsg(errors.New("x")))
}

func TestSentinelMatching(t *testing.T) {
	err := Wrapf(ErrNoSubscriber, CodeRelayError, "publish user %d", 3)
	assert.True(t, errors.Is(err, ErrNoSubscriber))
	assert.False(t, errors.Is(err, ErrRelayClosed))
	assert.False(t, errors.Is(ErrRelayClosed, ErrNoSubscriber))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(CodeNotFound, "x")))
	assert.True(t, IsNotFound(Wrap(errors.New("x"), CodeNotFound, "查询用户 id=1")))
	assert.False(t, IsNotFound(New(CodeDBError, "x")))
	assert.False(t, IsNotFound(nil))
}
