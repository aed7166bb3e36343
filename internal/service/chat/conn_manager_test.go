package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnRegistry(t *testing.T) {
	r := NewConnRegistry()
	a, b := &fakeConn{}, &fakeConn{}

	assert.True(t, r.RegisterIfAbsent(1, a))
	assert.False(t, r.RegisterIfAbsent(1, b))
	r.Register(2, b)
	r.Register(3, b)

	conn, ok := r.Lookup(1)
	assert.True(t, ok)
	assert.Same(t, a, conn)
	_, ok = r.Lookup(9)
	assert.False(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, r.IDs())

	// 旧连接不能注销新连接上的账号
	assert.False(t, r.UnregisterIfCurrent(1, b))
	assert.True(t, r.UnregisterIfCurrent(1, a))
	assert.Equal(t, 2, r.Len())

	id, ok := r.UnregisterByConn(b)
	assert.True(t, ok)
	assert.Contains(t, []int64{2, 3}, id)
	id, ok = r.UnregisterByConn(b)
	assert.True(t, ok)
	_, ok = r.UnregisterByConn(b)
	assert.False(t, ok)
	assert.Zero(t, r.Len())

	_, ok = r.UnregisterByID(id)
	assert.False(t, ok)
}

func TestConnRegistryClose(t *testing.T) {
	r := NewConnRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	assert.True(t, r.RegisterIfAbsent(1, a))
	assert.True(t, r.IsCurrent(1, a))
	assert.False(t, r.IsCurrent(1, b))

	r.Close()
	assert.True(t, r.Closed())
	assert.False(t, r.RegisterIfAbsent(2, b))
	assert.Equal(t, []int64{1}, r.IDs())

	// 关闭后仍可注销已有记录
	assert.True(t, r.UnregisterIfCurrent(1, a))
	assert.False(t, r.IsCurrent(1, a))
}

func TestConnRegistryLookupEach(t *testing.T) {
	r := NewConnRegistry()
	a := &fakeConn{}
	r.Register(1, a)

	var found, missing []int64
	r.LookupEach([]int64{1, 2}, func(userID int64, conn Conn, ok bool) {
		if ok {
			found = append(found, userID)
		} else {
			missing = append(missing, userID)
		}
	})
	assert.Equal(t, []int64{1}, found)
	assert.Equal(t, []int64{2}, missing)

	seen := 0
	r.ForEach(func(userID int64, conn Conn) { seen++ })
	assert.Equal(t, 1, seen)
}

func TestConnRegistryConcurrent(t *testing.T) {
	r := NewConnRegistry()
	var wg sync.WaitGroup
	for i := int64(1); i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			conn := &fakeConn{}
			r.Register(id, conn)
			r.LookupEach([]int64{id}, func(int64, Conn, bool) {})
			r.UnregisterByConn(conn)
		}(i)
	}
	wg.Wait()
	assert.Zero(t, r.Len())
}
