// Package chat 实现了聊天系统的核心服务层
// conn_manager.go
// 核心职责：本实例在线连接表
// 所有操作由同一把互斥锁保护，登录和异常断开清理不会留下悬空或重复的记录
package chat

import (
	"sort"
	"sync"
)

// Conn 本地连接句柄
// Send 只做入队，不能阻塞，持锁期间也会调用
type Conn interface {
	Send(payload []byte) error
}

// ConnRegistry 用户 id 到本地连接的映射
type ConnRegistry struct {
	mu     sync.Mutex
	conns  map[int64]Conn
	closed bool // 关闭后不再接受登录注册
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{conns: make(map[int64]Conn)}
}

// Register 注册连接，已存在时覆盖
func (r *ConnRegistry) Register(userID int64, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = conn
}

// RegisterIfAbsent 仅当用户在本实例没有连接且连接表未关闭时注册
func (r *ConnRegistry) RegisterIfAbsent(userID int64, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	if _, ok := r.conns[userID]; ok {
		return false
	}
	r.conns[userID] = conn
	return true
}

// UnregisterByID 按用户 id 移除，返回被移除的连接
func (r *ConnRegistry) UnregisterByID(userID int64) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[userID]
	if ok {
		delete(r.conns, userID)
	}
	return conn, ok
}

// UnregisterIfCurrent 仅当记录仍指向 conn 时移除
// 旧连接的注销请求不会踢掉同一用户的新连接
func (r *ConnRegistry) UnregisterIfCurrent(userID int64, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.conns[userID]; ok && cur == conn {
		delete(r.conns, userID)
		return true
	}
	return false
}

// UnregisterByConn 按连接反查并移除，用于连接异常断开
func (r *ConnRegistry) UnregisterByConn(conn Conn) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, cur := range r.conns {
		if cur == conn {
			delete(r.conns, id)
			return id, true
		}
	}
	return 0, false
}

// IsCurrent 记录是否仍指向 conn
func (r *ConnRegistry) IsCurrent(userID int64, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.conns[userID]
	return ok && cur == conn
}

// Close 停止接受新的登录注册，已有记录不受影响
func (r *ConnRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// Closed 连接表是否已关闭
func (r *ConnRegistry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Lookup 查找用户的本地连接
func (r *ConnRegistry) Lookup(userID int64) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[userID]
	return conn, ok
}

// ForEach 持锁遍历全部连接，fn 内不能再调用 ConnRegistry 的方法
func (r *ConnRegistry) ForEach(fn func(userID int64, conn Conn)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, conn := range r.conns {
		fn(id, conn)
	}
}

// LookupEach 在一次加锁内依次查找 userIDs，群聊扇出期间成员的登录登出被挂起
// fn 内不能再调用 ConnRegistry 的方法
func (r *ConnRegistry) LookupEach(userIDs []int64, fn func(userID int64, conn Conn, ok bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range userIDs {
		conn, ok := r.conns[id]
		fn(id, conn, ok)
	}
}

// IDs 返回当前在线用户 id 快照，按 id 升序
func (r *ConnRegistry) IDs() []int64 {
	r.mu.Lock()
	ids := make([]int64, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len 本实例在线连接数
func (r *ConnRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
