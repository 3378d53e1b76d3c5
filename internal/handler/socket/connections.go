package socket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ConnectionManager 跟踪活跃的 WebSocket 连接，便于服务关闭时统一断开。
type ConnectionManager struct {
	connections map[string]*websocket.Conn
	mu          sync.RWMutex
}

// NewConnectionManager 创建连接管理器
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
	}
}

// Add 登记连接并返回其 ID
func (cm *ConnectionManager) Add(conn *websocket.Conn) string {
	id := uuid.NewString()

	cm.mu.Lock()
	cm.connections[id] = conn
	cm.mu.Unlock()

	return id
}

// Remove 移除并关闭连接
func (cm *ConnectionManager) Remove(id string) {
	cm.mu.Lock()
	conn, exists := cm.connections[id]
	delete(cm.connections, id)
	cm.mu.Unlock()

	if exists {
		_ = conn.Close()
	}
}

// Count 返回当前连接数
func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// CloseAll 关闭所有连接。被劫持的连接不受 http.Server.Shutdown 管理，需要在此显式断开。
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for id, conn := range cm.connections {
		_ = conn.Close()
		delete(cm.connections, id)
	}
}
