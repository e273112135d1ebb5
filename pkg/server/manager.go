package server

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ConnectionManager tracks live connections for limits, statistics and
// shutdown.
type ConnectionManager struct {
	// Connections map protected by RWMutex
	conns map[uint64]*Connection
	mu    sync.RWMutex

	// MaxSessions is the connection limit; 0 means no limit.
	maxSessions int

	// Metrics
	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
	peak         int

	logger *slog.Logger
}

// NewConnectionManager creates a ConnectionManager.
func NewConnectionManager(maxSessions int, logger *slog.Logger) *ConnectionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConnectionManager{
		conns:       make(map[uint64]*Connection),
		maxSessions: maxSessions,
		logger:      logger.With("component", "connection_manager"),
	}
}

// Reserve fails with ErrMaxSessionsReached when the limit is reached. It is
// checked before upgrading so a rejected client gets an HTTP error.
func (m *ConnectionManager) Reserve() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.maxSessions > 0 && len(m.conns) >= m.maxSessions {
		return ErrMaxSessionsReached
	}
	return nil
}

// Add registers c and arranges for it to be removed when it closes.
func (m *ConnectionManager) Add(c *Connection) error {
	m.mu.Lock()
	if m.maxSessions > 0 && len(m.conns) >= m.maxSessions {
		m.mu.Unlock()
		return ErrMaxSessionsReached
	}
	m.conns[c.ID()] = c
	if len(m.conns) > m.peak {
		m.peak = len(m.conns)
	}
	c.onClose = m.remove
	m.mu.Unlock()

	m.totalCreated.Add(1)
	m.logger.Info("connection registered",
		"session_id", c.ID(),
		"active_sessions", m.Count())
	return nil
}

func (m *ConnectionManager) remove(c *Connection) {
	m.mu.Lock()
	_, ok := m.conns[c.ID()]
	delete(m.conns, c.ID())
	m.mu.Unlock()

	if ok {
		m.totalClosed.Add(1)
	}
}

// Get returns the connection for a session identifier, or nil.
func (m *ConnectionManager) Get(id uint64) *Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conns[id]
}

// Count returns the number of live connections.
func (m *ConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// ForEach iterates over all connections.
// The callback should not perform long-running operations as it holds the read lock.
func (m *ConnectionManager) ForEach(fn func(*Connection) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.conns {
		if !fn(c) {
			break
		}
	}
}

// Shutdown closes every connection and waits until they are gone or ctx
// expires.
func (m *ConnectionManager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	conns := make([]*Connection, 0, len(m.conns))
	for _, c := range m.conns {
		conns = append(conns, c)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, c := range conns {
		wg.Add(1)
		go func(c *Connection) {
			defer wg.Done()
			c.Close()
		}(c)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("all connections closed", "count", len(conns))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns aggregated statistics.
func (m *ConnectionManager) Stats() ManagerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ManagerStats{
		Active:       len(m.conns),
		TotalCreated: m.totalCreated.Load(),
		TotalClosed:  m.totalClosed.Load(),
		Peak:         m.peak,
	}
}

// ManagerStats contains aggregated connection statistics.
type ManagerStats struct {
	Active       int
	TotalCreated uint64
	TotalClosed  uint64
	Peak         int
}
