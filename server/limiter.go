package server

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Limiter allows Limit requests per client in fixed windows of Window.
type Limiter struct {
	Limit  int
	Window time.Duration
	Now    func() time.Time

	mu      sync.Mutex
	clients map[string]*window
}

func NewLimiter(limit int, win time.Duration) *Limiter {
	return &Limiter{
		Limit:   limit,
		Window:  win,
		Now:     time.Now,
		clients: make(map[string]*window),
	}
}

func (l *Limiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Now()
	w, ok := l.clients[client]
	if !ok || now.After(w.resetAt) {
		l.clients[client] = &window{count: 1, resetAt: now.Add(l.Window)}
		l.prune(now)
		return true
	}
	if w.count >= l.Limit {
		return false
	}
	w.count++
	return true
}

// prune drops expired windows once the table grows large.
func (l *Limiter) prune(now time.Time) {
	if len(l.clients) < 10000 {
		return
	}
	for k, w := range l.clients {
		if now.After(w.resetAt) {
			delete(l.clients, k)
		}
	}
}

// ClientIP identifies the caller by the proxy headers, falling back to "unknown".
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return "unknown"
}
