package handler

import "time"

const (
	loginRateWindow  = 60 * time.Second
	maxLoginAttempts = 10
	loginMapSweepLen = 1024 // expired entries are swept past this size
)

type rateEntry struct {
	count   int
	resetAt time.Time
}

// LoginLimiter caps credential attempts per source IP. Handlers run on
// the game loop goroutine, so no lock is needed.
type LoginLimiter struct {
	byIP map[string]*rateEntry
}

func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{byIP: make(map[string]*rateEntry)}
}

func (l *LoginLimiter) Allow(ip string) bool {
	now := time.Now()
	if len(l.byIP) > loginMapSweepLen {
		for k, e := range l.byIP {
			if now.After(e.resetAt) {
				delete(l.byIP, k)
			}
		}
	}
	entry, ok := l.byIP[ip]
	if !ok || now.After(entry.resetAt) {
		l.byIP[ip] = &rateEntry{count: 1, resetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.count++
	return entry.count <= maxLoginAttempts
}
