package engine

import (
	"sync"
	"time"

	"github.com/packzen/packzen-client/internal/errors"
	"github.com/packzen/packzen-client/internal/id"
)

// NoticeLevel classifies a user-visible notice.
type NoticeLevel string

// Notice levels.
const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is one toast-style message for the user. Every failure path in the
// engine ends in a notice plus a consistent local state; nothing is fatal.
type Notice struct {
	Time    time.Time
	ID      string
	Level   NoticeLevel
	Message string
}

const noticeCapacity = 50

// Notices records recent user-visible messages, newest first.
type Notices struct {
	mu      sync.RWMutex
	entries []Notice
}

// NewNotices creates an empty recorder.
func NewNotices() *Notices {
	return &Notices{}
}

// Info records an informational notice.
func (n *Notices) Info(msg string) {
	n.record(NoticeInfo, msg)
}

// Error records an error notice.
func (n *Notices) Error(msg string) {
	n.record(NoticeError, msg)
}

// Failure records the failure notice for a rolled-back mutation, using the
// remote error text when available.
func (n *Notices) Failure(err *errors.Error) {
	msg := "Something went wrong. Your change was undone."
	if err != nil && err.Message != "" {
		msg = err.Message
	}
	n.record(NoticeError, msg)
}

// Recent returns recorded notices, newest first.
func (n *Notices) Recent() []Notice {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]Notice, len(n.entries))
	for i, notice := range n.entries {
		out[len(n.entries)-1-i] = notice
	}
	return out
}

func (n *Notices) record(level NoticeLevel, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.entries = append(n.entries, Notice{
		Time:    time.Now(),
		ID:      id.MustGenerate(id.PrefixNotice),
		Level:   level,
		Message: msg,
	})
	if len(n.entries) > noticeCapacity {
		n.entries = n.entries[len(n.entries)-noticeCapacity:]
	}
}
