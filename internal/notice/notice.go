// Package notice carries one-shot, acknowledgeable user notifications.
package notice

import "sync"

// Kind classifies a notice
type Kind string

const (
	KindValidation     Kind = "validation"
	KindService        Kind = "service"
	KindMalformed      Kind = "malformed"
	KindTransport      Kind = "transport"
	KindClearSucceeded Kind = "clear-succeeded"
	KindClearFailed    Kind = "clear-failed"
)

// Notice is a message the user must acknowledge
type Notice struct {
	Kind    Kind
	Title   string
	Message string
}

// Text renders the notice as a single block, title first
func (n Notice) Text() string {
	if n.Title == "" {
		return n.Message
	}
	return n.Title + ":\n" + n.Message
}

// IsError reports whether the notice describes a failure
func (n Notice) IsError() bool {
	switch n.Kind {
	case KindValidation, KindService, KindMalformed, KindTransport, KindClearFailed:
		return true
	}
	return false
}

// Notifier receives notices
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Discard drops every notice
var Discard Notifier = NotifierFunc(func(Notice) {})

// Queue buffers notices until they are acknowledged, oldest first
type Queue struct {
	mu    sync.Mutex
	items []Notice
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Notify(n Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

// Peek returns the oldest unacknowledged notice
func (q *Queue) Peek() (Notice, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Notice{}, false
	}
	return q.items[0], true
}

// Ack drops the oldest notice and reports whether more remain
func (q *Queue) Ack() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
	return len(q.items) > 0
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Recorder keeps every notice it receives. Used by tests.
type Recorder struct {
	mu      sync.Mutex
	Notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notices = append(r.Notices, n)
}

// All returns a copy of the received notices
func (r *Recorder) All() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.Notices...)
}
