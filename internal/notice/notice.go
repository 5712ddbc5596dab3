// Package notice implements the transient success/error banner each view
// owns. A banner clears itself after its TTL; setting a new message cancels
// the pending clear and schedules a fresh one.
package notice

import (
	"sync"
	"time"
)

// DefaultTTL is how long a message stays up.
const DefaultTTL = 3 * time.Second

type Kind int

const (
	None Kind = iota
	Success
	Error
)

type Message struct {
	Kind Kind
	Text string
}

func (m Message) Empty() bool { return m.Kind == None || m.Text == "" }

// Notice is safe for concurrent use. OnChange, if set, is called outside the
// lock after every change, including the automatic clear.
type Notice struct {
	mu       sync.Mutex
	ttl      time.Duration
	current  Message
	timer    *time.Timer
	gen      uint64
	onChange func(Message)
}

func New(ttl time.Duration, onChange func(Message)) *Notice {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notice{ttl: ttl, onChange: onChange}
}

func (n *Notice) Success(text string) { n.Set(Message{Kind: Success, Text: text}) }
func (n *Notice) Error(text string)   { n.Set(Message{Kind: Error, Text: text}) }

// Set replaces the current message. An empty message clears the banner.
func (n *Notice) Set(m Message) {
	if m.Empty() {
		n.Clear()
		return
	}
	n.mu.Lock()
	n.cancelLocked()
	n.current = m
	gen := n.gen
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(gen) })
	n.mu.Unlock()
	n.notify(m)
}

func (n *Notice) Clear() {
	n.mu.Lock()
	n.cancelLocked()
	changed := !n.current.Empty()
	n.current = Message{}
	n.mu.Unlock()
	if changed {
		n.notify(Message{})
	}
}

func (n *Notice) Current() Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Stop cancels any pending clear without touching the message.
func (n *Notice) Stop() {
	n.mu.Lock()
	n.cancelLocked()
	n.mu.Unlock()
}

// SetTTL applies to messages set after the call.
func (n *Notice) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	n.mu.Lock()
	n.ttl = ttl
	n.mu.Unlock()
}

// cancelLocked bumps the generation so a timer that already fired and is
// waiting on the lock does nothing.
func (n *Notice) cancelLocked() {
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notice) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.current = Message{}
	n.mu.Unlock()
	n.notify(Message{})
}

func (n *Notice) notify(m Message) {
	if n.onChange != nil {
		n.onChange(m)
	}
}
