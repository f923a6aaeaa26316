// Package notify carries transient, non-fatal notices from the chat core to
// whichever surface is showing them.
package notify

import (
	"sync"
	"time"

	"mentorai/tutor/types"
)

const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

const defaultCapacity = 32

type Notifier interface {
	Notify(n types.Notice)
}

// Func adapts a plain function to Notifier.
type Func func(types.Notice)

func (f Func) Notify(n types.Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(types.Notice) {})

// Buffer keeps the most recent notices until a surface drains them.
type Buffer struct {
	mu       sync.Mutex
	notices  []types.Notice
	capacity int
	now      func() time.Time
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Buffer{capacity: capacity, now: time.Now}
}

func (b *Buffer) Notify(n types.Notice) {
	if n.Variant == "" {
		n.Variant = VariantDefault
	}
	if n.At.IsZero() {
		n.At = b.now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.notices = append(b.notices, n)
	if over := len(b.notices) - b.capacity; over > 0 {
		b.notices = append([]types.Notice(nil), b.notices[over:]...)
	}
}

// Drain returns pending notices oldest first and empties the buffer.
func (b *Buffer) Drain() []types.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.notices
	b.notices = nil
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.notices)
}

// Warning builds a destructive notice.
func Warning(title, description string) types.Notice {
	return types.Notice{Title: title, Description: description, Variant: VariantDestructive}
}

// Info builds a default notice.
func Info(title, description string) types.Notice {
	return types.Notice{Title: title, Description: description, Variant: VariantDefault}
}
