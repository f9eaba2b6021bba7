package session

import (
	"context"
	"sync"

	"github.com/kbukum/deskhub/logger"
)

// Navigator moves the user to a location such as a login page.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Notifier shows a message to the user. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

func (f NavigatorFunc) Navigate(ctx context.Context, path string) error { return f(ctx, path) }

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg string)

func (f NotifierFunc) Notify(ctx context.Context, msg string) { f(ctx, msg) }

// RecordingNavigator remembers every navigation. Useful for CLIs and tests.
type RecordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *RecordingNavigator) Navigate(_ context.Context, path string) error {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
	return nil
}

// Paths returns the navigations so far, oldest first.
func (n *RecordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// Last returns the most recent navigation, or "".
func (n *RecordingNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Log *logger.Logger
}

func (n LogNotifier) Notify(_ context.Context, msg string) {
	l := n.Log
	if l == nil {
		l = logger.WithComponent("session")
	}
	l.Warn(msg)
}

// ChannelNotifier forwards notifications to C without blocking; messages
// are dropped when C is full.
type ChannelNotifier struct {
	C chan string
}

// NewChannelNotifier creates a notifier with a buffer of size n.
func NewChannelNotifier(n int) *ChannelNotifier {
	return &ChannelNotifier{C: make(chan string, n)}
}

func (n *ChannelNotifier) Notify(_ context.Context, msg string) {
	select {
	case n.C <- msg:
	default:
	}
}
