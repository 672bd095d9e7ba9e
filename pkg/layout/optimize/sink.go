package optimize

import "github.com/matzehuels/stemma/pkg/tree"

// Notification reports that a node moved during a committed iteration.
type Notification struct {
	Node      tree.NodeID
	Key       string
	X, Y      int
	Iteration int // 1-based commit number
}

// Sink receives move notifications in commit order. Moved is called from
// the goroutine running [Run].
type Sink interface {
	Moved(Notification)
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(Notification)

// Moved calls f(n).
func (f SinkFunc) Moved(n Notification) { f(n) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Notification) {})

// ChannelSink sends every notification on a channel. Sends block, so the
// reader sets the pace of the search.
type ChannelSink chan<- Notification

// Moved sends n on the channel.
func (c ChannelSink) Moved(n Notification) { c <- n }
