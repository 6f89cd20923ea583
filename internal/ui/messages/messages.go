// internal/ui/messages/messages.go

package messages

import (
	"time"

	"wspick/internal/transport"
)

// TransportEventMsg carries one event from a transport's channel. Source is
// the channel it was read from so the listener can be re-armed on it.
type TransportEventMsg struct {
	Event  transport.Event
	Source <-chan transport.Event
}

// TransportDoneMsg reports that a transport's channel was closed.
type TransportDoneMsg struct {
	ConnID string
}

type TickMsg time.Time

// OpenedMsg is the outcome of handing a download link to the opener.
type OpenedMsg struct {
	URL         string
	Description string
	Err         error
}

type ConfigSavedMsg struct {
	Err error
}
