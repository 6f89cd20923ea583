// Package protocol implements the text frame codec spoken over the session
// connection. Every frame is "<verb>" or "<verb> <payload>", where the payload
// is JSON for every verb except the inbound "entered" and "download" events.
package protocol

import "wspick/internal/models"

type Verb string

// Outbound verbs.
const (
	VerbConnect      Verb = "connect"
	VerbList         Verb = "list"
	VerbEnter        Verb = "enter"
	VerbDownload     Verb = "download"
	VerbDownloadBulk Verb = "download-bulk"
	VerbDisconnect   Verb = "disconnect"
)

// Inbound verbs. "list" and "download" are shared with the outbound set.
const (
	VerbConnected    Verb = "connected"
	VerbDisconnected Verb = "disconnected"
	VerbEntered      Verb = "entered"
)

// Command is a client-to-server message.
type Command interface {
	Verb() Verb
	command()
}

type ConnectCommand struct {
	Hostname string `json:"hostname"`
	Location string `json:"location"`
}

type ListCommand struct{}

type EnterCommand struct {
	Entry models.RemoteEntry
}

type DownloadCommand struct {
	Entry models.RemoteEntry
}

type DownloadBulkCommand struct {
	Entries []models.RemoteEntry
}

type DisconnectCommand struct{}

func (ConnectCommand) Verb() Verb      { return VerbConnect }
func (ListCommand) Verb() Verb         { return VerbList }
func (EnterCommand) Verb() Verb        { return VerbEnter }
func (DownloadCommand) Verb() Verb     { return VerbDownload }
func (DownloadBulkCommand) Verb() Verb { return VerbDownloadBulk }
func (DisconnectCommand) Verb() Verb   { return VerbDisconnect }

func (ConnectCommand) command()      {}
func (ListCommand) command()         {}
func (EnterCommand) command()        {}
func (DownloadCommand) command()     {}
func (DownloadBulkCommand) command() {}
func (DisconnectCommand) command()   {}

// Event is a server-to-client message.
type Event interface {
	Verb() Verb
	event()
}

type ConnectedEvent struct{}

type DisconnectedEvent struct{}

type ListEvent struct {
	Entries []models.RemoteEntry
}

// EnteredEvent acknowledges an enter. Some servers echo the new path.
type EnteredEvent struct {
	Path    string
	HasPath bool
}

type DownloadEvent struct {
	URL string
}

// UnknownEvent carries any frame whose verb this client does not know,
// including the raw error text some servers reply with.
type UnknownEvent struct {
	Name string
	Raw  string
}

func (ConnectedEvent) Verb() Verb    { return VerbConnected }
func (DisconnectedEvent) Verb() Verb { return VerbDisconnected }
func (ListEvent) Verb() Verb         { return VerbList }
func (EnteredEvent) Verb() Verb      { return VerbEntered }
func (DownloadEvent) Verb() Verb     { return VerbDownload }
func (e UnknownEvent) Verb() Verb    { return Verb(e.Name) }

func (ConnectedEvent) event()    {}
func (DisconnectedEvent) event() {}
func (ListEvent) event()         {}
func (EnteredEvent) event()      {}
func (DownloadEvent) event()     {}
func (UnknownEvent) event()      {}
