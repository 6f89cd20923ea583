package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	apperrors "wspick/internal/error"
	"wspick/internal/models"
)

const separator = " "

func malformed(verb Verb, err error) error {
	return apperrors.New(apperrors.ProtocolError, fmt.Sprintf("malformed %s payload", verb), err)
}

func marshal(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func frame(verb Verb, payload interface{}) (string, error) {
	body, err := marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", verb, err)
	}
	return string(verb) + separator + body, nil
}

// EncodeCommand renders a command as a single text frame.
func EncodeCommand(cmd Command) (string, error) {
	switch c := cmd.(type) {
	case ConnectCommand:
		return frame(VerbConnect, c)
	case ListCommand:
		return string(VerbList), nil
	case EnterCommand:
		return frame(VerbEnter, c.Entry)
	case DownloadCommand:
		return frame(VerbDownload, c.Entry)
	case DownloadBulkCommand:
		entries := c.Entries
		if entries == nil {
			entries = []models.RemoteEntry{}
		}
		return frame(VerbDownloadBulk, entries)
	case DisconnectCommand:
		return string(VerbDisconnect), nil
	case nil:
		return "", fmt.Errorf("nil command")
	default:
		return "", fmt.Errorf("unsupported command %T", cmd)
	}
}

// split cuts a frame at the first space. Verbs are compared as whole tokens,
// never as prefixes, so "download" and "download-bulk" stay distinct.
func split(raw string) (Verb, string, bool) {
	verb, payload, ok := strings.Cut(raw, separator)
	return Verb(verb), payload, ok
}

func decodeEntries(verb Verb, payload string) ([]models.RemoteEntry, error) {
	var entries []models.RemoteEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, malformed(verb, err)
	}
	if entries == nil {
		entries = []models.RemoteEntry{}
	}
	return entries, nil
}

func decodeEntry(verb Verb, payload string) (models.RemoteEntry, error) {
	var entry models.RemoteEntry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return entry, malformed(verb, err)
	}
	return entry, nil
}

// DecodeEvent parses one inbound frame. Frames with an unknown verb decode to
// UnknownEvent without error; a known verb with a bad payload is a
// ProtocolError.
func DecodeEvent(raw string) (Event, error) {
	verb, payload, hasPayload := split(raw)

	switch verb {
	case VerbConnected:
		return ConnectedEvent{}, nil
	case VerbDisconnected:
		return DisconnectedEvent{}, nil
	case VerbList:
		if !hasPayload {
			return nil, malformed(verb, fmt.Errorf("missing listing"))
		}
		entries, err := decodeEntries(verb, payload)
		if err != nil {
			return nil, err
		}
		return ListEvent{Entries: entries}, nil
	case VerbEntered:
		if !hasPayload || payload == "" {
			return EnteredEvent{}, nil
		}
		return EnteredEvent{Path: payload, HasPath: true}, nil
	case VerbDownload:
		fields := strings.Fields(payload)
		if len(fields) == 0 {
			return nil, malformed(verb, fmt.Errorf("missing url"))
		}
		u, err := url.Parse(fields[0])
		if err != nil {
			return nil, malformed(verb, err)
		}
		return DownloadEvent{URL: u.String()}, nil
	default:
		return UnknownEvent{Name: string(verb), Raw: raw}, nil
	}
}

// DecodeCommand parses a client frame. Servers and test doubles use it.
func DecodeCommand(raw string) (Command, error) {
	verb, payload, hasPayload := split(raw)

	switch verb {
	case VerbConnect:
		var c ConnectCommand
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			return nil, malformed(verb, err)
		}
		return c, nil
	case VerbList:
		return ListCommand{}, nil
	case VerbEnter:
		entry, err := decodeEntry(verb, payload)
		if err != nil {
			return nil, err
		}
		return EnterCommand{Entry: entry}, nil
	case VerbDownload:
		entry, err := decodeEntry(verb, payload)
		if err != nil {
			return nil, err
		}
		return DownloadCommand{Entry: entry}, nil
	case VerbDownloadBulk:
		if !hasPayload {
			return nil, malformed(verb, fmt.Errorf("missing entries"))
		}
		entries, err := decodeEntries(verb, payload)
		if err != nil {
			return nil, err
		}
		return DownloadBulkCommand{Entries: entries}, nil
	case VerbDisconnect:
		return DisconnectCommand{}, nil
	default:
		return nil, apperrors.Newf(apperrors.ProtocolError, "unknown command %q", string(verb))
	}
}

// EncodeEvent renders a server event as a frame.
func EncodeEvent(ev Event) (string, error) {
	switch e := ev.(type) {
	case ConnectedEvent:
		return string(VerbConnected), nil
	case DisconnectedEvent:
		return string(VerbDisconnected), nil
	case ListEvent:
		entries := e.Entries
		if entries == nil {
			entries = []models.RemoteEntry{}
		}
		return frame(VerbList, entries)
	case EnteredEvent:
		if !e.HasPath {
			return string(VerbEntered), nil
		}
		return string(VerbEntered) + separator + e.Path, nil
	case DownloadEvent:
		return string(VerbDownload) + separator + e.URL, nil
	case UnknownEvent:
		return e.Raw, nil
	case nil:
		return "", fmt.Errorf("nil event")
	default:
		return "", fmt.Errorf("unsupported event %T", ev)
	}
}
