// internal/models/host.go

package models

import "strings"

// Target is what the server is asked to connect to: a connection string in
// the [user@]host[:port] form and the remote directory to start in.
type Target struct {
	Hostname string `yaml:"hostname" json:"hostname"`
	Location string `yaml:"location" json:"location"`
}

// Label is used for the recent connections list.
func (t Target) Label() string {
	if t.Location == "" {
		return t.Hostname
	}
	return t.Hostname + ":" + t.Location
}

func (t Target) IsZero() bool {
	return strings.TrimSpace(t.Hostname) == ""
}
