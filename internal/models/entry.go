// internal/models/entry.go

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Mode is the 32-bit mode word reported by the server for each entry.
// Only the directory flag (bit 31) and the nine permission bits are read.
type Mode uint32

const (
	ModeDir  Mode = 1 << 31
	ModePerm Mode = 0o777
)

// ParentName is the name of the synthesized navigate-up entry.
const ParentName = ".."

// Triad is one rwx permission group.
type Triad struct {
	Read    bool
	Write   bool
	Execute bool
}

// ModeBits is the decoded view of a Mode.
type ModeBits struct {
	IsDirectory bool
	Owner       Triad
	Group       Triad
	Other       Triad
}

func triad(bits uint32) Triad {
	return Triad{
		Read:    bits&0b100 != 0,
		Write:   bits&0b010 != 0,
		Execute: bits&0b001 != 0,
	}
}

// DecodeMode splits a mode word into the directory flag and the three triads.
// Bits 30-9 are ignored.
func DecodeMode(bits Mode) ModeBits {
	v := uint32(bits)
	return ModeBits{
		IsDirectory: (v>>31)&1 != 0,
		Owner:       triad((v >> 6) & 0b111),
		Group:       triad((v >> 3) & 0b111),
		Other:       triad(v & 0b111),
	}
}

// String renders the triad as a fixed 3 character token, e.g. "r-x".
func (t Triad) String() string {
	out := []byte("---")
	if t.Read {
		out[0] = 'r'
	}
	if t.Write {
		out[1] = 'w'
	}
	if t.Execute {
		out[2] = 'x'
	}
	return string(out)
}

// String renders the mode the way a long listing does: "drwxr-xr-x".
func (b ModeBits) String() string {
	marker := "-"
	if b.IsDirectory {
		marker = "d"
	}
	return marker + b.Owner.String() + b.Group.String() + b.Other.String()
}

func (m Mode) IsDir() bool { return m&ModeDir != 0 }
func (m Mode) Perm() Mode  { return m & ModePerm }

func (m Mode) String() string {
	return DecodeMode(m).String()
}

// MarshalJSON always writes the unsigned value.
func (m Mode) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(m), 10), nil
}

// UnmarshalJSON accepts both the signed and the unsigned 32-bit view of the
// mode word, so -2147483648 and 2147483648 decode to the same directory flag.
func (m *Mode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("mode: %w", err)
	}

	v, err := n.Int64()
	if err != nil {
		return fmt.Errorf("mode %s is not an integer", n.String())
	}
	if v < math.MinInt32 || v > math.MaxUint32 {
		return fmt.Errorf("mode %d out of 32-bit range", v)
	}

	*m = Mode(uint32(v))
	return nil
}

// RemoteEntry is one row of a remote directory listing.
type RemoteEntry struct {
	Name string `json:"name"`
	Mode Mode   `json:"mode"`
}

// ParentEntry returns the ".." entry prepended to every listing.
func ParentEntry() RemoteEntry {
	return RemoteEntry{Name: ParentName, Mode: ModeDir}
}

func (e RemoteEntry) IsDir() bool    { return e.Mode.IsDir() }
func (e RemoteEntry) IsParent() bool { return e.Name == ParentName }

// list.Item
func (e RemoteEntry) Title() string       { return e.Name }
func (e RemoteEntry) Description() string { return e.Mode.String() }
func (e RemoteEntry) FilterValue() string { return e.Name }
