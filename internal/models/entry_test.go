package models

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeString(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want string
	}{
		{"regular file", 0o644, "-rw-r--r--"},
		{"directory", ModeDir | 0o755, "drwxr-xr-x"},
		{"no permissions", 0, "----------"},
		{"private dir", ModeDir | 0o700, "drwx------"},
		{"ignored middle bits", Mode(0x7FFFFE00) | 0o640, "-rw-r-----"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.String())
		})
	}
}

func TestDecodeMode(t *testing.T) {
	bits := DecodeMode(ModeDir | 0o751)

	assert.True(t, bits.IsDirectory)
	assert.Equal(t, Triad{Read: true, Write: true, Execute: true}, bits.Owner)
	assert.Equal(t, Triad{Read: true, Execute: true}, bits.Group)
	assert.Equal(t, Triad{Execute: true}, bits.Other)
}

func TestDecodeModeMatchesRawBits(t *testing.T) {
	values := []uint32{0, 0xFFFFFFFF, 1 << 31, 0o777, 0x7FFFFE00, 0xFFFFFE00, 0o400, 0o001}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		values = append(values, rng.Uint32())
	}

	letters := "rwxrwxrwx"
	for _, v := range values {
		bits := DecodeMode(Mode(v))
		got := []bool{
			bits.Owner.Read, bits.Owner.Write, bits.Owner.Execute,
			bits.Group.Read, bits.Group.Write, bits.Group.Execute,
			bits.Other.Read, bits.Other.Write, bits.Other.Execute,
		}
		require.Equal(t, v&(1<<31) != 0, bits.IsDirectory, "mode %#x", v)

		str := Mode(v).String()
		require.Len(t, str, 10)
		for j, set := range got {
			want := v&(1<<(8-j)) != 0
			require.Equal(t, want, set, "mode %#x bit %d", v, 8-j)
			if want {
				require.Equal(t, letters[j], str[j+1], "mode %#x", v)
			} else {
				require.Equal(t, byte('-'), str[j+1], "mode %#x", v)
			}
		}
	}
}

func TestModeUnmarshalSignedAndUnsigned(t *testing.T) {
	var signed, unsigned Mode
	require.NoError(t, json.Unmarshal([]byte("-2147483648"), &signed))
	require.NoError(t, json.Unmarshal([]byte("2147483648"), &unsigned))

	assert.Equal(t, signed, unsigned)
	assert.True(t, signed.IsDir())

	var m Mode
	assert.Error(t, json.Unmarshal([]byte("4294967296"), &m))
	assert.Error(t, json.Unmarshal([]byte("1.5"), &m))
}

func TestRemoteEntryJSON(t *testing.T) {
	var entries []RemoteEntry
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"a","mode":-2147483155},{"name":"b.txt","mode":420}]`), &entries))
	require.Len(t, entries, 2)

	assert.True(t, entries[0].IsDir())
	assert.Equal(t, "drwxr-xr-x", entries[0].Mode.String())
	assert.False(t, entries[1].IsDir())
	assert.Equal(t, Mode(0o644), entries[1].Mode)

	out, err := json.Marshal(entries[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a","mode":2147484141}`, string(out))
}

func TestParentEntry(t *testing.T) {
	p := ParentEntry()

	assert.Equal(t, "..", p.Name)
	assert.True(t, p.IsDir())
	assert.True(t, p.IsParent())
	assert.False(t, RemoteEntry{Name: "x"}.IsParent())
}

func TestTarget(t *testing.T) {
	assert.True(t, Target{Hostname: "   "}.IsZero())
	assert.False(t, Target{Hostname: "u@h"}.IsZero())
	assert.Equal(t, "u@h", Target{Hostname: "u@h"}.Label())
	assert.Equal(t, "u@h:/srv", Target{Hostname: "u@h", Location: "/srv"}.Label())
}
