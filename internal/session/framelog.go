// internal/session/framelog.go

package session

const frameLogSize = 200

const (
	prefixOut   = "> "
	prefixIn    = "< "
	prefixError = "! "
)

// frameLog keeps the most recent frames in arrival order, oldest first.
type frameLog struct {
	lines []string
	next  int
	full  bool
}

func newFrameLog(size int) *frameLog {
	return &frameLog{lines: make([]string, size)}
}

func (f *frameLog) add(line string) {
	f.lines[f.next] = line
	f.next = (f.next + 1) % len(f.lines)
	if f.next == 0 {
		f.full = true
	}
}

func (f *frameLog) snapshot() []string {
	if !f.full {
		out := make([]string, f.next)
		copy(out, f.lines[:f.next])
		return out
	}
	out := make([]string, 0, len(f.lines))
	out = append(out, f.lines[f.next:]...)
	return append(out, f.lines[:f.next]...)
}
