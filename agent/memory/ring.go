package memory

// ring is a fixed-capacity FIFO buffer of utterances.
// Once full, each push overwrites the oldest entry.
type ring struct {
	buf  []string
	head int // index of the oldest entry
	size int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]string, capacity)}
}

func (r *ring) push(s string) {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = s
		r.size++
		return
	}
	r.buf[r.head] = s
	r.head = (r.head + 1) % len(r.buf)
}

// items returns the entries oldest-first.
func (r *ring) items() []string {
	out := make([]string, r.size)
	for i := range out {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

func (r *ring) len() int { return r.size }
