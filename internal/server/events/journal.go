package events

// journal is a fixed-size ring of the most recent events in Seq order.
type journal struct {
	buf   []Event
	start int
	n     int
}

func newJournal(size int) *journal {
	if size < 1 {
		size = 1
	}
	return &journal{buf: make([]Event, size)}
}

func (j *journal) add(e Event) {
	if j.n < len(j.buf) {
		j.buf[(j.start+j.n)%len(j.buf)] = e
		j.n++
		return
	}
	j.buf[j.start] = e
	j.start = (j.start + 1) % len(j.buf)
}

func (j *journal) at(i int) Event { return j.buf[(j.start+i)%len(j.buf)] }

// since returns the retained events after seq. complete is false when some
// of them were already evicted, or when seq is ahead of the newest event
// (a client from an earlier process).
func (j *journal) since(seq uint64) (out []Event, complete bool) {
	if j.n == 0 {
		return nil, seq == 0
	}
	oldest, newest := j.at(0).Seq, j.at(j.n-1).Seq
	if seq > newest || seq+1 < oldest {
		return nil, false
	}
	for i := int(seq + 1 - oldest); i < j.n; i++ {
		out = append(out, j.at(i))
	}
	return out, true
}

func (j *journal) len() int { return j.n }
