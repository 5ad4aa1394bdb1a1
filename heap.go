package lexsort

// mergeSource is one input run's reader plus its current head record.
// The reader's current slot is authoritative; the heap holds no second
// copy of the record itself, only a pointer to it.
type mergeSource struct {
	r   *runReader
	cur *Record
}

// advance reads the next valid record from the source's run, replacing
// cur. Returns ok=false when the run is exhausted.
func (s *mergeSource) advance() (ok bool, err error) {
	next := newRecord()
	ok, err = s.r.Next(next)
	if err != nil {
		next.Release()
		return false, err
	}
	if !ok {
		next.Release()
		return false, nil
	}
	if s.cur != nil {
		s.cur.Release()
	}
	s.cur = next
	return true, nil
}

func (s *mergeSource) close() error {
	if s.cur != nil {
		s.cur.Release()
		s.cur = nil
	}
	return s.r.Close()
}

// mergeHeap is a container/heap min-heap of mergeSources, ordered by
// each source's current record.
type mergeHeap []*mergeSource

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	return compareRecords(h[i].cur, h[j].cur) < 0
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) {
	*h = append(*h, x.(*mergeSource))
}

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
