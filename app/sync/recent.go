package sync

// RecentWindow is a fixed-capacity ordered set of recently appended article
// ids, evicting oldest-first. It is a short-horizon dedup guard, not a full
// seen-set: ids older than the window can re-appear, which is an accepted
// trade-off of the design.
type RecentWindow struct {
	capacity int
	order    []string
	members  map[string]struct{}
}

func NewRecentWindow(capacity int, ids ...string) *RecentWindow {
	w := &RecentWindow{
		capacity: capacity,
		members:  make(map[string]struct{}, capacity),
	}
	for _, id := range ids {
		w.Add(id)
	}
	return w
}

func (w *RecentWindow) Contains(id string) bool {
	_, ok := w.members[id]
	return ok
}

// Add inserts the id at the most-recent end. Known ids are ignored; when the
// capacity is exceeded the oldest entry is evicted.
func (w *RecentWindow) Add(id string) {
	if w.Contains(id) {
		return
	}

	w.order = append(w.order, id)
	w.members[id] = struct{}{}

	for len(w.order) > w.capacity {
		evicted := w.order[0]
		w.order = w.order[1:]
		delete(w.members, evicted)
	}
}

func (w *RecentWindow) Len() int {
	return len(w.order)
}

// IDs returns the window in insertion order, most recent last.
func (w *RecentWindow) IDs() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}
