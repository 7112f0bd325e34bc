package domain

import "time"

// Thread groups one rejected original contribution with its ordered revision
// contributions. Threads are derived by reconstruction, never persisted.
type Thread struct {
	Root *Contribution
	// Revisions are ordered by creation time ascending; the last entry is
	// the submission the donor/admin should act on next.
	Revisions []*Contribution
}

// LastActivity returns the most recent creation timestamp among the root and
// all revisions. Used for interleave-by-recency display ordering.
func (t *Thread) LastActivity() time.Time {
	last := t.Root.CreatedAt
	for _, r := range t.Revisions {
		if r.CreatedAt.After(last) {
			last = r.CreatedAt
		}
	}
	return last
}

// Latest returns the newest contribution in the thread.
func (t *Thread) Latest() *Contribution {
	if len(t.Revisions) == 0 {
		return t.Root
	}
	return t.Revisions[len(t.Revisions)-1]
}

// ThreadSet is the result of thread reconstruction: every input contribution
// appears in exactly one thread or in the standalone set, never both.
type ThreadSet struct {
	Threads    []*Thread
	Standalone []*Contribution
}

// ListEntry is one row of the interleaved display ordering: either a whole
// thread or a standalone contribution.
type ListEntry struct {
	Thread     *Thread
	Standalone *Contribution
}

// SortedAt returns the timestamp the entry sorts by.
func (e ListEntry) SortedAt() time.Time {
	if e.Thread != nil {
		return e.Thread.LastActivity()
	}
	return e.Standalone.CreatedAt
}
