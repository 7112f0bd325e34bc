// Package thread reconstructs revision threads from contribution records.
// Nothing here touches storage: threads are derived from whatever set of
// contributions the caller loads, using the explicit parent reference where
// present and free-text breadcrumbs for legacy rows.
package thread

import (
	"sort"
	"strings"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

// Reconstruct partitions contributions into revision threads and standalone
// entries. Every input contribution lands in exactly one thread or in the
// standalone set. It never fails: a breadcrumb that cannot be resolved simply
// leaves its contribution standalone.
//
// Linkage resolution, in priority order:
//  1. explicit ParentID matching a contribution in the input set
//  2. breadcrumb original id matching a contribution in the input set
//  3. reason-label fallback: the breadcrumb (or any mentioned reason label)
//     matches exactly one rejected contribution by the same donor
//
// Chains collapse: a revision of a revision joins the ultimate root's thread.
func Reconstruct(contributions []*domain.Contribution) domain.ThreadSet {
	byID := make(map[string]*domain.Contribution, len(contributions))
	for _, c := range contributions {
		byID[c.ID.String()] = c
	}

	parents := make(map[*domain.Contribution]*domain.Contribution)
	for _, c := range contributions {
		if p := resolveParent(c, byID, contributions); p != nil && p != c {
			parents[c] = p
		}
	}

	roots := make(map[*domain.Contribution]*domain.Contribution, len(contributions))
	for _, c := range contributions {
		roots[c] = rootOf(c, parents)
	}

	children := make(map[*domain.Contribution][]*domain.Contribution)
	for _, c := range contributions {
		r := roots[c]
		if r != c {
			children[r] = append(children[r], c)
		}
	}

	var set domain.ThreadSet
	for _, c := range contributions {
		if roots[c] != c {
			continue // belongs to somebody else's thread
		}
		revs := children[c]
		if len(revs) == 0 && !c.IsRejected() {
			set.Standalone = append(set.Standalone, c)
			continue
		}
		sort.SliceStable(revs, func(i, j int) bool {
			return revs[i].CreatedAt.Before(revs[j].CreatedAt)
		})
		set.Threads = append(set.Threads, &domain.Thread{Root: c, Revisions: revs})
	}

	return set
}

// resolveParent finds the contribution a record's linkage points at, or nil.
func resolveParent(c *domain.Contribution, byID map[string]*domain.Contribution, all []*domain.Contribution) *domain.Contribution {
	// Records written by the revision pipeline carry an explicit parent
	// reference; text parsing only serves rows that predate it.
	if c.ParentID != nil {
		if p, found := byID[c.ParentID.String()]; found {
			return p
		}
	}

	b, ok := domain.BreadcrumbOf(c)
	if ok {
		if p, found := byID[b.OriginalID]; found {
			return p
		}
		// Dangling id, e.g. a record migrated from the legacy system. Fall
		// back to the reason label the breadcrumb itself names.
		if reason, found := domain.ReasonByLabel(b.ReasonLabel); found {
			return matchByReason(c, reason, all)
		}
		return nil
	}

	// No parseable breadcrumb. For records still marked as revisions, a
	// mentioned reason label is the weakest signal, used only when it is
	// unambiguous. Unmarked records never bind this way: a reviewer's own
	// comment quoting a reason label must not turn an original into a
	// revision.
	if !hasRevisionMark(c) {
		return nil
	}
	if reason, found := domain.MentionedReasonLabel(c); found {
		return matchByReason(c, reason, all)
	}
	return nil
}

func hasRevisionMark(c *domain.Contribution) bool {
	return c.Notes != nil && strings.HasPrefix(strings.TrimSpace(*c.Notes), domain.NotesRevisionPrefix)
}

// matchByReason binds to a rejected contribution by the same donor whose
// rejection reason matches, but only when exactly one candidate exists.
func matchByReason(c *domain.Contribution, reason domain.RejectionReason, all []*domain.Contribution) *domain.Contribution {
	var match *domain.Contribution
	for _, cand := range all {
		if cand == c || cand.DonorID != c.DonorID {
			continue
		}
		st := cand.Status
		if st == nil || st.Status != domain.StatusRejected || st.RejectionReason == nil {
			continue
		}
		if *st.RejectionReason != reason {
			continue
		}
		if match != nil {
			return nil // ambiguous
		}
		match = cand
	}
	return match
}

// rootOf follows parent links to the top of a chain. A visited set guards
// against breadcrumb cycles in corrupt data.
func rootOf(c *domain.Contribution, parents map[*domain.Contribution]*domain.Contribution) *domain.Contribution {
	visited := map[*domain.Contribution]bool{c: true}
	cur := c
	for {
		p, ok := parents[cur]
		if !ok {
			return cur
		}
		if visited[p] {
			return cur
		}
		visited[p] = true
		cur = p
	}
}

// Entries flattens a thread set into the interleaved display ordering: rows
// sorted by most recent activity, a whole thread counting as one row.
func Entries(set domain.ThreadSet) []domain.ListEntry {
	entries := make([]domain.ListEntry, 0, len(set.Threads)+len(set.Standalone))
	for _, t := range set.Threads {
		entries = append(entries, domain.ListEntry{Thread: t})
	}
	for _, c := range set.Standalone {
		entries = append(entries, domain.ListEntry{Standalone: c})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SortedAt().After(entries[j].SortedAt())
	})
	return entries
}
