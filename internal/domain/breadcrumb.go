package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// NotesRevisionPrefix marks a contribution's notes field as carrying a
// revision breadcrumb (legacy linkage, pre-dating admin-comment breadcrumbs).
const NotesRevisionPrefix = "REVISION:"

// breadcrumbRe matches the exact breadcrumb layout. The reason capture is
// greedy to the end of line so labels containing spaces survive.
var breadcrumbRe = regexp.MustCompile(
	`Revision of contribution ([0-9a-fA-F-]{36}|[^.\s]+)\. Original rejection reason: (.+)`,
)

// RevisionBreadcrumb is the parsed linkage between a revision contribution
// and its rejected original. It is inferred from free text, never persisted
// as its own entity.
type RevisionBreadcrumb struct {
	OriginalID  string
	ReasonLabel string
}

// FormatRevisionBreadcrumb renders the canonical breadcrumb text. The exact
// wording is load-bearing: ParseRevisionBreadcrumb and historical records
// both depend on it.
func FormatRevisionBreadcrumb(originalID uuid.UUID, reason RejectionReason) string {
	return fmt.Sprintf("Revision of contribution %s. Original rejection reason: %s",
		originalID, reason.Label())
}

// ParseRevisionBreadcrumb extracts a breadcrumb from free text, if present.
// Text before or after the breadcrumb (including the "REVISION:" notes
// prefix) is tolerated.
func ParseRevisionBreadcrumb(text string) (RevisionBreadcrumb, bool) {
	m := breadcrumbRe.FindStringSubmatch(text)
	if m == nil {
		return RevisionBreadcrumb{}, false
	}
	return RevisionBreadcrumb{
		OriginalID:  m[1],
		ReasonLabel: strings.TrimSpace(m[2]),
	}, true
}

// BreadcrumbOf inspects a contribution's status admin comment first, then its
// notes field, per the linkage priority order. Returns false if neither
// carries a breadcrumb.
func BreadcrumbOf(c *Contribution) (RevisionBreadcrumb, bool) {
	if c.Status != nil && c.Status.AdminComment != nil {
		if b, ok := ParseRevisionBreadcrumb(*c.Status.AdminComment); ok {
			return b, true
		}
	}
	if c.Notes != nil && strings.HasPrefix(strings.TrimSpace(*c.Notes), NotesRevisionPrefix) {
		if b, ok := ParseRevisionBreadcrumb(*c.Notes); ok {
			return b, true
		}
	}
	return RevisionBreadcrumb{}, false
}

// MentionedReasonLabel scans a contribution's comment and notes for any known
// rejection reason label. It is the last-resort linkage heuristic for records
// whose breadcrumb id cannot be resolved. Returns false when no label (or
// more than one distinct label) is mentioned.
func MentionedReasonLabel(c *Contribution) (RejectionReason, bool) {
	var texts []string
	if c.Status != nil && c.Status.AdminComment != nil {
		texts = append(texts, *c.Status.AdminComment)
	}
	if c.Notes != nil {
		texts = append(texts, *c.Notes)
	}

	var found RejectionReason
	count := 0
	for _, r := range AllRejectionReasons {
		for _, t := range texts {
			if strings.Contains(t, r.Label()) {
				found = r
				count++
				break
			}
		}
	}
	if count != 1 {
		return "", false
	}
	return found, true
}
