package domain

// StatusValue represents the review status of a contribution.
type StatusValue string

const (
	StatusPending      StatusValue = "pending"
	StatusApproved     StatusValue = "approved"
	StatusRejected     StatusValue = "rejected"
	StatusAcknowledged StatusValue = "acknowledged"
)

func (s StatusValue) String() string { return string(s) }

func (s StatusValue) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusAcknowledged:
		return true
	}
	return false
}

// IsTerminal reports whether the contribution can no longer change status.
// Rejected is not terminal: the donor may still acknowledge it, and a
// revision contribution may be created from it.
func (s StatusValue) IsTerminal() bool {
	return s == StatusApproved || s == StatusAcknowledged
}

// RejectionReason is the fixed taxonomy of structured rejection causes.
type RejectionReason string

const (
	ReasonPaymentProofInvalid RejectionReason = "payment_proof_invalid"
	ReasonPaymentNotReceived  RejectionReason = "payment_not_received"
	ReasonInsufficientFunds   RejectionReason = "insufficient_funds"
	ReasonDuplicatePayment    RejectionReason = "duplicate_payment"
	ReasonWrongPaymentMethod  RejectionReason = "wrong_payment_method"
	ReasonPaymentExpired      RejectionReason = "payment_expired"
	ReasonWrongAmount         RejectionReason = "wrong_amount"
	ReasonSuspiciousActivity  RejectionReason = "suspicious_activity"
	ReasonOther               RejectionReason = "other"
)

// AllRejectionReasons lists every taxonomy value, in display order.
var AllRejectionReasons = []RejectionReason{
	ReasonPaymentProofInvalid,
	ReasonPaymentNotReceived,
	ReasonInsufficientFunds,
	ReasonDuplicatePayment,
	ReasonWrongPaymentMethod,
	ReasonPaymentExpired,
	ReasonWrongAmount,
	ReasonSuspiciousActivity,
	ReasonOther,
}

func (r RejectionReason) String() string { return string(r) }

func (r RejectionReason) IsValid() bool {
	switch r {
	case ReasonPaymentProofInvalid, ReasonPaymentNotReceived, ReasonInsufficientFunds,
		ReasonDuplicatePayment, ReasonWrongPaymentMethod, ReasonPaymentExpired,
		ReasonWrongAmount, ReasonSuspiciousActivity, ReasonOther:
		return true
	}
	return false
}

// Label returns the human-readable label for the reason. This exact text is
// embedded in revision breadcrumbs, so changing a label breaks linkage of
// contributions created after the change.
func (r RejectionReason) Label() string {
	switch r {
	case ReasonPaymentProofInvalid:
		return "Payment Proof Invalid"
	case ReasonPaymentNotReceived:
		return "Payment Not Received"
	case ReasonInsufficientFunds:
		return "Insufficient Funds"
	case ReasonDuplicatePayment:
		return "Duplicate Payment"
	case ReasonWrongPaymentMethod:
		return "Wrong Payment Method"
	case ReasonPaymentExpired:
		return "Payment Expired"
	case ReasonWrongAmount:
		return "Wrong Amount"
	case ReasonSuspiciousActivity:
		return "Suspicious Activity"
	case ReasonOther:
		return "Other"
	}
	return string(r)
}

// ReasonByLabel resolves a human-readable label back to its taxonomy value.
// Used by the thread reconstruction fallback heuristic.
func ReasonByLabel(label string) (RejectionReason, bool) {
	for _, r := range AllRejectionReasons {
		if r.Label() == label {
			return r, true
		}
	}
	return "", false
}

// CaseStatus represents the lifecycle state of a charity case.
type CaseStatus string

const (
	CaseStatusDraft  CaseStatus = "draft"
	CaseStatusOpen   CaseStatus = "open"
	CaseStatusClosed CaseStatus = "closed"
)

func (s CaseStatus) String() string { return string(s) }

func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusDraft, CaseStatusOpen, CaseStatusClosed:
		return true
	}
	return false
}

// UserRole represents the authorization level of a user.
type UserRole string

const (
	UserRoleDonor    UserRole = "donor"
	UserRoleReviewer UserRole = "reviewer"
	UserRoleAdmin    UserRole = "admin"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleDonor, UserRoleReviewer, UserRoleAdmin:
		return true
	}
	return false
}

func (r UserRole) IsAdmin() bool { return r == UserRoleAdmin }

// CanReview reports whether the role may approve or reject contributions.
func (r UserRole) CanReview() bool {
	return r == UserRoleAdmin || r == UserRoleReviewer
}

// AuditAction represents the kind of decision recorded in the audit log.
type AuditAction string

const (
	AuditActionApprove     AuditAction = "APPROVE"
	AuditActionReject      AuditAction = "REJECT"
	AuditActionAcknowledge AuditAction = "ACKNOWLEDGE"
	AuditActionRevise      AuditAction = "REVISE"
	AuditActionRoleChange  AuditAction = "ROLE_CHANGE"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionApprove, AuditActionReject, AuditActionAcknowledge,
		AuditActionRevise, AuditActionRoleChange:
		return true
	}
	return false
}
