package constants

// SubmissionStatus is the lifecycle state of one submission version.
type SubmissionStatus string

const (
	StatusDraft    SubmissionStatus = "draft"
	StatusPending  SubmissionStatus = "pending"
	StatusReturned SubmissionStatus = "returned"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

// Terminal reports whether no further decision can change this version.
func (s SubmissionStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Decision recorded on a FormApproval row. The empty value means undecided.
type Decision string

const (
	DecisionNone     Decision = ""
	DecisionApproved Decision = "approved"
	DecisionReturned Decision = "returned"
	DecisionRejected Decision = "rejected"
)

func (d Decision) Decided() bool { return d != DecisionNone }

// DelegationAction is the audit verb stored in delegation history.
type DelegationAction string

const (
	DelegationCreated   DelegationAction = "created"
	DelegationUpdated   DelegationAction = "updated"
	DelegationCancelled DelegationAction = "cancelled"
	DelegationExpired   DelegationAction = "expired"
)

// Notification kinds
const (
	NotifyDelegation = "delegation"
	NotifyApproval   = "approval"
	NotifySubmission = "submission"
)
