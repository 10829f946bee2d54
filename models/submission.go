package models

import "time"

// SubmissionStatus is the review state of a proof submission
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
	SubmissionStatusPaid     SubmissionStatus = "paid"
)

// Submission = one user's proof of completion for one quest. The composite
// primary key enforces at most one submission per submitter per quest.
// Submissions are never deleted; the table is the audit trail.
type Submission struct {
	QuestID   string           `gorm:"primaryKey;size:64" json:"quest_id"`
	Submitter string           `gorm:"primaryKey;index" json:"submitter"`
	ProofHash ProofHash        `gorm:"not null" json:"proof_hash"`
	// Object key of the uploaded proof artifact, empty when the submitter
	// sent a bare hash
	ArtifactURL string           `gorm:"type:text" json:"artifact_url,omitempty"`
	Status      SubmissionStatus `gorm:"not null;default:'pending'" json:"status"`
	SubmittedAt time.Time        `gorm:"not null" json:"submitted_at"`

	Timestamps
}

// IsTerminal reports whether the submission can never change status again.
func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionStatusRejected || s == SubmissionStatusPaid
}

// ValidSubmissionTransition: Pending → {Approved, Rejected}; Approved → Paid.
func ValidSubmissionTransition(current, next SubmissionStatus) bool {
	switch current {
	case SubmissionStatusPending:
		return next == SubmissionStatusApproved || next == SubmissionStatusRejected
	case SubmissionStatusApproved:
		return next == SubmissionStatusPaid
	}
	return false
}
