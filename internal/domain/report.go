package domain

import "time"

const MaxReportReasonLength = 500

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportPending, ReportReviewed, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// IsFinal reports whether s closes a report. Only moderation may set it.
func (s ReportStatus) IsFinal() bool {
	return s == ReportReviewed || s == ReportResolved || s == ReportDismissed
}

type Report struct {
	ID         int64        `json:"id" db:"id"`
	ReporterID int64        `json:"reporter_id" db:"reporter_id"`
	ReportedID int64        `json:"reported_id" db:"reported_id"`
	Reason     string       `json:"reason" db:"reason"`
	Status     ReportStatus `json:"status" db:"status"`
	AdminNotes *string      `json:"admin_notes" db:"admin_notes"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	ResolvedAt *time.Time   `json:"resolved_at" db:"resolved_at"`
}

// ReportView is a report joined with both parties' names for the moderation queue.
type ReportView struct {
	Report
	ReporterIdentity int64  `json:"reporter_identity" db:"reporter_identity"`
	ReporterName     string `json:"reporter_name" db:"reporter_name"`
	ReportedIdentity int64  `json:"reported_identity" db:"reported_identity"`
	ReportedName     string `json:"reported_name" db:"reported_name"`
}
