package models

import "time"

// ReportStatus represents where a report sits in the moderation workflow.
type ReportStatus string

const (
	// ReportStatusPending is awaiting an admin decision.
	ReportStatusPending ReportStatus = "PENDING"
	// ReportStatusApproved means the report was upheld and the content removed.
	ReportStatusApproved ReportStatus = "APPROVED"
	// ReportStatusRejected means the report was dismissed.
	ReportStatusRejected ReportStatus = "REJECTED"
)

// Report is one user's flag against one post.
//
// A reporter may flag a given post only once, whatever the report's status.
// Reports reference posts without a database foreign key so that resolution
// history outlives the content it removed; Post is nil for such orphans.
type Report struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	PostID       uint         `gorm:"not null;uniqueIndex:idx_report_post_reporter;index:idx_reports_post_status,priority:1" json:"post_id"`
	Post         *Post        `gorm:"foreignKey:PostID;constraint:-" json:"post,omitempty"`
	ReporterID   uint         `gorm:"not null;uniqueIndex:idx_report_post_reporter" json:"reporter_id"`
	Reporter     User         `gorm:"foreignKey:ReporterID" json:"reporter"`
	Reason       string       `gorm:"type:text;not null" json:"reason"`
	Status       ReportStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_reports_post_status,priority:2;index:idx_reports_status_created,priority:1" json:"status"`
	ResolvedByID *uint        `json:"resolved_by_id,omitempty"`
	ResolvedAt   *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt    time.Time    `gorm:"index:idx_reports_status_created,priority:2" json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
