package models

import "time"

// DefaultQueueTitle is shown for reported posts that were created without a title.
const DefaultQueueTitle = "Untitled Post"

// ReportQueueEntry is one row of the moderation queue: a reported post with
// its PENDING reports folded together. It is a read model and never persisted.
//
// JSON field names follow the camelCase contract admin clients already use.
type ReportQueueEntry struct {
	ID             uint        `json:"id"`
	Title          string      `json:"title"`
	Content        string      `json:"content"`
	Type           PostType    `json:"type"`
	ImageURL       string      `json:"imageUrl,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	Author         UserSummary `json:"author"`
	ReportCount    int         `json:"reportCount"`
	ReportReason   string      `json:"reportReason"`
	LastReportDate time.Time   `json:"lastReportDate"`
	ReportID       uint        `json:"reportId"`
}
