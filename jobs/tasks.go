package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSearchReindex refreshes the search document for a changed record.
	TaskSearchReindex = "search:reindex"
	// TaskAuditPurge trims expired audit log entries.
	TaskAuditPurge = "audit:purge"
)

// SearchReindexPayload identifies the record to reindex.
type SearchReindexPayload struct {
	Entity string `json:"entity"`
	ID     int64  `json:"id"`
}

// NewSearchReindexTask builds a reindex task for one record.
func NewSearchReindexTask(entity string, id int64) (*asynq.Task, error) {
	body, err := json.Marshal(SearchReindexPayload{Entity: entity, ID: id})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSearchReindex, body, asynq.Queue(QueueDefault)), nil
}

// AuditPurgePayload configures the retention window for audit logs.
type AuditPurgePayload struct {
	RetainDays int `json:"retain_days"`
}

// NewAuditPurgeTask builds an audit purge task.
func NewAuditPurgeTask(retainDays int) (*asynq.Task, error) {
	body, err := json.Marshal(AuditPurgePayload{RetainDays: retainDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPurge, body, asynq.Queue(QueueDefault)), nil
}
