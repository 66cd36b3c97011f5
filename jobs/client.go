package jobs

import (
	"context"

	"github.com/hibiken/asynq"
)

// Client submits jobs to the queue. It satisfies the TaskEnqueuer
// interfaces of the domain services.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// EnqueueSearchReindex enqueues a reindex task for one record.
func (c *Client) EnqueueSearchReindex(ctx context.Context, entity string, id int64) error {
	task, err := NewSearchReindexTask(entity, id)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
