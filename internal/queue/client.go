package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/docrag/docrag/internal/config"
)

// Client enqueues ingestion tasks. Enqueue is the only thing a submission
// blocks on; processing happens in the worker tier.
type Client struct {
	client *asynq.Client
	ingest config.IngestConfig
}

func NewClient(redisCfg config.RedisConfig, ingestCfg config.IngestConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		}),
		ingest: ingestCfg,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueDocumentProcess pushes one processing task and returns the broker
// task id as the caller-visible handle. MaxRetry bounds redelivery; tasks
// that exhaust it land in the asynq archive (the dead-letter path).
func (c *Client) EnqueueDocumentProcess(payload DocumentProcessPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeDocumentProcess, data)
	info, err := c.client.Enqueue(task,
		asynq.MaxRetry(c.ingest.MaxAttempts),
		asynq.Timeout(c.ingest.TaskTimeout),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", TypeDocumentProcess, err)
	}
	return info.ID, nil
}
