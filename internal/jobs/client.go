package jobs

import (
	"context"
	"crypto/tls"
	"fmt"

	"campaign_audio_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// LeadDispatcher is the dispatch port the campaigns service submits jobs
// through. Submission is fire-and-forget; the worker reports back through
// the lead store, never through this interface.
type LeadDispatcher interface {
	EnqueueLeadAudio(ctx context.Context, payload LeadAudioPayload) error
}

// Client wraps the asynq producer used by the API process.
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient creates the job queue producer from the redis configuration.
func NewClient(cfg config.QueueConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

// Close releases the underlying redis connections.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueLeadAudio submits one lead audio job to the queue.
func (c *Client) EnqueueLeadAudio(ctx context.Context, payload LeadAudioPayload) error {
	task, err := NewLeadAudioTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		tlsConfig = opt.TLSConfig.Clone()
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
