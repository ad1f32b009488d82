package async

import (
	"context"
	"time"
)

// Job is one file handed to a worker. Index is the file's discovery position
// and is how callers put results back in order.
type Job struct {
	Index       int
	Path        string
	Source      string
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context) error
}
