package indx

import (
	"context"
	"fmt"
)

// CreateQueue creates a new named queue.
func (s *Service) CreateQueue(ctx context.Context, name string) (*QueueRecord, error) {
	if name == "" {
		return nil, fmt.Errorf("queue name is required: %w", ErrInvalidParameter)
	}
	queue := &QueueRecord{
		ID:        s.idgen.New(),
		Name:      name,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.db.CreateQueue(ctx, queue); err != nil {
		return nil, &OperationError{Op: "queue", Err: err}
	}
	return queue, nil
}

// Enqueue appends a content item to the named queue and attaches the
// matching queue tag, so queue membership is visible to tag queries.
func (s *Service) Enqueue(ctx context.Context, queueName string, id ContentID) (*QueueItemRecord, error) {
	queue, err := s.db.GetQueue(ctx, queueName)
	if err != nil {
		return nil, err
	}
	if queue == nil {
		return nil, fmt.Errorf("queue %q: %w", queueName, ErrNotFound)
	}
	rec, err := s.db.GetIndex(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("content %s: %w", id, ErrNotFound)
	}

	item := &QueueItemRecord{
		ID:        s.idgen.New(),
		QueueID:   queue.ID,
		IndexID:   id,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.db.AppendQueueItem(ctx, item); err != nil {
		return nil, &OperationError{Op: "enqueue", Err: err}
	}

	queueTag := FilteringTag{Type: TagTypeQueue, Value: queueName}
	if err := s.db.AssociateTags(ctx, []FilteringTag{queueTag}, []ContentID{id}); err != nil {
		s.logger.Warn("attaching queue tag failed", "queue", queueName, "content", id, "error", err)
	}
	return item, nil
}

// CompleteQueueItem flags one queue item as done.
func (s *Service) CompleteQueueItem(ctx context.Context, itemID string) error {
	if err := s.db.MarkQueueItemCompleted(ctx, itemID); err != nil {
		return &OperationError{Op: "dequeue", Err: err}
	}
	return nil
}

// GetQueue returns the queue with the given name, or (nil, nil).
func (s *Service) GetQueue(ctx context.Context, name string) (*QueueRecord, error) {
	return s.db.GetQueue(ctx, name)
}

// ListQueues returns all queues ordered by name.
func (s *Service) ListQueues(ctx context.Context) ([]*QueueRecord, error) {
	return s.db.ListQueues(ctx)
}

// ListQueueItems returns a queue's items in insertion order.
func (s *Service) ListQueueItems(ctx context.Context, queueName string) ([]*QueueItemRecord, error) {
	queue, err := s.db.GetQueue(ctx, queueName)
	if err != nil {
		return nil, err
	}
	if queue == nil {
		return nil, fmt.Errorf("queue %q: %w", queueName, ErrNotFound)
	}
	return s.db.ListQueueItems(ctx, queue.ID)
}
