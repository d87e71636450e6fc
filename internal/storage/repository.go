package storage

import (
	"context"
	"errors"

	"studyd/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

// Repository persists the whole subject/topic collections. Writes happen on
// every state change (fire-and-forget from the planner's point of view), so
// every operation is an upsert or a plain delete.
type Repository interface {
	UpsertSubject(ctx context.Context, in model.Subject) error
	DeleteSubject(ctx context.Context, id string) error
	ListSubjects(ctx context.Context) ([]model.Subject, error)

	UpsertTopic(ctx context.Context, in model.Topic) error
	DeleteTopic(ctx context.Context, id string) error
	ListTopics(ctx context.Context) ([]model.Topic, error)

	// ReplaceAll swaps both collections in one transaction; used by import.
	ReplaceAll(ctx context.Context, subjects []model.Subject, topics []model.Topic) error
}
