package storage

import (
	"context"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"taskdeck/domain"
)

// TaskSource is the repository surface consumed by callers and decorated by
// Cache.
type TaskSource interface {
	Load(ctx context.Context, userID string) []domain.Task
	Save(ctx context.Context, userID string, tasks []domain.Task) error
}

// TaskRepo persists one task collection per user on top of a KV store. It is
// deliberately dumb: it durably stores whatever collection the caller hands
// it and knows nothing about validation or filtering. Every save replaces
// the full collection, the single write discipline this one-active-caller
// design relies on.
type TaskRepo struct {
	kv  KV
	log *log.Logger
}

// NewTaskRepo creates a repository over the given KV store.
func NewTaskRepo(kv KV, logger *log.Logger) *TaskRepo {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &TaskRepo{kv: kv, log: logger}
}

func tasksKey(userID string) string {
	return "tasks:" + userID
}

// Load returns the stored collection for the user. A missing key yields an
// empty collection, and so does an unparsable payload: decode failures are
// logged and swallowed so a corrupt store never takes the caller down.
func (r *TaskRepo) Load(ctx context.Context, userID string) []domain.Task {
	raw, ok, err := r.kv.Get(ctx, tasksKey(userID))
	if err != nil {
		r.log.WithField("user", userID).Warnf("load tasks: %v", err)
		return []domain.Task{}
	}
	if !ok {
		return []domain.Task{}
	}
	var tasks []domain.Task
	if err := sonic.UnmarshalString(raw, &tasks); err != nil {
		r.log.WithField("user", userID).Warnf("decode tasks: %v", err)
		return []domain.Task{}
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks
}

// Save serializes and writes the full collection for the user, replacing
// whatever was stored before. The empty collection is saved like any other.
func (r *TaskRepo) Save(ctx context.Context, userID string, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	data, err := sonic.MarshalString(tasks)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, tasksKey(userID), data)
}

// RemoveTask returns a new slice without the entry matching taskID. Removing
// an absent id is a no-op, not an error.
func RemoveTask(tasks []domain.Task, taskID string) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == taskID {
			continue
		}
		out = append(out, t)
	}
	return out
}
