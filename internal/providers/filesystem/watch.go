package filesystem

import (
	"github.com/google/uuid"

	"github.com/harborfs/backend/internal/shared/types"
)

// Subscription is a change-notification registration handle. The backend
// performs no file-change event emission: subscriptions are accepted so
// hosts can register watchers, but no event ever fires.
type Subscription struct {
	ID        string       `json:"id"`
	File      types.FileID `json:"file"`
	Recursive bool         `json:"recursive"`
}

// Watch registers a watcher on an identifier. The scheme is still
// validated so a misconfigured host fails loudly instead of watching
// nothing.
func (p *Provider) Watch(id types.FileID, recursive bool) (*Subscription, error) {
	if _, err := p.resolve(id); err != nil {
		return nil, err
	}
	return &Subscription{ID: uuid.NewString(), File: id, Recursive: recursive}, nil
}

// Close unregisters the subscription. No-op: nothing was ever delivered.
func (s *Subscription) Close() {}
