package queue

import (
	config "github.com/shintaro-0909/omnipost/configs"
	"github.com/shintaro-0909/omnipost/internal/credentials"
	"github.com/shintaro-0909/omnipost/internal/publisher"
	"github.com/shintaro-0909/omnipost/internal/repository"
	"github.com/shintaro-0909/omnipost/internal/transfer"
)

const TaskTypePublishPost = "publish:post"

// PublishPostPayload carries everything a delayed publish needs. Only
// account records are persisted; the post content itself rides in the
// task payload.
type PublishPostPayload struct {
	UserID     int64                 `json:"user_id"`
	AccountIDs []int64               `json:"account_ids"`
	Content    transfer.PostContent  `json:"content"`
	Options    *transfer.PostOptions `json:"options,omitempty"`
}

type Queue struct {
	sr    repository.SocialAccountRepository
	store credentials.Store
	pub   *publisher.Publisher
	cfg   config.Adapter
}

func NewQueue(
	sr repository.SocialAccountRepository,
	store credentials.Store,
	pub *publisher.Publisher,
	cfg config.Adapter) *Queue {
	return &Queue{
		sr:    sr,
		store: store,
		pub:   pub,
		cfg:   cfg,
	}
}
