package repotest

import "github.com/anonto42/inkwell/backend/internal/repositories"

var (
	_ repositories.UserRepository         = (*Users)(nil)
	_ repositories.PostRepository         = (*Posts)(nil)
	_ repositories.ContentRepository      = (*Contents)(nil)
	_ repositories.CommentRepository      = (*Comments)(nil)
	_ repositories.ReactionRepository     = (*Reactions)(nil)
	_ repositories.FollowRepository       = (*Follows)(nil)
	_ repositories.NotificationRepository = (*Notifications)(nil)
	_ repositories.PublicationRepository  = (*Publications)(nil)
	_ repositories.ReadingListRepository  = (*ReadingLists)(nil)
	_ repositories.TopicRepository        = (*Topics)(nil)
	_ repositories.ReportRepository       = (*Reports)(nil)
)
