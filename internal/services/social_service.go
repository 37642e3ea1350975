package services

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/notifier"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// SocialService manages the directed follow graph.
type SocialService struct {
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	notifier Enqueuer
	log      logrus.FieldLogger
}

func NewSocialService(users repositories.UserRepository, follows repositories.FollowRepository, notifier Enqueuer, log logrus.FieldLogger) *SocialService {
	return &SocialService{users: users, follows: follows, notifier: notifier, log: log.WithField("service", "social")}
}

// Follow makes the caller follow targetID. The pre-check gives a friendly
// message; the unique index on (follower, following) decides races.
func (s *SocialService) Follow(ctx context.Context, p auth.Principal, targetID uint) (*models.Follow, error) {
	if targetID == p.UserID {
		return nil, errs.Validation("You cannot follow yourself")
	}
	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive {
		return nil, errs.NotFound("User not found")
	}
	following, err := s.follows.IsFollowing(ctx, p.UserID, targetID)
	if err != nil {
		return nil, err
	}
	if following {
		return nil, errs.Conflict("Already following this user")
	}

	follow := &models.Follow{FollowerID: p.UserID, FollowingID: targetID}
	if err := s.follows.CreateFollow(ctx, follow); err != nil {
		return nil, err
	}
	enqueue(ctx, s.notifier, s.log, notifier.Job{
		Type:        models.NotificationNewFollow,
		ActorID:     p.UserID,
		ActorName:   p.Username,
		RecipientID: targetID,
		TargetType:  models.TargetUser,
		TargetID:    p.UserID,
		EventID:     follow.ID,
	})
	return follow, nil
}

func (s *SocialService) Unfollow(ctx context.Context, p auth.Principal, targetID uint) error {
	if targetID == p.UserID {
		return errs.Validation("You cannot unfollow yourself")
	}
	return s.follows.DeleteFollow(ctx, p.UserID, targetID)
}

func (s *SocialService) Followers(ctx context.Context, userID uint, q models.PageQuery) ([]models.User, int64, error) {
	return s.follows.ListFollowers(ctx, userID, q)
}

func (s *SocialService) Followings(ctx context.Context, userID uint, q models.PageQuery) ([]models.User, int64, error) {
	return s.follows.ListFollowing(ctx, userID, q)
}

// Counts returns how many active users follow userID and how many it follows.
func (s *SocialService) Counts(ctx context.Context, userID uint) (followers, followings int64, err error) {
	one := models.PageQuery{Page: 1, Limit: 1}
	if _, followers, err = s.follows.ListFollowers(ctx, userID, one); err != nil {
		return 0, 0, err
	}
	if _, followings, err = s.follows.ListFollowing(ctx, userID, one); err != nil {
		return 0, 0, err
	}
	return followers, followings, nil
}
