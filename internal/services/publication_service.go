package services

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/authz"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/notifier"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PublicationService covers publications, their members and invitations.
type PublicationService struct {
	publications repositories.PublicationRepository
	users        repositories.UserRepository
	notifier     Enqueuer
	log          logrus.FieldLogger
}

func NewPublicationService(publications repositories.PublicationRepository, users repositories.UserRepository, notifier Enqueuer, log logrus.FieldLogger) *PublicationService {
	return &PublicationService{
		publications: publications,
		users:        users,
		notifier:     notifier,
		log:          log.WithField("service", "publications"),
	}
}

func (s *PublicationService) Create(ctx context.Context, p auth.Principal, req models.PublicationRequest) (*models.Publication, error) {
	pub := &models.Publication{}
	if err := copier.Copy(pub, &req); err != nil {
		return nil, errors.Wrap(err, "copy publication")
	}
	if err := s.publications.CreatePublication(ctx, pub, p.UserID); err != nil {
		return nil, err
	}
	return s.publications.GetPublicationByID(ctx, pub.ID)
}

func (s *PublicationService) Get(ctx context.Context, id uint) (*models.Publication, error) {
	return s.publications.GetPublicationByID(ctx, id)
}

func (s *PublicationService) List(ctx context.Context, q models.PageQuery) ([]models.Publication, int64, error) {
	return s.publications.ListPublications(ctx, q)
}

// authorize loads the publication and checks action against its owners.
func (s *PublicationService) authorize(ctx context.Context, p auth.Principal, id uint, action authz.Action) (*models.Publication, error) {
	pub, err := s.publications.GetPublicationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owners, err := s.publications.OwnerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(p, authz.ResourcePublication, action, authz.Owners(owners...)); err != nil {
		return nil, err
	}
	return pub, nil
}

// RequireOwner succeeds when the caller owns the publication (or is an admin).
func (s *PublicationService) RequireOwner(ctx context.Context, p auth.Principal, id uint) (*models.Publication, error) {
	return s.authorize(ctx, p, id, authz.ActionManage)
}

func (s *PublicationService) Update(ctx context.Context, p auth.Principal, id uint, req models.PublicationRequest) (*models.Publication, error) {
	pub, err := s.authorize(ctx, p, id, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := copier.Copy(pub, &req); err != nil {
		return nil, errors.Wrap(err, "copy publication")
	}
	if err := s.publications.UpdatePublication(ctx, pub); err != nil {
		return nil, err
	}
	return s.publications.GetPublicationByID(ctx, id)
}

func (s *PublicationService) Delete(ctx context.Context, p auth.Principal, id uint) error {
	if _, err := s.authorize(ctx, p, id, authz.ActionDelete); err != nil {
		return err
	}
	return s.publications.DeletePublication(ctx, id)
}

func (s *PublicationService) Members(ctx context.Context, id uint) ([]models.PublicationMember, error) {
	if _, err := s.publications.GetPublicationByID(ctx, id); err != nil {
		return nil, err
	}
	return s.publications.ListMembers(ctx, id)
}

// RemoveMember drops a non-owner member. Owners cannot be removed.
func (s *PublicationService) RemoveMember(ctx context.Context, p auth.Principal, id, userID uint) error {
	if _, err := s.authorize(ctx, p, id, authz.ActionManage); err != nil {
		return err
	}
	member, err := s.publications.GetMember(ctx, id, userID)
	if err != nil {
		return err
	}
	if member.IsOwner {
		return errs.Forbidden("The publication owner cannot be removed")
	}
	return s.publications.RemoveMember(ctx, id, userID)
}

// Invite asks inviteeID to join. Members and users with a pending invitation
// are rejected with Conflict.
func (s *PublicationService) Invite(ctx context.Context, p auth.Principal, req models.InvitationRequest) (*models.PublicationInvitation, error) {
	pub, err := s.authorize(ctx, p, req.PublicationID, authz.ActionInvite)
	if err != nil {
		return nil, err
	}
	invitee, err := s.users.GetUserByID(ctx, req.InviteeID)
	if err != nil {
		return nil, err
	}
	if !invitee.IsActive {
		return nil, errs.NotFound("User not found")
	}
	_, err = s.publications.GetMember(ctx, pub.ID, invitee.ID)
	member, err := found(err)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, errs.Conflict("User is already a member of this publication")
	}
	pending, err := s.publications.HasPendingInvitation(ctx, pub.ID, invitee.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, errs.Conflict("User already has a pending invitation")
	}

	inv := &models.PublicationInvitation{
		PublicationID: pub.ID,
		InviterID:     p.UserID,
		InviteeID:     invitee.ID,
		Status:        models.InvitationPending,
	}
	if err := s.publications.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}
	enqueue(ctx, s.notifier, s.log, notifier.Job{
		Type:        models.NotificationPublicationInvite,
		ActorID:     p.UserID,
		ActorName:   p.Username,
		RecipientID: invitee.ID,
		TargetType:  models.TargetPublication,
		TargetID:    pub.ID,
		Subject:     pub.Name,
		EventID:     inv.ID,
	})
	return s.publications.GetInvitation(ctx, inv.ID)
}

func (s *PublicationService) Invitations(ctx context.Context, p auth.Principal, id uint) ([]models.PublicationInvitation, error) {
	if _, err := s.authorize(ctx, p, id, authz.ActionInvite); err != nil {
		return nil, err
	}
	return s.publications.ListInvitations(ctx, id)
}

// invitation loads an invitation and checks action; owners is computed from
// the invitation so each action can name who counts as owner.
func (s *PublicationService) invitation(ctx context.Context, p auth.Principal, id uint, action authz.Action, owners func(*models.PublicationInvitation) []uint) (*models.PublicationInvitation, error) {
	inv, err := s.publications.GetInvitation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(p, authz.ResourceInvitation, action, authz.Owners(owners(inv)...)); err != nil {
		return nil, err
	}
	return inv, nil
}

func inviterAndInvitee(inv *models.PublicationInvitation) []uint {
	return []uint{inv.InviterID, inv.InviteeID}
}

func invitee(inv *models.PublicationInvitation) []uint {
	return []uint{inv.InviteeID}
}

func inviter(inv *models.PublicationInvitation) []uint {
	return []uint{inv.InviterID}
}

func (s *PublicationService) GetInvitation(ctx context.Context, p auth.Principal, id uint) (*models.PublicationInvitation, error) {
	return s.invitation(ctx, p, id, authz.ActionRead, inviterAndInvitee)
}

func (s *PublicationService) Accept(ctx context.Context, p auth.Principal, id uint) (*models.PublicationInvitation, error) {
	inv, err := s.invitation(ctx, p, id, authz.ActionRespond, invitee)
	if err != nil {
		return nil, err
	}
	if err := s.publications.AcceptInvitation(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *PublicationService) Decline(ctx context.Context, p auth.Principal, id uint) (*models.PublicationInvitation, error) {
	inv, err := s.invitation(ctx, p, id, authz.ActionRespond, invitee)
	if err != nil {
		return nil, err
	}
	if err := s.publications.DeclineInvitation(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *PublicationService) DeleteInvitation(ctx context.Context, p auth.Principal, id uint) error {
	if _, err := s.invitation(ctx, p, id, authz.ActionDelete, inviter); err != nil {
		return err
	}
	return s.publications.DeleteInvitation(ctx, id)
}
