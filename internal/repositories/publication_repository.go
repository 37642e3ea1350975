package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PublicationRepository covers publications, their members and invitations.
type PublicationRepository interface {
	CreatePublication(ctx context.Context, pub *models.Publication, ownerID uint) error
	GetPublicationByID(ctx context.Context, id uint) (*models.Publication, error)
	UpdatePublication(ctx context.Context, pub *models.Publication) error
	DeletePublication(ctx context.Context, id uint) error
	ListPublications(ctx context.Context, q models.PageQuery) ([]models.Publication, int64, error)

	GetMember(ctx context.Context, publicationID, userID uint) (*models.PublicationMember, error)
	OwnerIDs(ctx context.Context, publicationID uint) ([]uint, error)
	ListMembers(ctx context.Context, publicationID uint) ([]models.PublicationMember, error)
	RemoveMember(ctx context.Context, publicationID, userID uint) error

	CreateInvitation(ctx context.Context, inv *models.PublicationInvitation) error
	GetInvitation(ctx context.Context, id uint) (*models.PublicationInvitation, error)
	HasPendingInvitation(ctx context.Context, publicationID, inviteeID uint) (bool, error)
	ListInvitations(ctx context.Context, publicationID uint) ([]models.PublicationInvitation, error)
	AcceptInvitation(ctx context.Context, inv *models.PublicationInvitation) error
	DeclineInvitation(ctx context.Context, inv *models.PublicationInvitation) error
	DeleteInvitation(ctx context.Context, id uint) error
}

// PostgresPublicationRepository implements PublicationRepository for PostgreSQL
type PostgresPublicationRepository struct {
	db *gorm.DB
}

// NewPostgresPublicationRepository creates a new PostgresPublicationRepository
func NewPostgresPublicationRepository(db *gorm.DB) *PostgresPublicationRepository {
	return &PostgresPublicationRepository{db: db}
}

// CreatePublication inserts the publication with its creator as owner.
func (r *PostgresPublicationRepository) CreatePublication(ctx context.Context, pub *models.Publication, ownerID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members").Create(pub).Error; err != nil {
			return err
		}
		owner := models.PublicationMember{PublicationID: pub.ID, UserID: ownerID, IsOwner: true}
		return tx.Omit(clause.Associations).Create(&owner).Error
	})
	return translate(err, "User not found", "Publication with this name already exists")
}

func (r *PostgresPublicationRepository) GetPublicationByID(ctx context.Context, id uint) (*models.Publication, error) {
	var pub models.Publication
	if err := r.db.WithContext(ctx).First(&pub, id).Error; err != nil {
		return nil, translate(err, "Publication not found", "")
	}
	return &pub, nil
}

func (r *PostgresPublicationRepository) UpdatePublication(ctx context.Context, pub *models.Publication) error {
	err := r.db.WithContext(ctx).Omit("Members").Save(pub).Error
	return translate(err, "Publication not found", "Publication with this name already exists")
}

func (r *PostgresPublicationRepository) DeletePublication(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Publication{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete publication")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Publication not found")
	}
	return nil
}

const publicationSearchFilter = `
FROM publications p
WHERE p.name ILIKE @like OR similarity(p.name, @q) > @threshold`

const publicationSearchRank = `
ORDER BY (CASE WHEN p.name ILIKE @prefix THEN 2 WHEN p.name ILIKE @like THEN 1 ELSE 0 END)
         + similarity(p.name, @q) DESC,
         p.created_at DESC, p.id DESC
LIMIT @limit OFFSET @offset`

func (r *PostgresPublicationRepository) ListPublications(ctx context.Context, q models.PageQuery) ([]models.Publication, int64, error) {
	pubs := []models.Publication{}
	if q.Search == "" {
		var total int64
		if err := r.db.WithContext(ctx).Model(&models.Publication{}).Count(&total).Error; err != nil {
			return nil, 0, errors.Wrap(err, "count publications")
		}
		err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Offset(q.Offset()).Limit(q.Limit).Find(&pubs).Error
		return pubs, total, errors.Wrap(err, "list publications")
	}

	ids, total, err := rankedIDs(ctx, r.db,
		"SELECT COUNT(*)"+publicationSearchFilter,
		"SELECT p.id"+publicationSearchFilter+publicationSearchRank, searchArgs(q))
	if err != nil || len(ids) == 0 {
		return pubs, total, err
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&pubs).Error; err != nil {
		return nil, 0, errors.Wrap(err, "load publications")
	}
	return orderByIDs(pubs, ids, func(p models.Publication) uint { return p.ID }), total, nil
}

func (r *PostgresPublicationRepository) GetMember(ctx context.Context, publicationID, userID uint) (*models.PublicationMember, error) {
	var m models.PublicationMember
	err := r.db.WithContext(ctx).Where("publication_id = ? AND user_id = ?", publicationID, userID).First(&m).Error
	if err != nil {
		return nil, translate(err, "Member not found", "")
	}
	return &m, nil
}

func (r *PostgresPublicationRepository) OwnerIDs(ctx context.Context, publicationID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.PublicationMember{}).
		Where("publication_id = ? AND is_owner", publicationID).
		Pluck("user_id", &ids).Error
	return ids, errors.Wrap(err, "publication owners")
}

// ListMembers returns active members, owners first.
func (r *PostgresPublicationRepository) ListMembers(ctx context.Context, publicationID uint) ([]models.PublicationMember, error) {
	members := []models.PublicationMember{}
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = publication_members.user_id AND users.is_active").
		Preload("User.Profile").
		Where("publication_members.publication_id = ?", publicationID).
		Order("publication_members.is_owner DESC, publication_members.joined_at ASC").
		Find(&members).Error
	return members, errors.Wrap(err, "list members")
}

func (r *PostgresPublicationRepository) RemoveMember(ctx context.Context, publicationID, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("publication_id = ? AND user_id = ? AND NOT is_owner", publicationID, userID).
		Delete(&models.PublicationMember{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "remove member")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Member not found")
	}
	return nil
}

func (r *PostgresPublicationRepository) CreateInvitation(ctx context.Context, inv *models.PublicationInvitation) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(inv).Error
	return translate(err, "Publication not found", "Invitation already exists")
}

func (r *PostgresPublicationRepository) GetInvitation(ctx context.Context, id uint) (*models.PublicationInvitation, error) {
	var inv models.PublicationInvitation
	err := r.db.WithContext(ctx).
		Preload("Publication").
		Preload("Inviter.Profile").
		Preload("Invitee.Profile").
		First(&inv, id).Error
	if err != nil {
		return nil, translate(err, "Invitation not found", "")
	}
	return &inv, nil
}

func (r *PostgresPublicationRepository) HasPendingInvitation(ctx context.Context, publicationID, inviteeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PublicationInvitation{}).
		Where("publication_id = ? AND invitee_id = ? AND status = ?", publicationID, inviteeID, models.InvitationPending).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "check pending invitation")
}

func (r *PostgresPublicationRepository) ListInvitations(ctx context.Context, publicationID uint) ([]models.PublicationInvitation, error) {
	invs := []models.PublicationInvitation{}
	err := r.db.WithContext(ctx).
		Preload("Invitee.Profile").
		Where("publication_id = ?", publicationID).
		Order("created_at DESC").
		Find(&invs).Error
	return invs, errors.Wrap(err, "list invitations")
}

// respond moves a pending invitation to status; it is a Conflict if the
// invitation was already answered.
func respond(tx *gorm.DB, inv *models.PublicationInvitation, status models.InvitationStatus) error {
	res := tx.Model(&models.PublicationInvitation{}).
		Where("id = ? AND status = ?", inv.ID, models.InvitationPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Conflict("Invitation has already been answered")
	}
	inv.Status = status
	return nil
}

// AcceptInvitation marks the invitation accepted and adds the membership atomically.
func (r *PostgresPublicationRepository) AcceptInvitation(ctx context.Context, inv *models.PublicationInvitation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := respond(tx, inv, models.InvitationAccepted); err != nil {
			return err
		}
		member := models.PublicationMember{PublicationID: inv.PublicationID, UserID: inv.InviteeID}
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	})
	if errs.Is(err, errs.KindConflict) {
		return err
	}
	return translate(err, "Invitation not found", "Already a member")
}

func (r *PostgresPublicationRepository) DeclineInvitation(ctx context.Context, inv *models.PublicationInvitation) error {
	err := respond(r.db.WithContext(ctx), inv, models.InvitationDeclined)
	if errs.Is(err, errs.KindConflict) {
		return err
	}
	return translate(err, "Invitation not found", "")
}

func (r *PostgresPublicationRepository) DeleteInvitation(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.PublicationInvitation{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete invitation")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("Invitation not found")
	}
	return nil
}
