package repotest

import (
	"context"
	"sort"
	"time"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
)

type Publications struct{ *Store }

func (r *Publications) CreatePublication(_ context.Context, pub *models.Publication, ownerID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[ownerID]; !ok {
		return errs.NotFound("User not found")
	}
	for _, p := range r.publications {
		if p.Name == pub.Name {
			return errs.Conflict("Publication with this name already exists")
		}
	}
	pub.ID = r.nextID()
	pub.CreatedAt = r.now()
	pub.UpdatedAt = pub.CreatedAt
	cp := *pub
	cp.Members = nil
	r.publications[pub.ID] = &cp
	r.members = append(r.members, models.PublicationMember{
		PublicationID: pub.ID, UserID: ownerID, IsOwner: true, JoinedAt: pub.CreatedAt,
	})
	return nil
}

func (r *Publications) GetPublicationByID(_ context.Context, id uint) (*models.Publication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.publications[id]
	if !ok {
		return nil, errs.NotFound("Publication not found")
	}
	cp := *p
	return &cp, nil
}

func (r *Publications) UpdatePublication(_ context.Context, pub *models.Publication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.publications[pub.ID]; !ok {
		return errs.NotFound("Publication not found")
	}
	for id, p := range r.publications {
		if id != pub.ID && p.Name == pub.Name {
			return errs.Conflict("Publication with this name already exists")
		}
	}
	cp := *pub
	cp.Members = nil
	cp.UpdatedAt = r.now()
	r.publications[pub.ID] = &cp
	return nil
}

func (r *Publications) DeletePublication(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.publications[id]; !ok {
		return errs.NotFound("Publication not found")
	}
	delete(r.publications, id)
	kept := r.members[:0]
	for _, m := range r.members {
		if m.PublicationID != id {
			kept = append(kept, m)
		}
	}
	r.members = kept
	return nil
}

func (r *Publications) ListPublications(_ context.Context, q models.PageQuery) ([]models.Publication, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Publication
	for _, p := range r.publications {
		if q.Search == "" || contains(p.Name, q.Search) {
			out = append(out, *p)
		}
	}
	newestFirst(out, func(p models.Publication) time.Time { return p.CreatedAt })
	return page(out, q), int64(len(out)), nil
}

func (r *Publications) GetMember(_ context.Context, publicationID, userID uint) (*models.PublicationMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.PublicationID == publicationID && m.UserID == userID {
			cp := m
			return &cp, nil
		}
	}
	return nil, errs.NotFound("Member not found")
}

func (r *Publications) OwnerIDs(_ context.Context, publicationID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for _, m := range r.members {
		if m.PublicationID == publicationID && m.IsOwner {
			ids = append(ids, m.UserID)
		}
	}
	return ids, nil
}

func (r *Publications) ListMembers(_ context.Context, publicationID uint) ([]models.PublicationMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.PublicationMember{}
	for _, m := range r.members {
		if m.PublicationID == publicationID && r.userActive(m.UserID) {
			cp := m
			cp.User = r.userCopy(m.UserID)
			out = append(out, cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsOwner && !out[j].IsOwner })
	return out, nil
}

func (r *Publications) RemoveMember(_ context.Context, publicationID, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.members {
		if m.PublicationID == publicationID && m.UserID == userID && !m.IsOwner {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return nil
		}
	}
	return errs.NotFound("Member not found")
}

func (r *Publications) CreateInvitation(_ context.Context, inv *models.PublicationInvitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.publications[inv.PublicationID]; !ok {
		return errs.NotFound("Publication not found")
	}
	inv.ID = r.nextID()
	inv.CreatedAt = r.now()
	inv.UpdatedAt = inv.CreatedAt
	cp := *inv
	cp.Publication, cp.Inviter, cp.Invitee = nil, nil, nil
	r.invitations[inv.ID] = &cp
	return nil
}

func (r *Publications) GetInvitation(_ context.Context, id uint) (*models.PublicationInvitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return nil, errs.NotFound("Invitation not found")
	}
	cp := *inv
	if p, ok := r.publications[inv.PublicationID]; ok {
		pc := *p
		cp.Publication = &pc
	}
	cp.Inviter = r.userCopy(inv.InviterID)
	cp.Invitee = r.userCopy(inv.InviteeID)
	return &cp, nil
}

func (r *Publications) HasPendingInvitation(_ context.Context, publicationID, inviteeID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.PublicationID == publicationID && inv.InviteeID == inviteeID && inv.Status == models.InvitationPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *Publications) ListInvitations(_ context.Context, publicationID uint) ([]models.PublicationInvitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.PublicationInvitation{}
	for _, inv := range r.invitations {
		if inv.PublicationID == publicationID {
			cp := *inv
			cp.Invitee = r.userCopy(inv.InviteeID)
			out = append(out, cp)
		}
	}
	newestFirst(out, func(i models.PublicationInvitation) time.Time { return i.CreatedAt })
	return out, nil
}

func (r *Publications) respond(inv *models.PublicationInvitation, status models.InvitationStatus) error {
	cur, ok := r.invitations[inv.ID]
	if !ok {
		return errs.NotFound("Invitation not found")
	}
	if cur.Status != models.InvitationPending {
		return errs.Conflict("Invitation has already been answered")
	}
	cur.Status = status
	inv.Status = status
	return nil
}

func (r *Publications) AcceptInvitation(_ context.Context, inv *models.PublicationInvitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.respond(inv, models.InvitationAccepted); err != nil {
		return err
	}
	for _, m := range r.members {
		if m.PublicationID == inv.PublicationID && m.UserID == inv.InviteeID {
			return nil
		}
	}
	r.members = append(r.members, models.PublicationMember{
		PublicationID: inv.PublicationID, UserID: inv.InviteeID, JoinedAt: r.now(),
	})
	return nil
}

func (r *Publications) DeclineInvitation(_ context.Context, inv *models.PublicationInvitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.respond(inv, models.InvitationDeclined)
}

func (r *Publications) DeleteInvitation(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invitations[id]; !ok {
		return errs.NotFound("Invitation not found")
	}
	delete(r.invitations, id)
	return nil
}
