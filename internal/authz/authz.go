// Package authz decides who may act on what. Every check goes through Check,
// which looks up the named policy for a {resource kind, action} pair.
package authz

import (
	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/pkg/errors"
)

type ResourceKind string

const (
	ResourcePost        ResourceKind = "post"
	ResourceComment     ResourceKind = "comment"
	ResourceUser        ResourceKind = "user"
	ResourceCatalog     ResourceKind = "catalog"
	ResourceModeration  ResourceKind = "moderation"
	ResourcePublication ResourceKind = "publication"
	ResourceInvitation  ResourceKind = "invitation"
	ResourceReadingList ResourceKind = "reading_list"
)

type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionPublish Action = "publish"
	ActionView    Action = "view"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionInvite  Action = "invite"
	ActionManage  Action = "manage"
	ActionRespond Action = "respond"
)

type Policy string

const (
	PolicyOwnerOrAdmin Policy = "owner-or-admin"
	PolicySelfOrAdmin  Policy = "self-or-admin"
	PolicySelf         Policy = "self"
	PolicyAdminOnly    Policy = "admin-only"
	PolicyMemberOnly   Policy = "member-only"
	PolicyNotAuthor    Policy = "not-author"
)

// ErrAuthorView is returned for a view recorded by the post's own author.
// Callers turn it into a successful no-op.
var ErrAuthorView = errors.New("the current user is also the author")

// Subject describes the resource being acted on. OwnerIDs holds everyone
// counted as owner (e.g. comment author and post author); Member is set by
// callers that looked up membership.
type Subject struct {
	OwnerIDs []uint
	Member   bool
}

func Owners(ids ...uint) Subject {
	return Subject{OwnerIDs: ids}
}

func (s Subject) ownedBy(id uint) bool {
	for _, o := range s.OwnerIDs {
		if o == id {
			return true
		}
	}
	return false
}

type rule struct {
	kind   ResourceKind
	action Action
}

var policies = map[rule]Policy{
	{ResourcePost, ActionUpdate}:  PolicyOwnerOrAdmin,
	{ResourcePost, ActionDelete}:  PolicyOwnerOrAdmin,
	{ResourcePost, ActionPublish}: PolicyOwnerOrAdmin,
	{ResourcePost, ActionRead}:    PolicyOwnerOrAdmin, // unpublished posts only
	{ResourcePost, ActionView}:    PolicyNotAuthor,

	{ResourceComment, ActionUpdate}: PolicyOwnerOrAdmin,
	{ResourceComment, ActionDelete}: PolicyOwnerOrAdmin,

	{ResourceUser, ActionRead}:   PolicySelfOrAdmin,
	{ResourceUser, ActionUpdate}: PolicySelfOrAdmin,
	{ResourceUser, ActionDelete}: PolicySelfOrAdmin,

	{ResourceCatalog, ActionManage}:    PolicyAdminOnly,
	{ResourceModeration, ActionManage}: PolicyAdminOnly,

	{ResourcePublication, ActionUpdate}:  PolicyOwnerOrAdmin,
	{ResourcePublication, ActionDelete}:  PolicyOwnerOrAdmin,
	{ResourcePublication, ActionApprove}: PolicyOwnerOrAdmin,
	{ResourcePublication, ActionInvite}:  PolicyOwnerOrAdmin,
	{ResourcePublication, ActionManage}:  PolicyOwnerOrAdmin,
	{ResourcePublication, ActionSubmit}:  PolicyMemberOnly,

	{ResourceInvitation, ActionRead}:    PolicySelfOrAdmin,
	{ResourceInvitation, ActionDelete}:  PolicyOwnerOrAdmin,
	{ResourceInvitation, ActionRespond}: PolicySelf,

	{ResourceReadingList, ActionRead}:   PolicyOwnerOrAdmin,
	{ResourceReadingList, ActionUpdate}: PolicyOwnerOrAdmin,
	{ResourceReadingList, ActionDelete}: PolicyOwnerOrAdmin,
}

// PolicyFor returns the policy registered for the pair.
func PolicyFor(kind ResourceKind, action Action) (Policy, bool) {
	p, ok := policies[rule{kind, action}]
	return p, ok
}

// Check returns nil when p may perform action on the subject, a Forbidden
// error otherwise, or ErrAuthorView for the not-author policy. Unknown pairs
// are denied.
func Check(p auth.Principal, kind ResourceKind, action Action, s Subject) error {
	policy, ok := PolicyFor(kind, action)
	if !ok {
		return errs.Forbidden("Forbidden")
	}
	if Allowed(policy, p, s) {
		return nil
	}
	if policy == PolicyNotAuthor {
		return ErrAuthorView
	}
	return errs.Forbidden("Forbidden")
}

// Allowed evaluates a single named policy.
func Allowed(policy Policy, p auth.Principal, s Subject) bool {
	switch policy {
	case PolicyOwnerOrAdmin, PolicySelfOrAdmin:
		return p.IsAdmin() || s.ownedBy(p.UserID)
	case PolicySelf:
		return s.ownedBy(p.UserID)
	case PolicyAdminOnly:
		return p.IsAdmin()
	case PolicyMemberOnly:
		return s.Member || s.ownedBy(p.UserID)
	case PolicyNotAuthor:
		return !s.ownedBy(p.UserID)
	default:
		return false
	}
}
