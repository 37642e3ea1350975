package authz

import (
	"testing"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	alice := auth.Principal{UserID: 1, Role: models.RoleUser}
	bob := auth.Principal{UserID: 2, Role: models.RoleUser}
	admin := auth.Principal{UserID: 9, Role: models.RoleAdmin}

	cases := []struct {
		name    string
		who     auth.Principal
		kind    ResourceKind
		action  Action
		subject Subject
		allow   bool
	}{
		{name: "author updates post", who: alice, kind: ResourcePost, action: ActionUpdate, subject: Owners(1), allow: true},
		{name: "stranger updates post", who: bob, kind: ResourcePost, action: ActionUpdate, subject: Owners(1), allow: false},
		{name: "admin deletes post", who: admin, kind: ResourcePost, action: ActionDelete, subject: Owners(1), allow: true},
		{name: "post owner deletes comment", who: alice, kind: ResourceComment, action: ActionDelete, subject: Owners(2, 1), allow: true},
		{name: "stranger deletes comment", who: bob, kind: ResourceComment, action: ActionDelete, subject: Owners(3, 1), allow: false},
		{name: "self reads user", who: bob, kind: ResourceUser, action: ActionRead, subject: Owners(2), allow: true},
		{name: "other reads user", who: alice, kind: ResourceUser, action: ActionRead, subject: Owners(2), allow: false},
		{name: "admin manages catalog", who: admin, kind: ResourceCatalog, action: ActionManage, allow: true},
		{name: "user manages catalog", who: alice, kind: ResourceCatalog, action: ActionManage, allow: false},
		{name: "member submits", who: bob, kind: ResourcePublication, action: ActionSubmit, subject: Subject{OwnerIDs: []uint{1}, Member: true}, allow: true},
		{name: "non-member submits", who: bob, kind: ResourcePublication, action: ActionSubmit, subject: Owners(1), allow: false},
		{name: "admin is not a member", who: admin, kind: ResourcePublication, action: ActionSubmit, subject: Owners(1), allow: false},
		{name: "owner approves", who: alice, kind: ResourcePublication, action: ActionApprove, subject: Owners(1), allow: true},
		{name: "invitee responds", who: bob, kind: ResourceInvitation, action: ActionRespond, subject: Owners(2), allow: true},
		{name: "admin cannot respond for invitee", who: admin, kind: ResourceInvitation, action: ActionRespond, subject: Owners(2), allow: false},
		{name: "unknown pair denied", who: admin, kind: ResourceUser, action: ActionApprove, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(tc.who, tc.kind, tc.action, tc.subject)
			if tc.allow {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errs.Is(err, errs.KindForbidden), "got %v", err)
		})
	}
}

func TestViewByAuthor(t *testing.T) {
	author := auth.Principal{UserID: 1}

	err := Check(author, ResourcePost, ActionView, Owners(1))
	assert.True(t, errors.Is(err, ErrAuthorView))

	assert.NoError(t, Check(auth.Principal{UserID: 2}, ResourcePost, ActionView, Owners(1)))
}
