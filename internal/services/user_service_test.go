package services

import (
	"context"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, f *fixture, username string) *models.User {
	t.Helper()
	user, err := f.users.Register(context.Background(), models.RegisterRequest{
		Username:             username,
		Email:                username + "@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := register(t, f, "alice")
	assert.NotEqual(t, "secret123", user.Password)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "alice", user.Profile.Name)
	assert.Equal(t, models.RoleUser, user.Role)

	session, err := f.users.Login(ctx, models.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	claims, err := f.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	_, err = f.users.Login(ctx, models.LoginRequest{Username: "alice", Password: "wrong"})
	assert.True(t, errs.Is(err, errs.KindUnauthenticated))
	_, err = f.users.Login(ctx, models.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.True(t, errs.Is(err, errs.KindUnauthenticated))
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	f := newFixture(t)
	register(t, f, "alice")
	_, err := f.users.Register(context.Background(), models.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "secret123", PasswordConfirmation: "secret123",
	})
	assert.True(t, errs.Is(err, errs.KindConflict))
}

func TestLoginBannedAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := register(t, f, "alice")
	require.NoError(t, f.store.Users().SetActive(ctx, user.ID, false))

	_, err := f.users.Login(ctx, models.LoginRequest{Username: "alice", Password: "secret123"})
	require.True(t, errs.Is(err, errs.KindForbidden))
	assert.Equal(t, "this account have been banned", errs.From(err).Message)
}

func TestUpdateProfileMergesProvidedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	bio := "Writes about Go"
	avatar := "https://cdn.example.com/a.png"
	user, err := f.users.UpdateProfile(ctx, alice, models.UpdateProfileRequest{Bio: &bio, AvatarURL: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Profile.Name)
	assert.Equal(t, bio, user.Profile.Bio)
	assert.Equal(t, avatar, *user.Profile.AvatarURL)

	name := "Alice A."
	empty := ""
	user, err = f.users.UpdateProfile(ctx, alice, models.UpdateProfileRequest{Name: &name, AvatarURL: &empty})
	require.NoError(t, err)
	assert.Equal(t, name, user.Profile.Name)
	assert.Equal(t, bio, user.Profile.Bio)
	assert.Nil(t, user.Profile.AvatarURL)
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	post := f.publish(t, alice, "Stats")
	like := &models.ReactionType{Name: "like", ImageURL: "https://cdn.example.com/l.png"}
	require.NoError(t, f.store.Reactions().CreateType(ctx, like))

	_, err := f.social.Follow(ctx, bob, alice.UserID)
	require.NoError(t, err)
	_, err = f.posts.RecordView(ctx, bob, post.ID)
	require.NoError(t, err)
	_, err = f.posts.React(ctx, bob, post.ID, models.ReactRequest{ReactionTypeID: like.ID})
	require.NoError(t, err)

	stats, err := f.users.Statistics(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, stats.Followers, 1)
	assert.Len(t, stats.Views[post.ID], 1)
	require.Len(t, stats.Reactions[post.ID], 1)
	assert.Equal(t, like.ID, stats.Reactions[post.ID][0].ReactionTypeID)
}

func TestUserAccessPolicies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	admin := f.admin(t, "root")

	_, err := f.users.Get(ctx, bob, alice.UserID)
	assert.True(t, errs.Is(err, errs.KindForbidden))
	_, err = f.users.Get(ctx, admin, alice.UserID)
	assert.NoError(t, err)

	_, err = f.users.SetActive(ctx, bob, alice.UserID, false)
	assert.True(t, errs.Is(err, errs.KindForbidden))
	_, err = f.users.SetActive(ctx, admin, admin.UserID, false)
	assert.True(t, errs.Is(err, errs.KindValidation))
	banned, err := f.users.SetActive(ctx, admin, alice.UserID, false)
	require.NoError(t, err)
	assert.False(t, banned.IsActive)

	_, err = f.users.ActiveUser(ctx, "alice")
	assert.True(t, errs.Is(err, errs.KindNotFound))

	assert.True(t, errs.Is(f.users.Delete(ctx, bob, alice.UserID), errs.KindForbidden))
	require.NoError(t, f.users.Delete(ctx, bob, bob.UserID))
	_, err = f.store.Users().GetUserByID(ctx, bob.UserID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

type fakeFirebase struct {
	tokens map[string]*firebaseauth.Token
}

func (f fakeFirebase) VerifyIDToken(_ context.Context, idToken string) (*firebaseauth.Token, error) {
	if tok, ok := f.tokens[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("bad token")
}

func TestFirebaseLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	fb := fakeFirebase{tokens: map[string]*firebaseauth.Token{
		"new":    {UID: "uid-new", Claims: map[string]interface{}{"email": "New.Person@example.com", "name": "New Person"}},
		"linked": {UID: "uid-alice", Claims: map[string]interface{}{"email": "alice@example.com"}},
	}}
	f.users = NewUserService(f.store.Users(), f.store.Follows(), f.store.Reactions(), f.tokens, fb, log)
	existing := register(t, f, "alice")

	_, err := f.users.FirebaseLogin(ctx, models.FirebaseLoginRequest{IDToken: "forged"})
	assert.True(t, errs.Is(err, errs.KindUnauthenticated))

	session, err := f.users.FirebaseLogin(ctx, models.FirebaseLoginRequest{IDToken: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new.person", session.User.Username)
	assert.Equal(t, "new.person@example.com", session.User.Email)
	assert.Equal(t, "New Person", session.User.Profile.Name)

	again, err := f.users.FirebaseLogin(ctx, models.FirebaseLoginRequest{IDToken: "new"})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, again.User.ID)

	linked, err := f.users.FirebaseLogin(ctx, models.FirebaseLoginRequest{IDToken: "linked"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.User.ID)
	byUID, err := f.store.Users().GetUserByFirebaseUID(ctx, "uid-alice")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, byUID.ID)
}
