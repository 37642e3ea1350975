package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/authz"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const bannedMessage = "this account have been banned"

// Session is the result of a successful login.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Statistics is the author dashboard: follower timeline plus per-post view
// and reaction timestamps.
type Statistics struct {
	Followers []time.Time            `json:"followers"`
	Views     map[uint][]time.Time   `json:"views"`
	Reactions map[uint][]ReactionHit `json:"reactions"`
}

type ReactionHit struct {
	ReactionTypeID uint      `json:"reactionTypeId"`
	At             time.Time `json:"at"`
}

// ProfileView is the public profile of a user.
type ProfileView struct {
	User       *models.User `json:"user"`
	Followers  int64        `json:"followers"`
	Followings int64        `json:"followings"`
}

type UserService struct {
	users     repositories.UserRepository
	follows   repositories.FollowRepository
	reactions repositories.ReactionRepository
	tokens    *auth.TokenIssuer
	firebase  auth.IDTokenVerifier
	log       logrus.FieldLogger
}

func NewUserService(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	reactions repositories.ReactionRepository,
	tokens *auth.TokenIssuer,
	firebase auth.IDTokenVerifier,
	log logrus.FieldLogger,
) *UserService {
	return &UserService{
		users:     users,
		follows:   follows,
		reactions: reactions,
		tokens:    tokens,
		firebase:  firebase,
		log:       log.WithField("service", "users"),
	}
}

// Register creates the account and its profile; the profile name starts as the username.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
		Role:     models.RoleUser,
		IsActive: true,
		Profile:  &models.Profile{Name: req.Username},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if errs.Is(err, errs.KindNotFound) {
		return nil, errs.Unauthenticated("Invalid username or password")
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errs.Unauthenticated("Invalid username or password")
	}
	return s.session(user)
}

func (s *UserService) session(user *models.User) (*Session, error) {
	if !user.IsActive {
		return nil, errs.Forbidden(bannedMessage)
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

// FirebaseLogin exchanges a Firebase ID token for a local token. Unknown
// Firebase accounts are linked by email or registered on the fly.
func (s *UserService) FirebaseLogin(ctx context.Context, req models.FirebaseLoginRequest) (*Session, error) {
	if s.firebase == nil {
		return nil, errs.Upstream("Firebase login is not configured", nil)
	}
	token, err := s.firebase.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return nil, errs.Unauthenticated("Invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)

	user, err := s.users.GetUserByFirebaseUID(ctx, token.UID)
	ok, err := found(err)
	if err != nil {
		return nil, err
	}
	if ok {
		return s.session(user)
	}
	if email == "" {
		return nil, errs.Validation("Firebase account has no email address")
	}

	user, err = s.users.GetUserByEmail(ctx, email)
	if ok, err = found(err); err != nil {
		return nil, err
	}
	uid := token.UID
	if ok {
		user.FirebaseUID = &uid
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		return s.session(user)
	}

	username, err := s.freeUsername(ctx, email)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = username
	}
	user = &models.User{
		Username:    username,
		Email:       strings.ToLower(email),
		Role:        models.RoleUser,
		IsActive:    true,
		FirebaseUID: &uid,
		Profile:     &models.Profile{Name: truncate(name, 50)},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

var usernameChars = regexp.MustCompile(`[^a-z0-9_.]+`)

func (s *UserService) freeUsername(ctx context.Context, email string) (string, error) {
	base := usernameChars.ReplaceAllString(strings.ToLower(strings.SplitN(email, "@", 2)[0]), "")
	if len(base) < 3 {
		base = "user" + base
	}
	base = truncate(base, 200)
	taken, err := s.users.UsernameExists(ctx, base)
	if err != nil || !taken {
		return base, err
	}
	return base + "_" + uuid.NewString()[:8], nil
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, p auth.Principal) (*models.User, error) {
	return s.users.GetUserByID(ctx, p.UserID)
}

// ActiveUser resolves a username to an active account; inactive users are
// reported as missing.
func (s *UserService) ActiveUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errs.NotFound("User not found")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, p auth.Principal, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile
	if profile == nil {
		profile = &models.Profile{UserID: user.ID, Name: user.Username}
	}
	if err := copier.CopyWithOption(profile, &req, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, errors.Wrap(err, "merge profile")
	}
	if req.AvatarURL != nil && *req.AvatarURL == "" {
		profile.AvatarURL = nil
	}
	if err := s.users.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return s.users.GetUserByID(ctx, p.UserID)
}

func (s *UserService) Statistics(ctx context.Context, p auth.Principal) (*Statistics, error) {
	edges, err := s.follows.FollowerEdges(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	views, err := s.reactions.ViewsForAuthor(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	reactions, err := s.reactions.ReactionsForAuthor(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		Followers: make([]time.Time, 0, len(edges)),
		Views:     map[uint][]time.Time{},
		Reactions: map[uint][]ReactionHit{},
	}
	for _, f := range edges {
		stats.Followers = append(stats.Followers, f.CreatedAt)
	}
	for _, v := range views {
		stats.Views[v.PostID] = append(stats.Views[v.PostID], v.CreatedAt)
	}
	for _, r := range reactions {
		stats.Reactions[r.PostID] = append(stats.Reactions[r.PostID], ReactionHit{ReactionTypeID: r.ReactionTypeID, At: r.CreatedAt})
	}
	return stats, nil
}

func (s *UserService) List(ctx context.Context, q models.PageQuery, includeInactive bool) ([]models.User, int64, error) {
	return s.users.SearchUsers(ctx, q, includeInactive)
}

func (s *UserService) Get(ctx context.Context, p auth.Principal, userID uint) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(p, authz.ResourceUser, authz.ActionRead, authz.Owners(user.ID)); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, p auth.Principal, userID uint) error {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return err
	}
	if err := authz.Check(p, authz.ResourceUser, authz.ActionDelete, authz.Owners(userID)); err != nil {
		return err
	}
	return s.users.DeleteUser(ctx, userID)
}

// SetActive bans or restores an account. Admins cannot ban themselves.
func (s *UserService) SetActive(ctx context.Context, p auth.Principal, userID uint, active bool) (*models.User, error) {
	if err := authz.Check(p, authz.ResourceModeration, authz.ActionManage, authz.Subject{}); err != nil {
		return nil, err
	}
	if userID == p.UserID && !active {
		return nil, errs.Validation("You cannot deactivate your own account")
	}
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	return s.users.GetUserByID(ctx, userID)
}
