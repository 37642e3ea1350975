// Package repotest provides in-memory implementations of the repository
// interfaces. They report NotFound, Conflict and ErrSlugTaken the same way the
// store-backed repositories do.
package repotest

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
)

// Store is the shared state behind every fake repository.
type Store struct {
	mu  sync.Mutex
	seq uint

	users         map[uint]*models.User
	posts         map[uint]*models.Post
	postTopics    map[uint][]uint
	topics        map[uint]*models.Topic
	contents      map[uint]json.RawMessage
	comments      map[uint]*models.Comment
	reactionTypes map[uint]*models.ReactionType
	reactions     []models.PostReaction
	views         []models.PostView
	follows       []models.Follow
	notifications []models.Notification
	publications  map[uint]*models.Publication
	members       []models.PublicationMember
	invitations   map[uint]*models.PublicationInvitation
	lists         map[uint]*models.ReadingList
	saved         []models.SavedPost
	reports       []models.ReportedPost

	// NotificationErr, when set, fails CreateIfAbsent for matching recipients.
	NotificationErr func(recipientID uint) error
	// ContentErr, when set, fails SaveContent.
	ContentErr error

	Now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:         map[uint]*models.User{},
		posts:         map[uint]*models.Post{},
		postTopics:    map[uint][]uint{},
		topics:        map[uint]*models.Topic{},
		contents:      map[uint]json.RawMessage{},
		comments:      map[uint]*models.Comment{},
		reactionTypes: map[uint]*models.ReactionType{},
		publications:  map[uint]*models.Publication{},
		invitations:   map[uint]*models.PublicationInvitation{},
		lists:         map[uint]*models.ReadingList{},
		Now:           time.Now,
	}
}

func (s *Store) nextID() uint {
	s.seq++
	return s.seq
}

func (s *Store) now() time.Time {
	s.seq++
	// strictly increasing so recency ordering is deterministic
	return s.Now().Add(time.Duration(s.seq) * time.Millisecond)
}

func (s *Store) Users() *Users                 { return &Users{s} }
func (s *Store) Posts() *Posts                 { return &Posts{s} }
func (s *Store) Contents() *Contents           { return &Contents{s} }
func (s *Store) Comments() *Comments           { return &Comments{s} }
func (s *Store) Reactions() *Reactions         { return &Reactions{s} }
func (s *Store) Follows() *Follows             { return &Follows{s} }
func (s *Store) Notifications() *Notifications { return &Notifications{s} }
func (s *Store) Publications() *Publications   { return &Publications{s} }
func (s *Store) ReadingLists() *ReadingLists   { return &ReadingLists{s} }
func (s *Store) Topics() *Topics               { return &Topics{s} }
func (s *Store) Reports() *Reports             { return &Reports{s} }

func (s *Store) userActive(id uint) bool {
	u, ok := s.users[id]
	return ok && u.IsActive
}

func (s *Store) userCopy(id uint) *models.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	cp := *u
	if u.Profile != nil {
		p := *u.Profile
		cp.Profile = &p
	}
	return &cp
}

// page slices items for a 1-based page query.
func page[T any](items []T, q models.PageQuery) []T {
	start := q.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + q.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func newestFirst[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return at(items[i]).After(at(items[j])) })
}
