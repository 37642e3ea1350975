package router

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/assistant"
	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/handlers"
	"github.com/anonto42/inkwell/backend/internal/middleware"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/anonto42/inkwell/backend/internal/storage"
	"github.com/anonto42/inkwell/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Repositories groups every store the routes depend on.
type Repositories struct {
	Users         repositories.UserRepository
	Posts         repositories.PostRepository
	Contents      repositories.ContentRepository
	Comments      repositories.CommentRepository
	Reactions     repositories.ReactionRepository
	Follows       repositories.FollowRepository
	Notifications repositories.NotificationRepository
	Publications  repositories.PublicationRepository
	ReadingLists  repositories.ReadingListRepository
	Topics        repositories.TopicRepository
	Reports       repositories.ReportRepository
}

func NewRepositories(db *gorm.DB, mongoDB *mongo.Database) *Repositories {
	return &Repositories{
		Users:         repositories.NewPostgresUserRepository(db),
		Posts:         repositories.NewPostgresPostRepository(db),
		Contents:      repositories.NewMongoContentRepository(mongoDB),
		Comments:      repositories.NewPostgresCommentRepository(db),
		Reactions:     repositories.NewPostgresReactionRepository(db),
		Follows:       repositories.NewPostgresFollowRepository(db),
		Notifications: repositories.NewPostgresNotificationRepository(db),
		Publications:  repositories.NewPostgresPublicationRepository(db),
		ReadingLists:  repositories.NewPostgresReadingListRepository(db),
		Topics:        repositories.NewPostgresTopicRepository(db),
		Reports:       repositories.NewPostgresReportRepository(db),
	}
}

// Deps are the collaborators SetupRoutes wires into handlers.
type Deps struct {
	Repos    *Repositories
	Notifier services.Enqueuer
	Tokens   *auth.TokenIssuer
	// Firebase is optional; nil disables Firebase login and Firebase bearer tokens.
	Firebase         auth.IDTokenVerifier
	Uploader         storage.Uploader
	PostImagesBucket string
	AvatarsBucket    string
	Assistant        assistant.Generator
	Health           map[string]handlers.Check
	Log              logrus.FieldLogger
}

// found maps a lookup result onto (exists, err).
func found(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errs.Is(err, errs.KindNotFound) {
		return false, nil
	}
	return false, err
}

func asUint(v interface{}) uint {
	id, _ := v.(uint)
	return id
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// NewValidator registers the store-backed uniqueness and existence rules.
func NewValidator(repos *Repositories) (*validators.CustomValidator, error) {
	return validators.NewValidator(
		validators.WithUnique("unique_username", func(ctx context.Context, v interface{}) (bool, error) {
			return repos.Users.UsernameExists(ctx, asString(v))
		}),
		validators.WithUnique("unique_email", func(ctx context.Context, v interface{}) (bool, error) {
			return repos.Users.EmailExists(ctx, asString(v))
		}),
		validators.WithExists("user_exists", func(ctx context.Context, v interface{}) (bool, error) {
			_, err := repos.Users.GetUserByID(ctx, asUint(v))
			return found(err)
		}),
		validators.WithExists("reaction_exists", func(ctx context.Context, v interface{}) (bool, error) {
			_, err := repos.Reactions.GetType(ctx, asUint(v))
			return found(err)
		}),
		validators.WithExists("topic_exists", func(ctx context.Context, v interface{}) (bool, error) {
			return repos.Topics.TopicExists(ctx, asUint(v))
		}),
	)
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) error {
	repos := d.Repos
	v, err := NewValidator(repos)
	if err != nil {
		return err
	}
	e.Validator = v
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(d.Log)

	verifiers := []auth.Verifier{auth.NewJWTVerifier(d.Tokens, repos.Users)}
	if d.Firebase != nil {
		verifiers = append(verifiers, auth.NewFirebaseVerifier(d.Firebase, repos.Users))
	}
	e.Use(middleware.ResolvePrincipal(verifiers...))

	// --- Services ---
	postService := services.NewPostService(repos.Posts, repos.Contents, repos.Reactions, repos.Comments,
		repos.Publications, d.Notifier, d.Log)
	socialService := services.NewSocialService(repos.Users, repos.Follows, d.Notifier, d.Log)
	userService := services.NewUserService(repos.Users, repos.Follows, repos.Reactions, d.Tokens, d.Firebase, d.Log)
	publicationService := services.NewPublicationService(repos.Publications, repos.Users, d.Notifier, d.Log)

	e.GET("/health", handlers.HealthCheck(d.Health, d.Log))

	handlers.NewAuthHandler(userService, publicationService).RegisterAuthRoutes(e.Group(""))

	users := e.Group("/users")
	handlers.NewUserHandler(userService, socialService, postService).RegisterUserRoutes(users)
	handlers.NewFollowHandler(socialService).RegisterFollowRoutes(users)

	me := e.Group("/me", middleware.RequireAuth())
	handlers.NewMeHandler(userService, socialService, postService, repos.ReadingLists).RegisterMeRoutes(me)
	handlers.NewNotificationHandler(repos.Notifications, repos.Users).RegisterNotificationRoutes(me)
	handlers.NewReadingListHandler(repos.ReadingLists, postService).RegisterReadingListRoutes(me)

	reactionHandler := handlers.NewReactionHandler(postService, repos.Reactions)
	posts := e.Group("/posts")
	handlers.NewPostHandler(postService).RegisterPostRoutes(posts)
	handlers.NewCommentHandler(postService).RegisterCommentRoutes(posts)
	reactionHandler.RegisterPostReactionRoutes(posts)
	reactionHandler.RegisterCatalogRoutes(e.Group("/reactions"))

	handlers.NewTopicHandler(repos.Topics).RegisterTopicRoutes(e.Group("/topics"))
	handlers.NewPublicationHandler(publicationService, postService).RegisterPublicationRoutes(e.Group("/publications"))
	handlers.NewInvitationHandler(publicationService).RegisterInvitationRoutes(e.Group("/invitations", middleware.RequireAuth()))

	reportHandler := handlers.NewReportHandler(repos.Reports, userService, postService)
	reportHandler.RegisterReportRoutes(e.Group("/reported-posts"))
	reportHandler.RegisterAdminRoutes(e.Group("/admin", middleware.RequireAdmin()))

	handlers.NewImageHandler(d.Uploader, d.PostImagesBucket, d.AvatarsBucket, d.Log).
		RegisterImageRoutes(e.Group("/images", middleware.RequireAuth()))
	handlers.NewAssistantHandler(d.Assistant).RegisterAssistantRoutes(e.Group("/writing-assistant", middleware.RequireAuth()))

	d.Log.WithField("routes", len(e.Routes())).Info("routes configured")
	return nil
}
