package repositories

import (
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Migrate enables pg_trgm for similarity search and migrates every model.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		return errors.Wrap(err, "enable pg_trgm")
	}
	if err := db.SetupJoinTable(&models.Post{}, "Topics", &models.PostTopic{}); err != nil {
		return errors.Wrap(err, "setup post_topics")
	}
	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Publication{},
		&models.PublicationMember{},
		&models.PublicationInvitation{},
		&models.Topic{},
		&models.Post{},
		&models.PostTopic{},
		&models.Comment{},
		&models.ReactionType{},
		&models.PostReaction{},
		&models.PostView{},
		&models.Follow{},
		&models.Notification{},
		&models.ReadingList{},
		&models.SavedPost{},
		&models.ReportedPost{},
	)
	return errors.Wrap(err, "auto migrate")
}
