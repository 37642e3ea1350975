package firebase

import (
	"context"
	"os"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and its clients
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
	Storage     *storage.Client
	BucketName  string
}

// InitFirebase initializes the Firebase application together with the auth
// and storage clients.
func InitFirebase(ctx context.Context, credentialsPath, storageBucket string) (*App, error) {
	if credentialsPath == "" {
		return nil, errors.New("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, errors.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)
	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: storageBucket}, opt)
	if err != nil {
		return nil, errors.Wrap(err, "error initializing firebase app")
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error getting firebase auth client")
	}

	storageClient, err := firebaseApp.Storage(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error getting firebase storage client")
	}

	return &App{
		FirebaseApp: firebaseApp,
		AuthClient:  authClient,
		Storage:     storageClient,
		BucketName:  storageBucket,
	}, nil
}

// Bucket returns the configured default storage bucket.
func (a *App) Bucket() (*gcs.BucketHandle, error) {
	if a.BucketName == "" {
		return nil, errors.New("FIREBASE_STORAGE_BUCKET not set")
	}
	bucket, err := a.Storage.DefaultBucket()
	return bucket, errors.Wrap(err, "open firebase storage bucket")
}
