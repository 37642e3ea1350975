package auth

import (
	"context"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/pkg/errors"
)

// IDTokenVerifier is satisfied by *firebaseauth.Client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// FirebaseVerifier accepts Firebase ID tokens for users already linked through
// the firebase login flow.
type FirebaseVerifier struct {
	client IDTokenVerifier
	users  UserLookup
}

func NewFirebaseVerifier(client IDTokenVerifier, users UserLookup) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, users: users}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Principal, error) {
	idToken, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Principal{}, errs.Unauthenticated("Invalid or expired ID token")
	}
	user, err := v.users.GetUserByFirebaseUID(ctx, idToken.UID)
	if err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return Principal{}, errs.Unauthenticated("Firebase account is not linked")
		}
		return Principal{}, errors.Wrap(err, "load firebase user")
	}
	if !user.IsActive {
		return Principal{}, errs.Unauthenticated("this account have been banned")
	}
	return PrincipalOf(user), nil
}
