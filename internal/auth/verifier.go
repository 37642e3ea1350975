package auth

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
)

// Verifier turns a bearer credential into a principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// UserLookup is the slice of the user store the verifiers need.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
}

// JWTVerifier accepts tokens minted by TokenIssuer. The user must still exist
// and be active; the role is read from the store, not trusted from the token.
type JWTVerifier struct {
	issuer *TokenIssuer
	users  UserLookup
}

func NewJWTVerifier(issuer *TokenIssuer, users UserLookup) *JWTVerifier {
	return &JWTVerifier{issuer: issuer, users: users}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (Principal, error) {
	claims, err := v.issuer.Parse(token)
	if err != nil {
		return Principal{}, errs.Unauthenticated("Invalid token")
	}
	user, err := v.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return Principal{}, errs.Unauthenticated("Invalid token")
		}
		return Principal{}, errors.Wrap(err, "load token user")
	}
	if !user.IsActive {
		return Principal{}, errs.Unauthenticated("this account have been banned")
	}
	return PrincipalOf(user), nil
}
