package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/angelmondragon/surplusmarket-backend/api/responses"
	pkgAuth "github.com/angelmondragon/surplusmarket-backend/pkg/auth"
	"github.com/angelmondragon/surplusmarket-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/surplusmarket-backend/pkg/errors"
	"github.com/angelmondragon/surplusmarket-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the caller identity.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(cfg, r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			ctx := WithIdentity(r.Context(), claims.UserID, claims.Role, claims.StoreID)
			next.ServeHTTP(w, r.WithContext(annotate(ctx, logg, claims)))
		})
	}
}

func authenticate(cfg config.JWTConfig, header string) (*pkgAuth.AccessTokenClaims, error) {
	token, err := pkgAuth.BearerToken(header)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	switch {
	case errors.Is(err, pkgAuth.ErrMisconfigured):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "auth unavailable")
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	return claims, nil
}

func annotate(ctx context.Context, logg *logger.Logger, claims *pkgAuth.AccessTokenClaims) context.Context {
	if logg == nil {
		return ctx
	}
	ctx = logg.WithUserID(ctx, claims.UserID.String())
	ctx = logg.WithActorRole(ctx, string(claims.Role))
	if claims.StoreID != nil {
		ctx = logg.WithStoreID(ctx, claims.StoreID.String())
	}
	return ctx
}
