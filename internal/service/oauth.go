package service

import (
	"context"

	"github.com/ftechnology/backend/internal/db"
	"github.com/ftechnology/backend/internal/model"
	"github.com/google/uuid"
)

type OAuthRepo interface {
	GetUserByProvider(ctx context.Context, provider, providerID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	LinkProvider(ctx context.Context, id uuid.UUID, provider, providerID string, avatarURL *string) (*model.User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL *string) (*model.User, error)
	CreateOAuthUser(ctx context.Context, a model.ProviderAssertion) (*model.User, error)
}

// OAuthResolver maps a verified provider assertion onto a local account.
type OAuthResolver struct {
	repo OAuthRepo
}

func NewOAuthResolver(repo OAuthRepo) *OAuthResolver {
	return &OAuthResolver{repo: repo}
}

// Resolve follows a strict precedence: an existing (provider, subject)
// match wins over an email match, which wins over creating a new account.
// The ordering matters: matching on email before the provider identity
// would let a reissued subject id capture a different user's account.
func (r *OAuthResolver) Resolve(ctx context.Context, a model.ProviderAssertion) (*model.User, error) {
	user, err := r.repo.GetUserByProvider(ctx, a.Provider, a.SubjectID)
	if err == nil {
		return r.refreshAvatar(ctx, user, a.AvatarURL)
	}
	if !db.IsNoRows(err) {
		return nil, err
	}

	user, err = r.repo.GetUserByEmail(ctx, a.Email)
	if err == nil {
		var avatar *string
		if a.AvatarURL != "" {
			avatar = &a.AvatarURL
		}
		return r.repo.LinkProvider(ctx, user.ID, a.Provider, a.SubjectID, avatar)
	}
	if !db.IsNoRows(err) {
		return nil, err
	}

	return r.repo.CreateOAuthUser(ctx, a)
}

// refreshAvatar updates a stale avatar on login. Failures are non-critical
// and leave the resolved account intact.
func (r *OAuthResolver) refreshAvatar(ctx context.Context, user *model.User, avatarURL string) (*model.User, error) {
	if avatarURL == "" {
		return user, nil
	}
	if user.AvatarURL != nil && *user.AvatarURL == avatarURL {
		return user, nil
	}
	updated, err := r.repo.UpdateAvatar(ctx, user.ID, &avatarURL)
	if err != nil {
		return user, nil
	}
	return updated, nil
}
