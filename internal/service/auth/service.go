package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	domainauth "github.com/NordCoder/Authly/internal/domain/auth"
	"github.com/NordCoder/Authly/internal/domain/event"
	"github.com/NordCoder/Authly/internal/domain/user"
)

var (
	mTokenPairsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_token_pairs_issued_total",
		Help: "Access/refresh token pairs issued by register, login and refresh",
	})
	mTokensRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_tokens_revoked_total",
		Help: "Access tokens blacklisted by logout",
	})
	mPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_event_publish_failures_total",
		Help: "UserCreated events dropped because the publish failed",
	})
)

type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// PublishTimeout bounds the detached user-created publish.
	PublishTimeout time.Duration
	Now            func() time.Time
}

// Service orchestrates credential verification and the token lifecycle. It
// holds only immutable handles to its collaborators; all consistency lives
// in the store and the cache.
type Service struct {
	users  user.Repo
	cache  domainauth.TokenCache
	hasher domainauth.PasswordHasher
	codec  domainauth.TokenCodec
	events event.Publisher
	log    *zap.Logger
	cfg    Config
}

func NewService(
	users user.Repo,
	cache domainauth.TokenCache,
	hasher domainauth.PasswordHasher,
	codec domainauth.TokenCodec,
	events event.Publisher,
	log *zap.Logger,
	cfg Config,
) *Service {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if log == nil {
		log = zap.L()
	}
	return &Service{
		users:  users,
		cache:  cache,
		hasher: hasher,
		codec:  codec,
		events: events,
		log:    log.With(zap.String("component", "auth.service")),
		cfg:    cfg,
	}
}

// Register creates the user, issues a token pair and emits UserCreated.
// The event is best-effort: registration never fails on a publish error.
func (s *Service) Register(ctx context.Context, email, password, name string) (access, refresh string, err error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", "", domainauth.ErrEmailExists
	} else if !errors.Is(err, user.ErrNotFound) {
		return "", "", fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error("password hash failed", zap.Error(err))
		return "", "", err
	}

	u := user.New(email, hash, name, s.cfg.Now())
	if err := s.users.Create(ctx, u); err != nil {
		// The UNIQUE(email) constraint closes the check-then-insert race.
		if errors.Is(err, user.ErrEmailTaken) {
			return "", "", domainauth.ErrEmailExists
		}
		return "", "", fmt.Errorf("create user: %w", err)
	}

	access, refresh, err = s.issueTokens(ctx, u.ID)
	if err != nil {
		return "", "", err
	}

	s.publishUserCreated(ctx, u)
	return access, refresh, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (access, refresh string, err error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", "", domainauth.ErrUserNotFound
		}
		return "", "", fmt.Errorf("lookup email: %w", err)
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		// Corrupt stored hash. The caller sees the same outcome as a wrong
		// password so account state never leaks through error shape.
		s.log.Error("password verify failed", zap.String("user_id", u.ID), zap.Error(err))
		return "", "", domainauth.ErrUnauthorized
	}
	if !ok {
		return "", "", domainauth.ErrUnauthorized
	}

	return s.issueTokens(ctx, u.ID)
}

// Refresh exchanges a live refresh token for a new access token. The
// refresh token itself is returned unchanged and stays valid until its
// original TTL lapses.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (access, refresh string, err error) {
	userID, ok, err := s.cache.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("refresh lookup: %w", err)
	}
	if !ok {
		return "", "", domainauth.ErrInvalidToken
	}
	if _, err := uuid.Parse(userID); err != nil {
		return "", "", domainauth.ErrInvalidToken
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", "", domainauth.ErrUserNotFound
		}
		return "", "", fmt.Errorf("lookup user: %w", err)
	}

	access, _, err = s.codec.Issue(userID, s.cfg.AccessTTL)
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}
	mTokenPairsIssued.Inc()
	return access, refreshToken, nil
}

// Revoke blacklists an access token for its remaining lifetime. An already
// expired token needs no entry: it fails the codec's expiry check anyway.
func (s *Service) Revoke(ctx context.Context, jti string, expiresAt int64) error {
	ttl := time.Duration(expiresAt-s.cfg.Now().Unix()) * time.Second
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.BlacklistAccessToken(ctx, jti, ttl); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	mTokensRevoked.Inc()
	return nil
}

func (s *Service) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return s.cache.IsAccessTokenBlacklisted(ctx, jti)
}

func (s *Service) issueTokens(ctx context.Context, userID string) (access, refresh string, err error) {
	access, _, err = s.codec.Issue(userID, s.cfg.AccessTTL)
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}

	// Opaque high-entropy id, deliberately not a signed token: it is only
	// ever resolved through the cache.
	refresh = uuid.NewString()
	if err := s.cache.StoreRefreshToken(ctx, userID, refresh, s.cfg.RefreshTTL); err != nil {
		return "", "", fmt.Errorf("store refresh: %w", err)
	}

	mTokenPairsIssued.Inc()
	return access, refresh, nil
}

func (s *Service) publishUserCreated(ctx context.Context, u *user.User) {
	ev := event.UserCreated{UserID: u.ID, Email: u.Email}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PublishTimeout)
	go func() {
		defer cancel()
		// One attempt only. A retried publish can double-produce the event
		// on an ambiguous broker failure; consumers already absorb delivery
		// duplicates, not production ones.
		if err := s.events.PublishUserCreated(pctx, ev); err != nil {
			mPublishFailures.Inc()
			s.log.Error("publish user.created failed; event dropped",
				zap.String("user_id", ev.UserID),
				zap.Error(err),
			)
		}
	}()
}
