package services

import (
	"context"
	"errors"
	"strings"

	"fire-base/logger"
)

var (
	ErrEnvCredentialLocked = errors.New("credential is provided by the environment")
	ErrEmptyCredential     = errors.New("credential must not be blank")
)

type CredentialSource string

const (
	CredentialSourceEnv   CredentialSource = "env"
	CredentialSourceLocal CredentialSource = "local"
	CredentialSourceNone  CredentialSource = "none"
)

// CredentialStatus never carries the key itself.
type CredentialStatus struct {
	Source  CredentialSource `json:"source"`
	Present bool             `json:"present"`
}

// CredentialStore persists the user-provided key.
type CredentialStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, credential string) error
	Clear(ctx context.Context) error
}

// ClientCache drops gateway clients built for a key that is no longer in use.
type ClientCache interface {
	Forget(credential string)
}

// CredentialService resolves the Gemini key. The environment key always wins
// over the stored one, and while it is present the stored one cannot be changed.
type CredentialService struct {
	repo  CredentialStore
	env   func() string
	cache ClientCache
}

func NewCredentialService(repo CredentialStore, env func() string, cache ClientCache) *CredentialService {
	return &CredentialService{repo: repo, env: env, cache: cache}
}

func (s *CredentialService) envCredential() string {
	if s.env == nil {
		return ""
	}
	return strings.TrimSpace(s.env())
}

// Resolve returns the key to use, or "" when none is configured.
func (s *CredentialService) Resolve(ctx context.Context) (string, error) {
	if env := s.envCredential(); env != "" {
		return env, nil
	}
	return s.repo.Get(ctx)
}

func (s *CredentialService) Status(ctx context.Context) (CredentialStatus, error) {
	if s.envCredential() != "" {
		return CredentialStatus{Source: CredentialSourceEnv, Present: true}, nil
	}
	stored, err := s.repo.Get(ctx)
	if err != nil {
		return CredentialStatus{Source: CredentialSourceNone}, err
	}
	if stored == "" {
		return CredentialStatus{Source: CredentialSourceNone}, nil
	}
	return CredentialStatus{Source: CredentialSourceLocal, Present: true}, nil
}

func (s *CredentialService) Save(ctx context.Context, credential string) (CredentialStatus, error) {
	if s.envCredential() != "" {
		return CredentialStatus{Source: CredentialSourceEnv, Present: true}, ErrEnvCredentialLocked
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return CredentialStatus{}, ErrEmptyCredential
	}

	previous, err := s.repo.Get(ctx)
	if err != nil {
		logger.WarnCtx(ctx, "failed to read stored credential", logger.Fields{"error": err.Error()})
	}
	if err := s.repo.Set(ctx, credential); err != nil {
		return CredentialStatus{}, err
	}
	if previous != "" && previous != credential {
		s.forget(previous)
	}
	logger.Log.Info("user credential saved")
	return CredentialStatus{Source: CredentialSourceLocal, Present: true}, nil
}

func (s *CredentialService) Clear(ctx context.Context) (CredentialStatus, error) {
	if s.envCredential() != "" {
		return CredentialStatus{Source: CredentialSourceEnv, Present: true}, ErrEnvCredentialLocked
	}
	previous, _ := s.repo.Get(ctx)
	if err := s.repo.Clear(ctx); err != nil {
		return CredentialStatus{}, err
	}
	if previous != "" {
		s.forget(previous)
	}
	logger.Log.Info("user credential cleared")
	return CredentialStatus{Source: CredentialSourceNone}, nil
}

func (s *CredentialService) forget(credential string) {
	if s.cache != nil {
		s.cache.Forget(credential)
	}
}
