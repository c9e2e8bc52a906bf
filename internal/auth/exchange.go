// Package auth exchanges user credentials for an API bearer token and keeps
// the result in the session store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rogerio-castellano/finance-dashboard/internal/apiclient"
	"github.com/rogerio-castellano/finance-dashboard/internal/models"
	"github.com/rogerio-castellano/finance-dashboard/internal/session"
	"github.com/rogerio-castellano/finance-dashboard/internal/validation"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Mode decides who issues the API token.
type Mode string

const (
	// ModeDelegated asks the API's login endpoint for a token.
	ModeDelegated Mode = "delegated"
	// ModeLocalMint checks a fixed credential and signs the token locally.
	ModeLocalMint Mode = "local"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDelegated, ModeLocalMint:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown auth mode %q (want %q or %q)", s, ModeDelegated, ModeLocalMint)
}

// Issuer is the API login call used in delegated mode.
type Issuer interface {
	Login(ctx context.Context, email, password string) (models.Token, error)
}

type Exchange struct {
	mode       Mode
	store      session.Store
	issuer     Issuer
	credential *FixedCredential
	minter     *Minter
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewDelegatedExchange(store session.Store, issuer Issuer, log logrus.FieldLogger) *Exchange {
	return &Exchange{
		mode:   ModeDelegated,
		store:  store,
		issuer: issuer,
		log:    log.WithField("component", "auth"),
		now:    time.Now,
	}
}

func NewLocalExchange(store session.Store, credential *FixedCredential, minter *Minter, log logrus.FieldLogger) *Exchange {
	return &Exchange{
		mode:       ModeLocalMint,
		store:      store,
		credential: credential,
		minter:     minter,
		log:        log.WithField("component", "auth"),
		now:        time.Now,
	}
}

func (e *Exchange) Mode() Mode {
	return e.mode
}

// Login validates the input, obtains a token and stores the new session.
// Nothing is written to the store unless every step succeeds.
func (e *Exchange) Login(ctx context.Context, email, password string) (models.Session, error) {
	if _, err := validation.Login(validation.LoginInput{Email: email, Password: password}); err != nil {
		return models.Session{}, err
	}

	var (
		s   models.Session
		err error
	)
	switch e.mode {
	case ModeLocalMint:
		s, err = e.localMint(email, password)
	default:
		s, err = e.delegate(ctx, email, password)
	}
	if err != nil {
		e.log.WithError(err).WithField("mode", e.mode).Warn("Auth.Login.Failed")
		return models.Session{}, err
	}

	if err := e.store.Set(ctx, s); err != nil {
		return models.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	e.log.WithField("mode", e.mode).WithField("email", s.UserEmail).Info("Auth.Login.Complete")
	return s, nil
}

func (e *Exchange) localMint(email, password string) (models.Session, error) {
	if e.credential == nil || e.minter == nil {
		return models.Session{}, errors.New("local auth is not configured")
	}
	if !e.credential.Matches(email, password) {
		return models.Session{}, ErrInvalidCredentials
	}

	token, expires, err := e.minter.Mint(email)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{
		UserEmail: email,
		APIToken:  token,
		IssuedAt:  e.now(),
		ExpiresAt: expires,
	}, nil
}

func (e *Exchange) delegate(ctx context.Context, email, password string) (models.Session, error) {
	if e.issuer == nil {
		return models.Session{}, errors.New("delegated auth has no API client")
	}

	tok, err := e.issuer.Login(ctx, email, password)
	if err != nil {
		var statusErr *apiclient.StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.Code {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
				return models.Session{}, ErrInvalidCredentials
			}
		}
		return models.Session{}, err
	}
	if tok.AccessToken == "" {
		return models.Session{}, errors.New("login response has no access_token")
	}

	s := models.Session{
		UserEmail: email,
		APIToken:  tok.AccessToken,
		IssuedAt:  e.now(),
	}
	if exp, ok := UnverifiedExpiry(tok.AccessToken); ok {
		s.ExpiresAt = exp
	}
	return s, nil
}

// Logout drops the current session.
func (e *Exchange) Logout(ctx context.Context) error {
	if err := e.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	e.log.Info("Auth.Logout.Complete")
	return nil
}

// Current returns the stored session, if any.
func (e *Exchange) Current(ctx context.Context) (models.Session, bool, error) {
	return e.store.Get(ctx)
}
