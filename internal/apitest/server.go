// Package apitest is an in-memory stand-in for the external finance API. It
// serves the same HTTP contract and is used by tests and for local runs.
package apitest

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/rogerio-castellano/finance-dashboard/internal/auth"
	"github.com/rogerio-castellano/finance-dashboard/internal/models"
)

type Config struct {
	// Secret is shared with clients that mint tokens locally.
	Secret   string
	Email    string
	Password string
	TokenTTL time.Duration

	// LoginRate and LoginBurst throttle /auth/login per client IP. Zero
	// LoginRate disables throttling.
	LoginRate  rate.Limit
	LoginBurst int

	Log logrus.FieldLogger
}

// RecordedRequest is what the server saw of one incoming call.
type RecordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	Body          []byte
}

type Server struct {
	store      *Store
	minter     *auth.Minter
	credential *auth.FixedCredential
	limiter    *visitorLimiter
	log        logrus.FieldLogger

	mu       sync.Mutex
	failures map[string][]int
	holds    map[string]chan struct{}
	requests []RecordedRequest
}

func NewServer(cfg Config) (*Server, error) {
	minter, err := auth.NewMinter(cfg.Secret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	credential, err := auth.NewFixedCredential(cfg.Email, cfg.Password)
	if err != nil {
		return nil, err
	}

	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Server{
		store:      NewStore(),
		minter:     minter,
		credential: credential,
		log:        log.WithField("component", "fakeapi"),
		failures:   map[string][]int{},
		holds:      map[string]chan struct{}{},
	}
	if cfg.LoginRate > 0 {
		burst := cfg.LoginBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = newVisitorLimiter(cfg.LoginRate, burst)
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.hooks)

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}
		r.Post("/auth/login", s.loginHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/dashboard", s.summaryHandler)
		for _, kind := range []models.Kind{models.Receita, models.Despesa} {
			r.Get(kind.Endpoint(), s.listHandler(kind))
			r.Post(kind.Endpoint(), s.createHandler(kind))
			r.Delete(kind.Endpoint()+"/{id}", s.deleteHandler(kind))
		}
	})
	return r
}

func (s *Server) Store() *Store {
	return s.store
}

// Token mints a valid token the same way a local exchange would.
func (s *Server) Token(email string) (string, error) {
	tok, _, err := s.minter.Mint(email)
	return tok, err
}

// StartLimiterCleanup forgets idle login visitors every interval until stop
// is closed.
func (s *Server) StartLimiterCleanup(interval time.Duration, stop <-chan struct{}) {
	if s.limiter == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.limiter.cleanup(5 * time.Minute)
		case <-stop:
			return
		}
	}
}

// FailNext makes the next request to path answer with status.
func (s *Server) FailNext(path string, status int) {
	s.mu.Lock()
	s.failures[path] = append(s.failures[path], status)
	s.mu.Unlock()
}

// Hold blocks the next request to path until release is called.
func (s *Server) Hold(path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[path] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Requests returns every request seen so far, oldest first.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) takeFailure(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.failures[path]
	if len(queue) == 0 {
		return 0
	}
	s.failures[path] = queue[1:]
	return queue[0]
}

func (s *Server) takeHold(path string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.holds[path]
	if !ok {
		return nil
	}
	delete(s.holds, path)
	return ch
}

func (s *Server) recordRequest(r *http.Request) {
	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})
	s.mu.Unlock()
}
