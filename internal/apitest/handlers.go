package apitest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rogerio-castellano/finance-dashboard/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createRequest struct {
	Descricao string        `json:"descricao"`
	Valor     models.Amount `json:"valor"`
	Categoria string        `json:"categoria"`
	Data      string        `json:"data"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if !s.credential.Matches(req.Email, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, _, err := s.minter.Mint(req.Email)
	if err != nil {
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}

	if err := writeJSON(w, http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer"}); err != nil {
		s.log.WithError(err).Warn("FakeAPI.Login.WriteFailed")
	}
}

func filterFromRequest(r *http.Request) MovementFilter {
	q := r.URL.Query()
	return MovementFilter{
		Inicio: q.Get("inicio"),
		Fim:    q.Get("fim"),
		Busca:  q.Get("busca"),
	}
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, s.store.Summary(filterFromRequest(r))); err != nil {
		s.log.WithError(err).Warn("FakeAPI.Summary.WriteFailed")
	}
}

func (s *Server) listHandler(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := s.store.List(kind, filterFromRequest(r))
		if err := writeJSON(w, http.StatusOK, list); err != nil {
			s.log.WithError(err).Warn("FakeAPI.List.WriteFailed")
		}
	}
}

func (s *Server) createHandler(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := readJSON(w, r, &req); err != nil {
			http.Error(w, "invalid input", http.StatusBadRequest)
			return
		}

		errs := map[string]string{}
		if strings.TrimSpace(req.Descricao) == "" {
			errs["descricao"] = "descricao is required"
		}
		if !req.Valor.IsPositive() {
			errs["valor"] = "valor must be greater than zero"
		}
		if req.Data == "" {
			errs["data"] = "data is required"
		}
		if len(errs) > 0 {
			_ = writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
			return
		}

		created := s.store.Add(kind, models.Movement{
			Descricao: req.Descricao,
			Valor:     req.Valor,
			Categoria: req.Categoria,
			Data:      req.Data,
		})
		s.log.WithField("kind", kind).WithField("id", created.ID).WithField("user", emailFromContext(r)).Info("FakeAPI.Create.Complete")

		if err := writeJSON(w, http.StatusCreated, created); err != nil {
			s.log.WithError(err).Warn("FakeAPI.Create.WriteFailed")
		}
	}
}

func (s *Server) deleteHandler(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !s.store.Delete(kind, id) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
