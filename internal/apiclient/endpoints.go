package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rogerio-castellano/finance-dashboard/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login asks the API to issue a token.
func (c *Client) Login(ctx context.Context, email, password string) (models.Token, error) {
	var tok models.Token
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &tok)
	return tok, err
}

// Summary fetches the aggregate figures. A nil filter sends no query.
func (c *Client) Summary(ctx context.Context, f *models.Filter) (models.Summary, error) {
	path := "/dashboard"
	if f != nil {
		path = withQuery(path, f.Query())
	}

	var s models.Summary
	err := c.do(ctx, http.MethodGet, path, nil, &s)
	return s, err
}

// Movements lists one kind with the server-side filter fields applied, and
// tags every record with that kind.
func (c *Client) Movements(ctx context.Context, kind models.Kind, f models.Filter) ([]models.Movement, error) {
	var list []models.Movement
	if err := c.do(ctx, http.MethodGet, withQuery(kind.Endpoint(), f.Query()), nil, &list); err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Tipo = kind
	}
	return list, nil
}

// CreateMovement posts to the endpoint of m.Tipo. The kind itself is not part
// of the body.
func (c *Client) CreateMovement(ctx context.Context, m models.NewMovement) (models.Movement, error) {
	var created models.Movement
	if err := c.do(ctx, http.MethodPost, m.Tipo.Endpoint(), m, &created); err != nil {
		return models.Movement{}, err
	}
	created.Tipo = m.Tipo
	return created, nil
}

func (c *Client) DeleteMovement(ctx context.Context, kind models.Kind, id string) error {
	return c.do(ctx, http.MethodDelete, kind.Endpoint()+"/"+url.PathEscape(id), nil, nil)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
