// Package dashboard coordinates the data shown on the dashboard: the summary
// figures, both movement lists, and the create/delete round-trips that
// resynchronise them.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rogerio-castellano/finance-dashboard/internal/models"
	"github.com/rogerio-castellano/finance-dashboard/internal/validation"
)

// DefaultRecentLimit caps the merged "recent movements" list.
const DefaultRecentLimit = 6

// ErrSuperseded is returned by a load cycle that finished after a newer one
// had started. Its results were dropped.
var ErrSuperseded = errors.New("load cycle superseded by a newer one")

const (
	msgLoadFailed   = "Nao foi possivel carregar os dados do dashboard."
	msgReviewFields = "Revise os campos destacados."
	msgSaveFailed   = "Nao foi possivel salvar. Tente novamente."
	msgDeleteFailed = "Nao foi possivel remover o registro."
)

// State is the load state of the dashboard.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	LoadFailed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "load_failed"
	}
	return "idle"
}

// API is the part of the finance API the dashboard needs.
type API interface {
	Summary(ctx context.Context, f *models.Filter) (models.Summary, error)
	Movements(ctx context.Context, kind models.Kind, f models.Filter) ([]models.Movement, error)
	CreateMovement(ctx context.Context, m models.NewMovement) (models.Movement, error)
	DeleteMovement(ctx context.Context, kind models.Kind, id string) error
}

// Options tunes a Controller. The zero value is usable.
type Options struct {
	// SummaryHonorsFilters sends inicio/fim/busca to the summary endpoint too.
	SummaryHonorsFilters bool
	RecentLimit          int
	Notifier             Notifier
	Log                  logrus.FieldLogger
}

// View is a snapshot of what the dashboard displays. Summary and both lists
// always come from the same load cycle.
type View struct {
	State       State
	Summary     *models.Summary
	Receitas    []models.Movement
	Despesas    []models.Movement
	Filter      models.Filter
	LastError   error
	FieldErrors validation.Errors
}

// Controller owns the dashboard view and serializes load cycles so only the
// newest one is published.
type Controller struct {
	api    API
	opts   Options
	notify Notifier
	log    logrus.FieldLogger

	mu     sync.Mutex
	latest uint64
	filter models.Filter
	view   View
}

func NewController(api API, opts Options) *Controller {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = DefaultRecentLimit
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	notify := opts.Notifier
	if notify == nil {
		notify = LogNotifier{Log: log}
	}
	return &Controller{
		api:    api,
		opts:   opts,
		notify: notify,
		log:    log.WithField("component", "dashboard"),
		filter: models.Filter{Tipo: models.TypeTodos},
		view:   View{Filter: models.Filter{Tipo: models.TypeTodos}},
	}
}

type loadResult struct {
	summary  models.Summary
	receitas []models.Movement
	despesas []models.Movement
}

// LoadAll fetches the summary and both lists concurrently and publishes them
// together. If any fetch fails the previous data stays and the view moves to
// LoadFailed. A cycle overtaken by a newer LoadAll returns ErrSuperseded and
// changes nothing.
func (c *Controller) LoadAll(ctx context.Context, f models.Filter) (View, error) {
	if f.Tipo == "" {
		f.Tipo = models.TypeTodos
	}

	c.mu.Lock()
	c.latest++
	seq := c.latest
	c.filter = f
	c.view.State = Loading
	c.mu.Unlock()

	log := c.log.WithField("cycle", seq)
	log.WithField("filter", f.Query().Encode()).Debug("Dashboard.LoadAll.Start")

	res, err := c.fetch(ctx, f)

	c.mu.Lock()
	if seq != c.latest {
		view := c.snapshotLocked()
		c.mu.Unlock()
		log.Debug("Dashboard.LoadAll.Superseded")
		return view, ErrSuperseded
	}

	if err != nil {
		c.view.State = LoadFailed
		c.view.LastError = err
		view := c.snapshotLocked()
		c.mu.Unlock()

		log.WithError(err).Error("Dashboard.LoadAll.Failed")
		c.notify.Failure(msgLoadFailed, err)
		return view, err
	}

	summary := res.summary
	c.view.State = Loaded
	c.view.Summary = &summary
	c.view.Receitas = res.receitas
	c.view.Despesas = res.despesas
	c.view.Filter = f
	c.view.LastError = nil
	view := c.snapshotLocked()
	c.mu.Unlock()

	log.WithField("receitas", len(res.receitas)).WithField("despesas", len(res.despesas)).Info("Dashboard.LoadAll.Complete")
	return view, nil
}

func (c *Controller) fetch(ctx context.Context, f models.Filter) (loadResult, error) {
	var res loadResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var sf *models.Filter
		if c.opts.SummaryHonorsFilters {
			sf = &f
		}
		s, err := c.api.Summary(gctx, sf)
		if err != nil {
			return fmt.Errorf("load summary: %w", err)
		}
		res.summary = s
		return nil
	})
	g.Go(func() error {
		list, err := c.api.Movements(gctx, models.Receita, f)
		if err != nil {
			return fmt.Errorf("load receitas: %w", err)
		}
		res.receitas = list
		return nil
	})
	g.Go(func() error {
		list, err := c.api.Movements(gctx, models.Despesa, f)
		if err != nil {
			return fmt.Errorf("load despesas: %w", err)
		}
		res.despesas = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return loadResult{}, err
	}
	return res, nil
}

// Refresh reloads with the current filter.
func (c *Controller) Refresh(ctx context.Context) (View, error) {
	c.mu.Lock()
	f := c.filter
	c.mu.Unlock()
	return c.LoadAll(ctx, f)
}

// SetFilter reloads when a server-side field differs from the data on screen,
// or when that data is not a finished load. A change of tipo alone only
// re-filters what is already loaded.
func (c *Controller) SetFilter(ctx context.Context, f models.Filter) (View, error) {
	if f.Tipo == "" {
		f.Tipo = models.TypeTodos
	}

	c.mu.Lock()
	if c.view.State == Loaded && c.view.Filter.SameServerSide(f) {
		c.filter.Tipo = f.Tipo
		view := c.snapshotLocked()
		c.mu.Unlock()
		return view, nil
	}
	c.mu.Unlock()

	return c.LoadAll(ctx, f)
}

// SubmitMovement validates the form, creates the record and reloads. Invalid
// input never reaches the API; the field errors are kept in the view.
func (c *Controller) SubmitMovement(ctx context.Context, in validation.MovementInput) (models.Movement, error) {
	payload, err := validation.Movement(in)
	if err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			c.mu.Lock()
			c.view.FieldErrors = fieldErrs
			c.mu.Unlock()
		}
		c.notify.Failure(msgReviewFields, err)
		return models.Movement{}, err
	}

	c.mu.Lock()
	c.view.FieldErrors = nil
	c.mu.Unlock()

	created, err := c.api.CreateMovement(ctx, payload)
	if err != nil {
		c.log.WithError(err).WithField("kind", payload.Tipo).Error("Dashboard.SubmitMovement.Failed")
		c.notify.Failure(msgSaveFailed, err)
		return models.Movement{}, err
	}

	c.notify.Success(payload.Tipo.Label() + " adicionada!")
	c.reload(ctx)
	return created, nil
}

// DeleteMovement removes a record and reloads. On failure nothing changes.
func (c *Controller) DeleteMovement(ctx context.Context, kind models.Kind, id string) error {
	if err := c.api.DeleteMovement(ctx, kind, id); err != nil {
		c.log.WithError(err).WithField("kind", kind).WithField("id", id).Error("Dashboard.DeleteMovement.Failed")
		c.notify.Failure(msgDeleteFailed, err)
		return err
	}

	c.notify.Success(kind.Label() + " removida.")
	c.reload(ctx)
	return nil
}

// reload resynchronises after a mutation. Its failure is reported by LoadAll
// and does not undo the mutation.
func (c *Controller) reload(ctx context.Context) {
	if _, err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		c.log.WithError(err).Warn("Dashboard.Reload.Failed")
	}
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Recent is the "recent movements" list for the current tipo filter.
func (c *Controller) Recent() []models.Movement {
	v := c.View()
	return MergeAndFilter(v.Receitas, v.Despesas, v.Filter.Tipo, c.opts.RecentLimit)
}

func (c *Controller) snapshotLocked() View {
	v := c.view
	v.Filter.Tipo = c.filter.Tipo
	v.Receitas = append([]models.Movement(nil), c.view.Receitas...)
	v.Despesas = append([]models.Movement(nil), c.view.Despesas...)
	v.FieldErrors = append(validation.Errors(nil), c.view.FieldErrors...)
	if c.view.Summary != nil {
		s := *c.view.Summary
		v.Summary = &s
	}
	return v
}
