package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogerio-castellano/finance-dashboard/internal/models"
	"github.com/rogerio-castellano/finance-dashboard/internal/validation"
)

type fakeAPI struct {
	mu        sync.Mutex
	summary   models.Summary
	receitas  []models.Movement
	despesas  []models.Movement
	failOn    map[string]error
	gate      chan struct{}
	summaryFs []*models.Filter
	listFs    []models.Filter
	created   []models.NewMovement
	deleted   []string
}

func (f *fakeAPI) wait(ctx context.Context) error {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAPI) fail(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failOn[op]
}

func (f *fakeAPI) Summary(ctx context.Context, flt *models.Filter) (models.Summary, error) {
	f.mu.Lock()
	f.summaryFs = append(f.summaryFs, flt)
	s := f.summary
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return models.Summary{}, err
	}
	if err := f.fail("summary"); err != nil {
		return models.Summary{}, err
	}
	return s, nil
}

func (f *fakeAPI) Movements(ctx context.Context, kind models.Kind, flt models.Filter) ([]models.Movement, error) {
	f.mu.Lock()
	f.listFs = append(f.listFs, flt)
	list := f.receitas
	if kind == models.Despesa {
		list = f.despesas
	}
	list = append([]models.Movement(nil), list...)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if err := f.fail(string(kind)); err != nil {
		return nil, err
	}
	return list, nil
}

func (f *fakeAPI) CreateMovement(_ context.Context, m models.NewMovement) (models.Movement, error) {
	if err := f.fail("create"); err != nil {
		return models.Movement{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, m)
	mv := models.Movement{ID: "new", Descricao: m.Descricao, Valor: m.Valor, Categoria: m.Categoria, Data: m.Data, Tipo: m.Tipo}
	if m.Tipo == models.Receita {
		f.receitas = append(f.receitas, mv)
	} else {
		f.despesas = append(f.despesas, mv)
	}
	return mv, nil
}

func (f *fakeAPI) DeleteMovement(_ context.Context, kind models.Kind, id string) error {
	if err := f.fail("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, string(kind)+"/"+id)
	list := &f.receitas
	if kind == models.Despesa {
		list = &f.despesas
	}
	kept := (*list)[:0:0]
	for _, m := range *list {
		if string(m.ID) != id {
			kept = append(kept, m)
		}
	}
	*list = kept
	return nil
}

func (f *fakeAPI) setSummary(s models.Summary) {
	f.mu.Lock()
	f.summary = s
	f.mu.Unlock()
}

type recordingNotifier struct {
	mu       sync.Mutex
	success  []string
	failures []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	n.success = append(n.success, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Failure(msg string, _ error) {
	n.mu.Lock()
	n.failures = append(n.failures, msg)
	n.mu.Unlock()
}

func summaryOf(receitas, despesas int64) models.Summary {
	return models.Summary{
		TotalReceitas: models.AmountFromFloat(float64(receitas)),
		TotalDespesas: models.AmountFromFloat(float64(despesas)),
		Saldo:         models.AmountFromFloat(float64(receitas - despesas)),
	}
}

func newTestController(api API, opts Options) (*Controller, *recordingNotifier) {
	n := &recordingNotifier{}
	opts.Notifier = n
	logger, _ := logtest.NewNullLogger()
	opts.Log = logger
	return NewController(api, opts), n
}

func TestLoadAll_PublishesAllThree(t *testing.T) {
	api := &fakeAPI{
		summary:  summaryOf(1000, 250),
		receitas: []models.Movement{{ID: "r1", Data: "2024-01-05"}},
		despesas: []models.Movement{{ID: "d1", Data: "2024-01-06"}},
	}
	c, _ := newTestController(api, Options{})

	assert.Equal(t, Idle, c.View().State)

	view, err := c.LoadAll(context.Background(), models.Filter{Busca: "x"})
	require.NoError(t, err)

	assert.Equal(t, Loaded, view.State)
	require.NotNil(t, view.Summary)
	assert.Equal(t, "750", view.Summary.Saldo.String())
	assert.Len(t, view.Receitas, 1)
	assert.Len(t, view.Despesas, 1)
	assert.Equal(t, "x", view.Filter.Busca)
	assert.Equal(t, models.TypeTodos, view.Filter.Tipo)
	assert.NoError(t, view.LastError)
}

func TestLoadAll_SummaryIgnoresFiltersByDefault(t *testing.T) {
	api := &fakeAPI{}
	c, _ := newTestController(api, Options{})

	_, err := c.LoadAll(context.Background(), models.Filter{Inicio: "2024-01-01"})
	require.NoError(t, err)

	require.Len(t, api.summaryFs, 1)
	assert.Nil(t, api.summaryFs[0])
	for _, f := range api.listFs {
		assert.Equal(t, "2024-01-01", f.Inicio)
	}
}

func TestLoadAll_SummaryHonorsFilters(t *testing.T) {
	api := &fakeAPI{}
	c, _ := newTestController(api, Options{SummaryHonorsFilters: true})

	_, err := c.LoadAll(context.Background(), models.Filter{Inicio: "2024-01-01"})
	require.NoError(t, err)

	require.Len(t, api.summaryFs, 1)
	require.NotNil(t, api.summaryFs[0])
	assert.Equal(t, "2024-01-01", api.summaryFs[0].Inicio)
}

func TestLoadAll_FailureKeepsPreviousData(t *testing.T) {
	api := &fakeAPI{
		summary:  summaryOf(100, 40),
		receitas: []models.Movement{{ID: "r1", Data: "2024-01-05"}},
	}
	c, n := newTestController(api, Options{})

	_, err := c.LoadAll(context.Background(), models.Filter{})
	require.NoError(t, err)

	api.setSummary(summaryOf(999, 0))
	api.failOn = map[string]error{"despesa": errors.New("boom")}

	view, err := c.LoadAll(context.Background(), models.Filter{})
	require.Error(t, err)

	assert.Equal(t, LoadFailed, view.State)
	assert.ErrorContains(t, view.LastError, "boom")
	assert.Equal(t, "60", view.Summary.Saldo.String(), "summary must not be updated from a failed cycle")
	assert.Len(t, view.Receitas, 1)
	assert.Equal(t, []string{msgLoadFailed}, n.failures)
}

func TestLoadAll_StaleCycleIsDiscarded(t *testing.T) {
	api := &fakeAPI{summary: summaryOf(1, 0), gate: make(chan struct{})}
	c, _ := newTestController(api, Options{})

	type outcome struct {
		view View
		err  error
	}
	first := make(chan outcome, 1)
	go func() {
		v, err := c.LoadAll(context.Background(), models.Filter{Busca: "old"})
		first <- outcome{v, err}
	}()

	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.listFs) == 2
	}, time.Second, 5*time.Millisecond)

	// the newer cycle does not block
	api.mu.Lock()
	gate := api.gate
	api.gate = nil
	api.summary = summaryOf(2, 0)
	api.mu.Unlock()

	view, err := c.LoadAll(context.Background(), models.Filter{Busca: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", view.Filter.Busca)

	close(gate)
	old := <-first
	assert.ErrorIs(t, old.err, ErrSuperseded)

	final := c.View()
	assert.Equal(t, Loaded, final.State)
	assert.Equal(t, "new", final.Filter.Busca)
	assert.Equal(t, "2", final.Summary.Saldo.String())
}

func TestSetFilter_TipoOnlyDoesNotRefetch(t *testing.T) {
	api := &fakeAPI{
		receitas: []models.Movement{{ID: "r1", Data: "2024-01-05"}},
		despesas: []models.Movement{{ID: "d1", Data: "2024-01-06"}},
	}
	c, _ := newTestController(api, Options{})

	_, err := c.LoadAll(context.Background(), models.Filter{})
	require.NoError(t, err)
	calls := len(api.listFs)

	view, err := c.SetFilter(context.Background(), models.Filter{Tipo: models.TypeDespesa})
	require.NoError(t, err)
	assert.Equal(t, calls, len(api.listFs))
	assert.Equal(t, models.TypeDespesa, view.Filter.Tipo)

	recent := c.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, models.ID("d1"), recent[0].ID)

	_, err = c.SetFilter(context.Background(), models.Filter{Busca: "luz", Tipo: models.TypeDespesa})
	require.NoError(t, err)
	assert.Equal(t, calls+2, len(api.listFs))
	assert.Equal(t, models.TypeDespesa, c.View().Filter.Tipo)
}

func TestSetFilter_RefetchesAfterFailedLoad(t *testing.T) {
	api := &fakeAPI{
		receitas: []models.Movement{{ID: "r1", Data: "2024-01-05"}},
		despesas: []models.Movement{{ID: "d1", Data: "2024-01-06"}},
	}
	c, _ := newTestController(api, Options{})
	ctx := context.Background()

	_, err := c.LoadAll(ctx, models.Filter{})
	require.NoError(t, err)

	api.failOn = map[string]error{"summary": errors.New("503")}
	_, err = c.SetFilter(ctx, models.Filter{Busca: "luz"})
	require.Error(t, err)
	assert.Equal(t, LoadFailed, c.View().State)
	assert.Empty(t, c.View().Filter.Busca)

	api.failOn = nil
	calls := len(api.listFs)
	view, err := c.SetFilter(ctx, models.Filter{Busca: "luz", Tipo: models.TypeReceita})
	require.NoError(t, err)
	assert.Equal(t, calls+2, len(api.listFs))
	assert.Equal(t, Loaded, view.State)
	assert.Equal(t, "luz", view.Filter.Busca)
	assert.Equal(t, models.TypeReceita, view.Filter.Tipo)
	assert.Equal(t, "luz", api.listFs[len(api.listFs)-1].Busca)
}

func TestRecent_MergesAndCaps(t *testing.T) {
	api := &fakeAPI{
		receitas: []models.Movement{
			{ID: "r1", Data: "2024-01-01"},
			{ID: "r2", Data: "2024-01-03"},
			{ID: "r3", Data: "2024-01-05"},
			{ID: "r4", Data: "2024-01-07"},
		},
		despesas: []models.Movement{
			{ID: "d1", Data: "2024-01-02"},
			{ID: "d2", Data: "2024-01-04"},
			{ID: "d3", Data: "2024-01-06"},
		},
	}
	c, _ := newTestController(api, Options{})
	_, err := c.LoadAll(context.Background(), models.Filter{})
	require.NoError(t, err)

	var ids []models.ID
	for _, m := range c.Recent() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []models.ID{"r4", "d3", "r3", "d2", "r2", "d1"}, ids)

	_, err = c.SetFilter(context.Background(), models.Filter{Tipo: models.TypeDespesa})
	require.NoError(t, err)
	ids = nil
	for _, m := range c.Recent() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []models.ID{"d3", "d2", "d1"}, ids)
}

func TestSubmitMovement_InvalidNeverCallsAPI(t *testing.T) {
	api := &fakeAPI{}
	c, n := newTestController(api, Options{})

	_, err := c.SubmitMovement(context.Background(), validation.MovementInput{
		Descricao: "ab",
		Valor:     "0",
		Categoria: "Renda",
		Data:      "2024-01-05",
		Tipo:      "receita",
	})
	require.Error(t, err)

	var fieldErrs validation.Errors
	require.ErrorAs(t, err, &fieldErrs)
	assert.True(t, fieldErrs.Has("descricao"))
	assert.True(t, fieldErrs.Has("valor"))

	assert.Empty(t, api.created)
	assert.Equal(t, []string{msgReviewFields}, n.failures)
	assert.Len(t, c.View().FieldErrors, 2)
}

func TestSubmitMovement_CreatesAndReloads(t *testing.T) {
	api := &fakeAPI{}
	c, n := newTestController(api, Options{})

	created, err := c.SubmitMovement(context.Background(), validation.MovementInput{
		Descricao: "Salário",
		Valor:     "1000",
		Categoria: "Renda",
		Data:      "2024-01-05",
		Tipo:      "receita",
	})
	require.NoError(t, err)
	assert.Equal(t, models.Receita, created.Tipo)

	require.Len(t, api.created, 1)
	assert.Equal(t, "1000", api.created[0].Valor.String())
	assert.Equal(t, []string{"Receita adicionada!"}, n.success)

	view := c.View()
	assert.Equal(t, Loaded, view.State)
	assert.Len(t, view.Receitas, 1)
	assert.Empty(t, view.FieldErrors)
}

func TestSubmitMovement_APIFailure(t *testing.T) {
	api := &fakeAPI{failOn: map[string]error{"create": errors.New("down")}}
	c, n := newTestController(api, Options{})

	_, err := c.SubmitMovement(context.Background(), validation.MovementInput{
		Descricao: "Aluguel",
		Valor:     "1500",
		Categoria: "Casa",
		Data:      "2024-01-10",
		Tipo:      "despesa",
	})
	require.Error(t, err)
	assert.Equal(t, []string{msgSaveFailed}, n.failures)
	assert.Empty(t, api.listFs, "no reload after a failed create")
}

func TestDeleteMovement(t *testing.T) {
	api := &fakeAPI{
		receitas: []models.Movement{{ID: "r1", Data: "2024-01-02"}},
		despesas: []models.Movement{
			{ID: "d1", Data: "2024-01-03"},
			{ID: "d2", Data: "2024-01-04"},
		},
	}
	c, n := newTestController(api, Options{})
	ctx := context.Background()

	_, err := c.LoadAll(ctx, models.Filter{})
	require.NoError(t, err)

	require.NoError(t, c.DeleteMovement(ctx, models.Despesa, "d1"))
	assert.Equal(t, []string{"despesa/d1"}, api.deleted)
	assert.Equal(t, []string{"Despesa removida."}, n.success)
	assert.Len(t, api.listFs, 4)

	view := c.View()
	assert.Equal(t, Loaded, view.State)
	require.Len(t, view.Despesas, 1)
	assert.Equal(t, models.ID("d2"), view.Despesas[0].ID)
	for _, m := range c.Recent() {
		assert.NotEqual(t, models.ID("d1"), m.ID)
	}
	assert.Len(t, c.Recent(), 2)
}

func TestDeleteMovement_FailureKeepsView(t *testing.T) {
	api := &fakeAPI{
		receitas: []models.Movement{{ID: "r1", Data: "2024-01-02"}},
		despesas: []models.Movement{{ID: "d1", Data: "2024-01-03"}},
	}
	c, n := newTestController(api, Options{})
	ctx := context.Background()

	_, err := c.LoadAll(ctx, models.Filter{})
	require.NoError(t, err)
	before := c.View()
	calls := len(api.listFs)

	api.failOn = map[string]error{"delete": errors.New("404")}
	require.Error(t, c.DeleteMovement(ctx, models.Despesa, "d1"))

	assert.Equal(t, []string{msgDeleteFailed}, n.failures)
	assert.Empty(t, n.success)
	assert.Equal(t, calls, len(api.listFs))
	assert.Equal(t, before, c.View())
}

func TestLogNotifier(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	n := LogNotifier{Log: logger}

	n.Success("ok")
	n.Failure("bad", errors.New("x"))

	require.Len(t, hook.Entries, 2)
	assert.Equal(t, logrus.InfoLevel, hook.Entries[0].Level)
	assert.Equal(t, logrus.ErrorLevel, hook.Entries[1].Level)
	assert.Equal(t, "bad", hook.LastEntry().Message)
}
