package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/repository"
	"CupoCast/internal/services/features"
	"CupoCast/internal/services/risk"
	"CupoCast/internal/usecase"
	xhttp "CupoCast/pkg/http"
	xlogger "CupoCast/pkg/logger"
)

// flatProjector projects the window tail amount for every month.
type flatProjector struct {
	err       error
	lastMonth int
}

func (p *flatProjector) Forecast(_ context.Context, w features.Window, horizon, month int) (models.Projection, error) {
	p.lastMonth = month
	if p.err != nil {
		return nil, p.err
	}
	out := make(models.Projection, horizon)
	for i := range out {
		out[i] = models.MonthProjection{Month: "m", EstimatedAmount: w.Tail().Amount}
	}
	return out, nil
}

func (p *flatProjector) MaxHorizon() int { return 36 }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	e     *echo.Echo
	store *repository.MemoryHistoryStore
	proj  *flatProjector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := xlogger.NewNop()
	store := repository.NewMemoryHistoryStore()
	proj := &flatProjector{}

	projUC := usecase.NewProjectionUseCase(store, proj, nil, 0, nil, nil, log)
	riskUC := usecase.NewRiskUseCase(store, risk.NewClassifier(), nil, nil, log)
	userUC := usecase.NewUserUseCase(store, nil, nil, log)
	clock := func() time.Time { return time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC) }

	e := echo.New()
	xhttp.Handlers{
		NewHealthEchoHandler(log, store),
		NewProjectionsEchoHandler(log, projUC, clock),
		NewUsersEchoHandler(log, userUC, riskUC),
		NewRiskEchoHandler(log, riskUC),
	}.RegisterRoutes(e)
	return &fixture{e: e, store: store, proj: proj}
}

func (f *fixture) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (f *fixture) seed(t *testing.T, amounts ...float64) int64 {
	t.Helper()
	ctx := context.Background()
	u, err := f.store.CreateUser(ctx, "Ana", "ana@example.com")
	require.NoError(t, err)
	entries := make([]models.HistoryEntry, len(amounts))
	for i, a := range amounts {
		entries[i] = models.HistoryEntry{UserID: u.ID, Month: i + 1, Amount: a, LoanCount: 1, Score: 700}
	}
	require.NoError(t, f.store.AddHistory(ctx, entries))
	return u.ID
}

func TestProjectSuccessDefaultsHorizonAndMonth(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, 100, 200, 300)

	code, env := f.do(t, http.MethodPost, "/api/projections", `{"user_id":`+itoa(id)+`}`)
	require.Equal(t, http.StatusOK, code)

	var res models.ProjectionResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.ProjectionOK, res.Status)
	assert.Equal(t, 6, res.Horizon)
	assert.Len(t, res.Projection, 6)
	assert.Equal(t, 300.0, res.Projection[0].EstimatedAmount)
	assert.Equal(t, 3, f.proj.lastMonth)
	assert.Equal(t, 3, res.CurrentMonth)
}

func TestProjectInsufficientHistoryIsOK(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, 100)

	code, env := f.do(t, http.MethodPost, "/api/projections", `{"user_id":`+itoa(id)+`,"current_month":5}`)
	require.Equal(t, http.StatusOK, code)

	var res models.ProjectionResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.ProjectionInsufficientHistory, res.Status)
	assert.Empty(t, res.Projection)
}

func TestProjectValidationErrors(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, 100, 200, 300)

	cases := map[string]struct {
		body string
		want int
	}{
		"missing user":     {`{}`, http.StatusBadRequest},
		"bad month":        {`{"user_id":1,"current_month":13}`, http.StatusBadRequest},
		"horizon too big":  {`{"user_id":` + itoa(id) + `,"horizon":99}`, http.StatusBadRequest},
		"horizon 0":        {`{"user_id":` + itoa(id) + `,"horizon":0,"current_month":5}`, http.StatusBadRequest},
		"negative horizon": {`{"user_id":` + itoa(id) + `,"horizon":-2}`, http.StatusBadRequest},
		"month 0":          {`{"user_id":` + itoa(id) + `,"current_month":0}`, http.StatusBadRequest},
		"unknown user":     {`{"user_id":404}`, http.StatusNotFound},
		"malformed":        {`{"user_id":`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			code, env := f.do(t, http.MethodPost, "/api/projections", tc.body)
			assert.Equal(t, tc.want, code)
			assert.Equal(t, tc.want, env.Status)
		})
	}
}

func TestProjectModelFailures(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, 100, 200, 300)
	body := `{"user_id":` + itoa(id) + `}`

	f.proj.err = errors.Join(models.ErrScalerDimensionMismatch)
	code, _ := f.do(t, http.MethodPost, "/api/projections", body)
	assert.Equal(t, http.StatusInternalServerError, code)

	f.proj.err = errors.Join(models.ErrRegressorUnavailable)
	code, env := f.do(t, http.MethodPost, "/api/projections", body)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, string(env.Data), "forecast model is unavailable")

	f.proj.err = fmt.Errorf("%w: remote predict: %w", models.ErrRegressorUnavailable, context.DeadlineExceeded)
	code, env = f.do(t, http.MethodPost, "/api/projections", body)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, string(env.Data), "request timed out")
}

func TestSimulateProjection(t *testing.T) {
	f := newFixture(t)
	body := `{"history":[{"amount":10,"loan_count":1,"score":700},{"amount":20,"loan_count":1,"score":700},{"amount":30,"loan_count":1,"score":700}],"horizon":2,"current_month":12,"current_year":2026}`

	code, env := f.do(t, http.MethodPost, "/api/projections/simulate", body)
	require.Equal(t, http.StatusOK, code)
	var res models.ProjectionResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res.Projection, 2)
	assert.Equal(t, 30.0, res.Projection[1].EstimatedAmount)

	code, _ = f.do(t, http.MethodPost, "/api/projections/simulate", `{"history":[{"amount":-1}]}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSimulateRejectsExplicitZeroes(t *testing.T) {
	f := newFixture(t)
	history := `"history":[{"amount":10,"score":700},{"amount":20,"score":700},{"amount":30,"score":700}]`

	code, env := f.do(t, http.MethodPost, "/api/projections/simulate", `{`+history+`,"horizon":0,"current_month":5}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), `"field":"horizon"`)

	code, env = f.do(t, http.MethodPost, "/api/projections/simulate", `{`+history+`,"current_month":0}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), `"field":"current_month"`)

	code, env = f.do(t, http.MethodPost, "/api/projections/simulate", `{`+history+`}`)
	require.Equal(t, http.StatusOK, code)
	var res models.ProjectionResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.DefaultHorizon, res.Horizon)
	assert.Equal(t, 3, res.CurrentMonth)
}

func TestUsersFlow(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/users", `{"name":"Luis","email":"luis@example.com"}`)
	require.Equal(t, http.StatusCreated, code)
	var u models.User
	require.NoError(t, json.Unmarshal(env.Data, &u))
	require.NotZero(t, u.ID)

	code, _ = f.do(t, http.MethodPost, "/api/users", `{"name":"Luis","email":"luis@example.com"}`)
	assert.Equal(t, http.StatusConflict, code)
	code, _ = f.do(t, http.MethodPost, "/api/users", `{"name":"Luis","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	path := "/api/users/" + itoa(u.ID) + "/history"
	code, _ = f.do(t, http.MethodPost, path, `{"entries":[{"month":2,"amount":20,"loan_count":1,"score":650},{"month":1,"amount":10,"loan_count":1,"score":640}]}`)
	require.Equal(t, http.StatusCreated, code)

	code, env = f.do(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Rows  []models.HistoryEntry `json:"rows"`
		Total int64                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.EqualValues(t, 2, list.Total)
	assert.Equal(t, 1, list.Rows[0].Month)

	code, env = f.do(t, http.MethodGet, "/api/users?with_history=true", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Zero(t, list.Total)

	code, _ = f.do(t, http.MethodGet, "/api/users/404/history", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = f.do(t, http.MethodGet, "/api/users/abc/history", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRiskEndpoints(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, 300, 200, 100)

	code, env := f.do(t, http.MethodGet, "/api/users/"+itoa(id)+"/risk", "")
	require.Equal(t, http.StatusOK, code)
	var res models.RiskAssessment
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.RiskHigh, res.Level)

	body := `{"history":[{"amount":100,"score":650},{"amount":110,"score":660},{"amount":120,"score":670}]}`
	code, env = f.do(t, http.MethodPost, "/api/risk/evaluate", body)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.RiskLow, res.Level)

	code, env = f.do(t, http.MethodPost, "/api/risk/evaluate", `{"history":[]}`)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, models.RiskInsufficientHistory, res.Level)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	code, _ := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
