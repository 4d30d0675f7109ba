package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio-advisor/internal/advisor"
	"portfolio-advisor/internal/allocation"
	"portfolio-advisor/internal/catalog"
	"portfolio-advisor/internal/domain"
	"portfolio-advisor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

const testID = "0b7e7d2c-3f58-4f0e-a1c4-6a0d0a4c2d11"

const validBody = `{"answers":{
	"age":["30_44"],"horizon":["5_10y"],"market_drop":["hold"],"risk_attitude":["moderate"],
	"return_goal":["growth"],"income_stability":["stable"],"emergency_fund":["3_6m"],
	"investable_share":["10_25"],"debt_level":["low"],"experience":["intermediate"],
	"liquidity_need":["medium"],"goals":["retirement"],"interests":["esg"]}}`

type fixture struct {
	router *gin.Engine
	repo   *stubPortfolioRepo
	store  *stubConversationStore
	llm    *stubLLM
}

func newFixture(t *testing.T, withAdvisor bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")

	f := &fixture{
		repo:  &stubPortfolioRepo{byID: map[string]*domain.Portfolio{}},
		store: &stubConversationStore{},
		llm:   &stubLLM{reply: "Stay diversified."},
	}
	engine := allocation.NewEngine(func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) })
	portfolios := service.NewPortfolioService(tracer, f.repo, &stubCache{}, engine, catalog.Default())

	var adv *advisor.AdvisorService
	if withAdvisor {
		adv = advisor.NewAdvisorService(tracer, f.llm, portfolios, f.store, 10)
	}

	f.router = gin.New()
	New(tracer, portfolios, adv, catalog.Default()).RegisterRoutes(f.router)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) seed() *domain.Portfolio {
	p := &domain.Portfolio{
		ID:         testID,
		Profile:    domain.InvestorProfile{Interests: []string{}},
		Allocation: domain.AssetAllocation{Equity: 50, Bonds: 35, Cash: 8, Other: 7, HoldingsCount: 5},
	}
	f.repo.byID[testID] = p
	return p
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	w := newFixture(t, false).do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetQuestionnaire(t *testing.T) {
	w := newFixture(t, false).do(http.MethodGet, "/api/questionnaire", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Questions []struct {
			ID      string `json:"id"`
			Options []struct {
				Code   string `json:"code"`
				Points *int   `json:"points"`
			} `json:"options"`
		} `json:"questions"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Questions, 14)
	assert.Equal(t, "age", resp.Questions[0].ID)
	assert.Nil(t, resp.Questions[0].Options[0].Points)
}

func TestSubmitQuestionnaireCreatesPortfolio(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(http.MethodPost, "/api/questionnaire", validBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p domain.Portfolio
	decode(t, w, &p)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.Allocation.IsNormalized())
	assert.Equal(t, []string{domain.InterestESG}, p.Profile.Interests)
	assert.Contains(t, f.repo.byID, p.ID)
}

func TestSubmitQuestionnaireValidationErrors(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodPost, "/api/questionnaire", `{"answers":{"age":["30_44","45_59"],"shoe_size":["42"]}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Problems []string `json:"problems"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "unknown question: shoe_size", resp.Problems[0])
	assert.Contains(t, resp.Problems[1], "accepts a single answer")

	w = f.do(http.MethodPost, "/api/questionnaire", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/questionnaire", `{"answers":{"age":42}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var bad struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	decode(t, w, &bad)
	assert.Contains(t, bad.Error, `"answers"`)
	assert.Contains(t, bad.Detail, `answer "age"`)
}

func TestSubmitQuestionnaireAcceptsBareStringAnswers(t *testing.T) {
	f := newFixture(t, false)
	body := strings.NewReplacer(`["30_44"]`, `"30_44"`, `["hold"]`, `"hold"`).Replace(validBody)

	w := f.do(http.MethodPost, "/api/questionnaire", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p domain.Portfolio
	decode(t, w, &p)
	assert.Equal(t, []string{"30_44"}, p.Answers["age"])
}

func TestPreviewProfileDoesNotStore(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(http.MethodPost, "/api/profile/preview", validBody)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Profile    domain.InvestorProfile `json:"profile"`
		Allocation domain.AssetAllocation `json:"allocation"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.Allocation.IsNormalized())
	assert.NotEmpty(t, resp.Allocation.Audit.Tier)
	assert.Empty(t, f.repo.byID)
}

func TestPortfolioEndpoints(t *testing.T) {
	f := newFixture(t, false)
	f.seed()

	w := f.do(http.MethodGet, "/api/portfolios/"+testID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/portfolios/"+testID+"/allocation", "")
	require.Equal(t, http.StatusOK, w.Code)
	var alloc domain.AssetAllocation
	decode(t, w, &alloc)
	assert.Equal(t, 50.0, alloc.Equity)

	w = f.do(http.MethodGet, "/api/portfolios/"+testID+"/etfs", "")
	require.Equal(t, http.StatusOK, w.Code)
	var etfs struct {
		Holdings []domain.RecommendedHolding `json:"holdings"`
	}
	decode(t, w, &etfs)
	assert.Len(t, etfs.Holdings, 5)
}

func TestPortfolioNotFound(t *testing.T) {
	f := newFixture(t, false)

	for _, path := range []string{
		"/api/portfolios/" + testID,
		"/api/portfolios/not-a-uuid/allocation",
		"/api/portfolios/" + testID + "/etfs",
	} {
		w := f.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestChatEndpoints(t *testing.T) {
	f := newFixture(t, true)
	f.seed()

	w := f.do(http.MethodPost, "/api/portfolios/"+testID+"/messages", `{"message":"Why bonds?"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"reply":"Stay diversified."}`, w.Body.String())
	assert.Len(t, f.store.messages, 2)

	w = f.do(http.MethodGet, "/api/portfolios/"+testID+"/messages?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Messages []domain.PortfolioMessage `json:"messages"`
	}
	decode(t, w, &resp)
	assert.Len(t, resp.Messages, 2)
	assert.Equal(t, 5, f.store.lastLimit)

	w = f.do(http.MethodPost, "/api/portfolios/"+testID+"/messages", `{"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, "/api/portfolios/"+testID+"/messages?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatUnavailableWithoutAdvisor(t *testing.T) {
	f := newFixture(t, false)
	f.seed()

	w := f.do(http.MethodPost, "/api/portfolios/"+testID+"/messages", `{"message":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = f.do(http.MethodGet, "/api/portfolios/"+testID+"/messages", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestETFEndpoints(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodGet, "/api/etfs?asset_class=cash&limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		ETFs []domain.ETF `json:"etfs"`
	}
	decode(t, w, &list)
	require.Len(t, list.ETFs, 2)
	assert.Equal(t, "SGOV", list.ETFs[0].Ticker)

	w = f.do(http.MethodGet, "/api/etfs?asset_class=crypto", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, "/api/etfs/vti", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/etfs/NOPE", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/api/etfs/compare?tickers=VTI,BND", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cmp domain.ETFComparison
	decode(t, w, &cmp)
	assert.Equal(t, "BND", cmp.MostDiversified)

	w = f.do(http.MethodGet, "/api/etfs/compare?tickers=VTI", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- stubs ---

type stubPortfolioRepo struct {
	byID map[string]*domain.Portfolio
}

func (s *stubPortfolioRepo) Create(ctx context.Context, p *domain.Portfolio) error {
	s.byID[p.ID] = p
	return nil
}

func (s *stubPortfolioRepo) Get(ctx context.Context, id string) (*domain.Portfolio, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPortfolioNotFound
}

type stubCache struct{}

func (stubCache) Get(ctx context.Context, id string) (domain.AssetAllocation, bool, error) {
	return domain.AssetAllocation{}, false, nil
}

func (stubCache) Set(ctx context.Context, id string, alloc domain.AssetAllocation) error {
	return nil
}

type stubConversationStore struct {
	messages  []domain.PortfolioMessage
	lastLimit int
}

func (s *stubConversationStore) AppendMessage(ctx context.Context, portfolioID string, sender domain.Sender, content string) error {
	s.messages = append(s.messages, domain.PortfolioMessage{PortfolioID: portfolioID, Sender: sender, Content: content})
	return nil
}

func (s *stubConversationStore) RecentMessages(ctx context.Context, portfolioID string, limit int) ([]domain.PortfolioMessage, error) {
	s.lastLimit = limit
	return s.messages, nil
}

type stubLLM struct {
	reply string
}

func (s *stubLLM) ChatCompletion(ctx context.Context, messages []advisor.Message) (string, error) {
	return s.reply, nil
}
