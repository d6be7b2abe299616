package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/ecfr-analyzer/internal/logging"
	"github.com/ppiankov/ecfr-analyzer/internal/model"
	"github.com/ppiankov/ecfr-analyzer/internal/pipeline"
	"github.com/ppiankov/ecfr-analyzer/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeService records calls and returns canned values
type fakeService struct {
	mu       sync.Mutex
	results  *model.AnalysisResults
	report   *model.TitleReport
	series   []model.HistoricalChange
	err      error
	block    chan struct{}
	started  chan struct{}
	runDates []string
	gotDate  string
}

func (f *fakeService) Run(ctx context.Context, date string) (*model.AnalysisResults, error) {
	f.mu.Lock()
	f.runDates = append(f.runDates, date)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.results, f.err
}

func (f *fakeService) Title(ctx context.Context, date string, n int) (*model.TitleReport, error) {
	f.gotDate = date
	return f.report, f.err
}

func (f *fakeService) Latest(ctx context.Context) (*model.AnalysisResults, error) {
	return f.results, f.err
}

func (f *fakeService) History(ctx context.Context, n int) ([]model.HistoricalChange, error) {
	return f.series, f.err
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not JSON: %q", w.Body.String())
	}
	return w, env
}

func newRouter(svc Service) http.Handler {
	return NewServer(svc, logging.Discard(), time.Minute).Router()
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	newRouter(&fakeService{}).ServeHTTP(w, req)

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("GET /health = %d %s", w.Code, w.Body.String())
	}
}

func TestAnalyze_Validation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"empty body", "", CodeInvalidRequest},
		{"malformed json", "{date:", CodeInvalidRequest},
		{"missing date", `{}`, CodeValidation},
		{"bad format", `{"date": "01/02/2024"}`, CodeValidation},
		{"impossible date", `{"date": "2024-02-30"}`, CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			w, env := do(t, newRouter(svc), http.MethodPost, "/api/ecfr/analyze", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if env.Success || env.Error.Code != tt.wantCode {
				t.Errorf("envelope = %+v, want code %s", env, tt.wantCode)
			}
			if len(svc.runDates) != 0 {
				t.Error("service ran for invalid input")
			}
		})
	}
}

func TestAnalyze_Success(t *testing.T) {
	svc := &fakeService{results: &model.AnalysisResults{TotalWordCount: 42}}
	w, env := do(t, newRouter(svc), http.MethodPost, "/api/ecfr/analyze", `{"date": " 2024-01-01 "}`)

	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, envelope = %+v", w.Code, env)
	}

	var results model.AnalysisResults
	if err := json.Unmarshal(env.Data, &results); err != nil {
		t.Fatal(err)
	}
	if results.TotalWordCount != 42 {
		t.Errorf("TotalWordCount = %d", results.TotalWordCount)
	}
	if len(svc.runDates) != 1 || svc.runDates[0] != "2024-01-01" {
		t.Errorf("runDates = %v", svc.runDates)
	}
}

func TestAnalyze_PersistenceFailureKeepsResults(t *testing.T) {
	svc := &fakeService{
		results: &model.AnalysisResults{TotalWordCount: 7},
		err:     &model.PersistenceError{Op: "save", Err: errors.New("disk full")},
	}
	w, env := do(t, newRouter(svc), http.MethodPost, "/api/ecfr/analyze", `{"date": "2024-01-01"}`)

	if w.Code != http.StatusInternalServerError || env.Error.Code != CodePersistence {
		t.Fatalf("status = %d, envelope = %+v", w.Code, env)
	}
	if !strings.Contains(string(env.Data), `"totalWordCount":7`) {
		t.Errorf("data = %s, want built results", env.Data)
	}
}

func TestAnalyze_DeadlineDuringSaveKeepsResults(t *testing.T) {
	svc := &fakeService{
		results: &model.AnalysisResults{TotalWordCount: 9},
		err:     &model.PersistenceError{Op: "save", Err: fmt.Errorf("insert snapshot: %w", context.DeadlineExceeded)},
	}
	w, env := do(t, newRouter(svc), http.MethodPost, "/api/ecfr/analyze", `{"date": "2024-01-01"}`)

	if w.Code != http.StatusInternalServerError || env.Error.Code != CodePersistence {
		t.Fatalf("status = %d, envelope = %+v", w.Code, env)
	}
	if !strings.Contains(string(env.Data), `"totalWordCount":9`) {
		t.Errorf("data = %s, want built results", env.Data)
	}
}

func TestAnalyze_RejectsConcurrentRun(t *testing.T) {
	svc := &fakeService{
		results: &model.AnalysisResults{},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	router := newRouter(svc)

	done := make(chan int)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/ecfr/analyze", strings.NewReader(`{"date": "2024-01-01"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		done <- w.Code
	}()
	<-svc.started

	w, env := do(t, router, http.MethodPost, "/api/ecfr/analyze", `{"date": "2024-01-02"}`)
	if w.Code != http.StatusConflict || env.Error.Code != CodeAnalysisInProgress {
		t.Errorf("second run: status = %d, envelope = %+v", w.Code, env)
	}

	close(svc.block)
	if code := <-done; code != http.StatusOK {
		t.Errorf("first run status = %d", code)
	}
}

func TestAnalyze_Timeout(t *testing.T) {
	svc := &fakeService{block: make(chan struct{})}
	router := NewServer(svc, logging.Discard(), 10*time.Millisecond).Router()

	w, env := do(t, router, http.MethodPost, "/api/ecfr/analyze", `{"date": "2024-01-01"}`)
	if w.Code != http.StatusGatewayTimeout || env.Error.Code != CodeTimeout {
		t.Errorf("status = %d, envelope = %+v", w.Code, env)
	}
}

func TestGetLatest(t *testing.T) {
	w, env := do(t, newRouter(&fakeService{err: store.ErrNotFound}), http.MethodGet, "/api/ecfr", "")
	if w.Code != http.StatusNotFound || env.Error.Code != CodeNotFound {
		t.Errorf("empty store: status = %d, envelope = %+v", w.Code, env)
	}

	w, env = do(t, newRouter(&fakeService{results: &model.AnalysisResults{TotalWordCount: 9}}), http.MethodGet, "/api/ecfr", "")
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"totalWordCount":9`) {
		t.Errorf("status = %d, data = %s", w.Code, env.Data)
	}

	w, env = do(t, newRouter(&fakeService{err: &model.PersistenceError{Op: "load", Err: errors.New("down")}}), http.MethodGet, "/api/ecfr", "")
	if w.Code != http.StatusInternalServerError || env.Error.Code != CodePersistence {
		t.Errorf("store failure: status = %d, envelope = %+v", w.Code, env)
	}
}

func TestGetTitle(t *testing.T) {
	report := &model.TitleReport{Analysis: model.TitleAnalysis{TitleNumber: 7, WordCount: 3}}

	svc := &fakeService{report: report}
	w, env := do(t, newRouter(svc), http.MethodGet, "/api/ecfr/titles/7?date=2024-01-01", "")
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, envelope = %+v", w.Code, env)
	}
	if svc.gotDate != "2024-01-01" {
		t.Errorf("date = %q", svc.gotDate)
	}

	svc = &fakeService{report: report}
	do(t, newRouter(svc), http.MethodGet, "/api/ecfr/titles/7", "")
	if svc.gotDate != time.Now().UTC().Format("2006-01-02") {
		t.Errorf("default date = %q, want today", svc.gotDate)
	}
}

func TestGetTitle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not a number", "/api/ecfr/titles/abc", nil, http.StatusBadRequest, CodeValidation},
		{"out of range", "/api/ecfr/titles/51", nil, http.StatusBadRequest, CodeValidation},
		{"bad date", "/api/ecfr/titles/7?date=x", &model.ValidationError{Field: "date", Message: "bad"}, http.StatusBadRequest, CodeValidation},
		{"upstream", "/api/ecfr/titles/7", &model.FetchError{TitleNumber: 7, Err: errors.New("status 503")}, http.StatusBadGateway, CodeUpstream},
		{"unknown title", "/api/ecfr/titles/7", &model.TitleNotFoundError{TitleNumber: 7}, http.StatusNotFound, CodeTitleNotFound},
		{"other", "/api/ecfr/titles/7", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, newRouter(&fakeService{err: tt.err}), http.MethodGet, tt.path, "")
			if w.Code != tt.wantStatus || env.Error.Code != tt.wantCode {
				t.Errorf("status = %d code = %s, want %d %s", w.Code, env.Error.Code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	_, env := do(t, newRouter(&fakeService{err: errors.New("password=hunter2")}), http.MethodGet, "/api/ecfr", "")
	if strings.Contains(env.Error.Message, "hunter2") {
		t.Errorf("message leaked internal error: %q", env.Error.Message)
	}
}

func TestGetHistory(t *testing.T) {
	w, env := do(t, newRouter(&fakeService{}), http.MethodGet, "/api/ecfr/history/7", "")
	if w.Code != http.StatusOK || string(env.Data) != "[]" {
		t.Errorf("empty history: status = %d, data = %s", w.Code, env.Data)
	}

	series := []model.HistoricalChange{{Date: "2024-01-01", TitleNumber: 7, WordCount: 10}}
	w, env = do(t, newRouter(&fakeService{series: series}), http.MethodGet, "/api/ecfr/history/7", "")
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"wordCount":10`) {
		t.Errorf("status = %d, data = %s", w.Code, env.Data)
	}

	w, _ = do(t, newRouter(&fakeService{}), http.MethodGet, "/api/ecfr/history/0", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("title 0: status = %d", w.Code)
	}
}

func TestNoRoute(t *testing.T) {
	w, env := do(t, newRouter(&fakeService{}), http.MethodGet, "/api/unknown", "")
	if w.Code != http.StatusNotFound || env.Error.Code != CodeNotFound {
		t.Errorf("status = %d, envelope = %+v", w.Code, env)
	}
}

// wordSource serves every title as "shall" repeated title-number times
type wordSource struct{}

func (wordSource) FetchTitle(ctx context.Context, date string, n int) ([]byte, error) {
	return []byte(fmt.Sprintf("<ECFR><P>%s</P></ECFR>", strings.Repeat("shall ", n))), nil
}

func TestRouter_WithPipeline(t *testing.T) {
	cfg := model.DefaultConfig()
	p := pipeline.NewPipeline(cfg, store.NewMemoryStore(), pipeline.WithSource(wordSource{}), pipeline.WithLogger(logging.Discard()))
	router := newRouter(p)

	w, _ := do(t, router, http.MethodGet, "/api/ecfr", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("before any run: status = %d", w.Code)
	}

	w, env := do(t, router, http.MethodPost, "/api/ecfr/analyze", `{"date": "2024-01-01"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("analyze: status = %d, envelope = %+v", w.Code, env)
	}

	w, env = do(t, router, http.MethodGet, "/api/ecfr", "")
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"totalWordCount":1275`) {
		t.Errorf("latest: status = %d, data = %.200s", w.Code, env.Data)
	}

	w, env = do(t, router, http.MethodGet, "/api/ecfr/history/50", "")
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"wordCount":50`) {
		t.Errorf("history: status = %d, data = %s", w.Code, env.Data)
	}
}
