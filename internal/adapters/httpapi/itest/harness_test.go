package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Overland-East-Bay/ride-hail-api/internal/adapters/httpapi"
	memaccountrepo "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/memory/accountrepo"
	memclock "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/memory/clock"
	memevents "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/memory/events"
	memidempotency "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/memory/idempotency"
	memriderepo "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/memory/riderepo"
	"github.com/Overland-East-Bay/ride-hail-api/internal/app/accounts"
	"github.com/Overland-East-Bay/ride-hail-api/internal/app/rides"
	"github.com/Overland-East-Bay/ride-hail-api/internal/platform/logger"
	"github.com/Overland-East-Bay/ride-hail-api/internal/platform/metrics"
	accountrepoport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/accountrepo"
	idempotencyport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/idempotency"
	riderepoport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/riderepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

type stores struct {
	accounts accountrepoport.Repository
	rides    riderepoport.Repository
	idem     idempotencyport.Store
}

// openPostgresStores is set by the integration-tagged postgres harness.
var openPostgresStores func(t *testing.T) stores

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
	rides   riderepoport.Repository
	events  *memevents.Recorder
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var st stores
	switch b {
	case backendPostgres:
		if openPostgresStores == nil {
			t.Skip("postgres backend requires -tags=integration")
		}
		st = openPostgresStores(t)
	case backendMemory:
		st = stores{
			accounts: memaccountrepo.NewRepo(),
			rides:    memriderepo.NewRepo(),
			idem:     memidempotency.NewStore(),
		}
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	log := logger.Discard()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	rec := memevents.NewRecorder()

	accountSvc := accounts.NewService(st.accounts, clk, accounts.WithLogger(log), accounts.WithMetrics(m), accounts.WithPublisher(rec))
	rideSvc := rides.NewService(st.rides, st.accounts, clk, rides.WithLogger(log), rides.WithMetrics(m), rides.WithPublisher(rec))
	api := httpapi.NewServer(accountSvc, rideSvc, st.idem, httpapi.WithServerLogger(log), httpapi.WithServerMetrics(m))
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{Logger: log, Gatherer: reg})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
		rides:   st.rides,
		events:  rec,
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, headers map[string]string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestId string `json:"requestId"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireStatus(t *testing.T, status int, body []byte, want int) {
	t.Helper()
	if status != want {
		t.Fatalf("status=%d want=%d body=%s", status, want, string(body))
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, status, body, wantStatus)
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
	if got.Error.RequestId == "" {
		t.Fatalf("expected requestId in error body: %s", string(body))
	}
}
