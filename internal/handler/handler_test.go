package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netograph/internal/domain"
	"netograph/internal/repository"
	"netograph/internal/repository/sqlite"
	"netograph/internal/service"
	"netograph/internal/topology"
)

func newAPI(t *testing.T) (*http.ServeMux, *sqlite.Repository) {
	t.Helper()
	repo, err := sqlite.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	bus := service.NewEventBus()
	api := New(
		service.NewTopologyService(repo, bus),
		service.NewCorrelationService(repo, repo, bus),
		service.NewIngestService(repo, bus),
	)
	mux := http.NewServeMux()
	api.Routes(mux)
	return mux, repo
}

func seedHost(t *testing.T, repo *sqlite.Repository, id, ip string) *domain.Host {
	t.Helper()
	h := domain.NewHost(id, ip)
	h.Hostname = "host-" + id
	require.NoError(t, repo.CreateHost(context.Background(), h))
	return h
}

func doJSON(t *testing.T, mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	mux, _ := newAPI(t)
	rec := doJSON(t, mux, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTopologyEndpoint(t *testing.T) {
	mux, repo := newAPI(t)
	seedHost(t, repo, "h1", "10.0.1.10")
	seedHost(t, repo, "h2", "10.0.1.20")

	t.Run("default cytoscape format", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/topology", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var graph topology.CytoscapeGraph
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &graph))
		assert.Len(t, graph.Elements.Nodes, 3, "two hosts and one subnet compound")
		assert.Equal(t, 3, graph.Stats.TotalNodes)
	})

	t.Run("legacy format", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/topology?format=legacy", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var graph topology.LegacyGraph
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &graph))
		assert.Len(t, graph.Nodes, 2)
		assert.Contains(t, graph.Groups, "subnet_10.0.1.0/24")
	})

	t.Run("invalid option rejected", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/topology?subnet_prefix=99", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid internet mode rejected", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/topology?show_internet=sometimes", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHostEndpoints(t *testing.T) {
	mux, repo := newAPI(t)
	seedHost(t, repo, "h1", "10.0.1.10")

	t.Run("list", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/hosts", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var hosts []domain.Host
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hosts))
		require.Len(t, hosts, 1)
		assert.Equal(t, "h1", hosts[0].ID)
	})

	t.Run("detail", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/hosts/h1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var detail struct {
			Host      *domain.Host      `json:"host"`
			Conflicts []domain.Conflict `json:"conflicts"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		require.NotNil(t, detail.Host)
		assert.Equal(t, "10.0.1.10", detail.Host.IPAddress)
	})

	t.Run("missing host is 404", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/hosts/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete is a soft delete", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodDelete, "/api/hosts/h1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var deleted domain.Host
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
		assert.False(t, deleted.IsActive)

		stored, err := repo.GetHost(context.Background(), "h1")
		require.NoError(t, err)
		require.NotNil(t, stored, "row must survive the delete")
		assert.False(t, stored.IsActive)

		rec = doJSON(t, mux, http.MethodDelete, "/api/hosts/ghost", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad vlan filter", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/hosts?vlan=abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMergeEndpoint(t *testing.T) {
	mux, repo := newAPI(t)
	seedHost(t, repo, "h1", "10.0.1.10")
	seedHost(t, repo, "h2", "10.0.1.20")

	t.Run("merge deactivates secondary", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/hosts/h1/merge", `{"secondary_id":"h2"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		secondary, err := repo.GetHost(context.Background(), "h2")
		require.NoError(t, err)
		require.NotNil(t, secondary)
		assert.False(t, secondary.IsActive)
	})

	t.Run("missing secondary id", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/hosts/h1/merge", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown host is 404", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/hosts/h1/merge", `{"secondary_id":"ghost"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestConflictEndpoints(t *testing.T) {
	mux, repo := newAPI(t)
	ctx := context.Background()

	conflict := domain.NewConflict("c1", "h1", domain.ConflictMACMismatch, "mac_address",
		[]domain.ConflictValue{
			{Value: "aa:bb:cc:dd:ee:ff", Source: "nmap", ObservedAt: time.Now()},
			{Value: "11:22:33:44:55:66", Source: "arp_table", ObservedAt: time.Now()},
		})
	require.NoError(t, repo.CreateConflict(ctx, conflict))

	t.Run("list defaults to unresolved", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/conflicts", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var conflicts []domain.Conflict
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflicts))
		assert.Len(t, conflicts, 1)
	})

	t.Run("resolve", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/conflicts/c1/resolve", `{"resolution":"kept nmap value"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resolved domain.Conflict
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
		assert.True(t, resolved.Resolved)
		assert.Equal(t, "operator", resolved.ResolvedBy, "missing resolved_by falls back to operator")

		list := doJSON(t, mux, http.MethodGet, "/api/conflicts", "")
		var open []domain.Conflict
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &open))
		assert.Empty(t, open)
	})

	t.Run("resolve unknown is 404", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/conflicts/ghost/resolve", `{"resolution":"x"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestImportAndCorrelate(t *testing.T) {
	mux, repo := newAPI(t)

	body := `{"source":"manual","hosts":[
		{"ip":"10.0.1.10","hostname":"web1"},
		{"ip":"10.0.1.10","mac":"aa:bb:cc:dd:ee:ff"}
	]}`
	rec := doJSON(t, mux, http.MethodPost, "/api/import/hosts", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Imported int    `json:"imported"`
		Source   string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, "manual", resp.Source)

	run := doJSON(t, mux, http.MethodPost, "/api/correlate", "")
	require.Equal(t, http.StatusOK, run.Code, run.Body.String())

	hosts, err := repo.ListHosts(context.Background(), repository.HostFilter{})
	require.NoError(t, err)
	assert.Len(t, hosts, 1, "two records for one ip collapse to one active host")
}

func TestImportEmptyBody(t *testing.T) {
	mux, _ := newAPI(t)
	rec := doJSON(t, mux, http.MethodPost, "/api/import/nmap", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiddlewareChain(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	t.Run("recover turns panic into 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Chain(inner, Recover).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		req := httptest.NewRequest(http.MethodOptions, "/api/hosts", nil)
		rec := httptest.NewRecorder()
		Chain(ok, CORS).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
