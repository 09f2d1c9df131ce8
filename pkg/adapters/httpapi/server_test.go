package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/httpapi"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func showHandler(ctx context.Context, call *domain.Call) (*domain.PageUpdate, error) {
	return call.Render(ctx, domain.RenderOptions{SkipChildren: true})
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	kind := domain.NewKind("counter").
		State("display", showHandler).
		State("bumped", showHandler).
		OnEvent("bump", "bumped").
		Start("display").
		MustBuild()

	reg := registry.New()
	require.NoError(t, reg.Register(kind))

	templater := ports.TemplaterFunc(func(ctx context.Context, view string, locals map[string]any) (string, error) {
		return "<p>" + view + "</p>", nil
	})
	engine := runtime.NewEngine(templater)

	sessions := session.NewManager(memory.NewStore(), reg)
	seeds := map[string]session.SeedFunc{
		"counter": func() (*domain.Widget, error) {
			return domain.NewWidget("root", kind)
		},
	}

	return httpapi.NewHandler(engine, sessions, seeds, httpapi.WithVersion("test"))
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_CreateTree(t *testing.T) {
	handler := newTestServer(t)

	rec := postJSON(t, handler, "/trees", httpapi.CreateTreeRequest{Kind: "counter", TreeID: "t1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp httpapi.CreateTreeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "t1", resp.TreeID)
	require.NotNil(t, resp.Update)
	assert.Equal(t, domain.ReplaceWhole, resp.Update.Mode)
	assert.Equal(t, "root", resp.Update.Target)
	assert.Contains(t, resp.Update.Content.Body, "<p>display</p>")
}

func TestServer_CreateTree_GeneratesID(t *testing.T) {
	handler := newTestServer(t)

	rec := postJSON(t, handler, "/trees", httpapi.CreateTreeRequest{Kind: "counter"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpapi.CreateTreeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.TreeID)
}

func TestServer_CreateTree_UnknownKind(t *testing.T) {
	handler := newTestServer(t)

	rec := postJSON(t, handler, "/trees", httpapi.CreateTreeRequest{Kind: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_DispatchEvent(t *testing.T) {
	handler := newTestServer(t)

	rec := postJSON(t, handler, "/trees", httpapi.CreateTreeRequest{Kind: "counter", TreeID: "t1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, handler, "/trees/t1/events", httpapi.EventRequest{
		Source: "root",
		Type:   "bump",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var update domain.PageUpdate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &update))
	assert.Contains(t, update.Content.Body, "<p>bumped</p>")

	// The new state survived the roundtrip through the store.
	req := httptest.NewRequest(http.MethodGet, "/trees/t1", nil)
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, req)
	require.Equal(t, http.StatusOK, getRec.Code)
	assert.Contains(t, getRec.Body.String(), `"current_state":"bumped"`)
}

func TestServer_DispatchEvent_Unhandled(t *testing.T) {
	handler := newTestServer(t)

	rec := postJSON(t, handler, "/trees", httpapi.CreateTreeRequest{Kind: "counter", TreeID: "t1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, handler, "/trees/t1/events", httpapi.EventRequest{
		Source: "root",
		Type:   "unknown-event",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_DispatchEvent_MissingType(t *testing.T) {
	handler := newTestServer(t)

	rec := postJSON(t, handler, "/trees/t1/events", httpapi.EventRequest{Source: "root"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_RenderWidget(t *testing.T) {
	handler := newTestServer(t)

	rec := postJSON(t, handler, "/trees", httpapi.CreateTreeRequest{Kind: "counter", TreeID: "t1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, handler, "/trees/t1/render", httpapi.RenderRequest{View: "custom"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var update domain.PageUpdate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &update))
	assert.Contains(t, update.Content.Body, "<p>custom</p>")
}

func TestServer_RenderWidget_MissingTree(t *testing.T) {
	handler := newTestServer(t)

	rec := postJSON(t, handler, "/trees/missing/render", httpapi.RenderRequest{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RenderWidget_MissingWidget(t *testing.T) {
	handler := newTestServer(t)

	rec := postJSON(t, handler, "/trees", httpapi.CreateTreeRequest{Kind: "counter", TreeID: "t1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, handler, "/trees/t1/render", httpapi.RenderRequest{WidgetID: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_DeleteAndList(t *testing.T) {
	handler := newTestServer(t)

	rec := postJSON(t, handler, "/trees", httpapi.CreateTreeRequest{Kind: "counter", TreeID: "t1"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/trees", nil)
	listRec := httptest.NewRecorder()
	handler.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)
	assert.Contains(t, listRec.Body.String(), "t1")

	req = httptest.NewRequest(http.MethodDelete, "/trees/t1", nil)
	delRec := httptest.NewRecorder()
	handler.ServeHTTP(delRec, req)
	assert.Equal(t, http.StatusNoContent, delRec.Code)

	req = httptest.NewRequest(http.MethodGet, "/trees/t1", nil)
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, req)
	assert.Equal(t, http.StatusNotFound, getRec.Code)
}

func TestServer_Health(t *testing.T) {
	handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestQueryAddressBuilder(t *testing.T) {
	builder := httpapi.QueryAddressBuilder{BasePath: "/trees/t1/events"}

	url, err := builder.BuildURL(&domain.EventAddress{
		Source: "root",
		Type:   "bump",
		Params: map[string]any{"count": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "/trees/t1/events?count=2&source=root&type=bump", url)

	_, err = builder.BuildURL(&domain.EventAddress{Source: "root"})
	assert.ErrorIs(t, err, domain.ErrMissingEventType)
}
