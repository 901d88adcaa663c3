package category_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fintrack/internal/category"
	"github.com/MrJamesThe3rd/fintrack/internal/category/store"
	handler "github.com/MrJamesThe3rd/fintrack/internal/http/category"
	"github.com/MrJamesThe3rd/fintrack/internal/seed"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Route("/categories", handler.NewHandler(category.NewService(store.NewMemory(seed.Categories()...))).Routes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

func send(t *testing.T, method, url, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

type categoryBody struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

func TestHandler_List(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantLen  int
	}{
		{name: "all", query: "", wantCode: http.StatusOK, wantLen: 12},
		{name: "income", query: "?kind=income", wantCode: http.StatusOK, wantLen: 5},
		{name: "expense", query: "?kind=expense", wantCode: http.StatusOK, wantLen: 9},
		{name: "unknown kind", query: "?kind=both", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []categoryBody

			code := send(t, http.MethodGet, srv.URL+"/categories/"+tt.query, "", &got)
			require.Equal(t, tt.wantCode, code)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestHandler_CreateUpdateDelete(t *testing.T) {
	srv := newServer(t)

	var created categoryBody
	code := send(t, http.MethodPost, srv.URL+"/categories/", `{"name":" Pets ","color":"#112233","type":"expense"}`, &created)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Pets", created.Name)
	assert.Equal(t, category.DefaultIcon, created.Icon)

	var updated categoryBody
	code = send(t, http.MethodPatch, srv.URL+"/categories/"+created.ID, `{"color":"#445566"}`, &updated)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "#445566", updated.Color)
	assert.Equal(t, "Pets", updated.Name)

	code = send(t, http.MethodPut, srv.URL+"/categories/"+created.ID, `{"color":"blue"}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = send(t, http.MethodDelete, srv.URL+"/categories/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, code)

	code = send(t, http.MethodDelete, srv.URL+"/categories/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandler_CreateRejectsInvalid(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "empty name", body: `{"name":"  ","color":"#112233","type":"expense"}`},
		{name: "bad color", body: `{"name":"Pets","color":"#12","type":"expense"}`},
		{name: "bad kind", body: `{"name":"Pets","color":"#112233","type":"transfer"}`},
		{name: "bad json", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, send(t, http.MethodPost, srv.URL+"/categories/", tt.body, nil))
		})
	}
}
