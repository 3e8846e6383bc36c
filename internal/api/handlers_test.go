package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/guregu/null.v3"

	"biodiversity/internal/db"
)

// fakeStore implements db.Store over in-memory maps.
type fakeStore struct {
	names    []string
	otus     []string
	metadata map[int64]*db.SampleMetadata
	wfreq    map[int64]*db.WashingFrequency
	values   map[string]*db.SampleValues
	err      error
	pingErr  error
	calls    int
}

func (f *fakeStore) SampleNames(ctx context.Context) ([]string, error) {
	f.calls++
	return f.names, f.err
}

func (f *fakeStore) OTUDescriptions(ctx context.Context) ([]string, error) {
	f.calls++
	return f.otus, f.err
}

func (f *fakeStore) SampleMetadata(ctx context.Context, id int64) (*db.SampleMetadata, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.metadata[id]
	if !ok {
		return nil, fmt.Errorf("metadata for sample %d: %w", id, db.ErrNotFound)
	}
	return m, nil
}

func (f *fakeStore) WashingFrequency(ctx context.Context, id int64) (*db.WashingFrequency, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	w, ok := f.wfreq[id]
	if !ok {
		return nil, fmt.Errorf("wfreq for sample %d: %w", id, db.ErrNotFound)
	}
	return w, nil
}

func (f *fakeStore) SampleValues(ctx context.Context, sample string) (*db.SampleValues, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[sample]
	if !ok {
		return nil, fmt.Errorf("%q: %w", sample, db.ErrUnknownSample)
	}
	return v, nil
}

func (f *fakeStore) Counts(ctx context.Context) (*db.TableCounts, error) {
	return &db.TableCounts{}, f.err
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) Close() error { return nil }

func newFakeStore() *fakeStore {
	return &fakeStore{
		names: []string{"BB_940", "BB_941"},
		otus:  []string{"Archaea;Euryarchaeota", "Bacteria"},
		metadata: map[int64]*db.SampleMetadata{
			940: {
				Age:       null.IntFrom(24),
				BBType:    null.StringFrom("I"),
				Ethnicity: null.StringFrom("Caucasian"),
				Gender:    null.StringFrom("F"),
				Location:  null.StringFrom("Beaufort/NC"),
				SampleID:  940,
			},
		},
		wfreq: map[int64]*db.WashingFrequency{
			940: {WFREQ: null.FloatFrom(2)},
		},
		values: map[string]*db.SampleValues{
			"BB_940": {OTUIDs: []int64{2, 1, 7}, SampleValues: []null.Float{null.FloatFrom(163), null.FloatFrom(0), {}}},
		},
	}
}

func newTestRouter(t *testing.T, store db.Store) *chi.Mux {
	t.Helper()
	logger := zaptest.NewLogger(t)
	h, err := NewHandlers(store, logger)
	require.NoError(t, err)
	return NewRouter(h, RouterOptions{Logger: logger})
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlersSuccess(t *testing.T) {
	r := newTestRouter(t, newFakeStore())

	tests := []struct {
		path string
		want string
	}{
		{"/names", `["BB_940","BB_941"]`},
		{"/otu", `["Archaea;Euryarchaeota","Bacteria"]`},
		{"/sample/BB_940", `{"AGE":24,"BBTYPE":"I","ETHNICITY":"Caucasian","GENDER":"F","LOCATION":"Beaufort/NC","SAMPLEID":940}`},
		{"/wfreq/BB_940", `{"WFREQ":2}`},
		{"/samples/BB_940", `{"otu_ids":[2,1,7],"sample_values":[163,0,null]}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, r, tt.path)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.want+"\n", rec.Body.String())
		})
	}
}

func TestHandlersClientErrors(t *testing.T) {
	r := newTestRouter(t, newFakeStore())

	tests := []struct {
		path     string
		wantCode int
		wantKind string
	}{
		{"/sample/BB940", http.StatusBadRequest, "BAD_REQUEST"},
		{"/sample/BB_abc", http.StatusBadRequest, "BAD_REQUEST"},
		{"/wfreq/BB_", http.StatusBadRequest, "BAD_REQUEST"},
		{"/sample/BB_999", http.StatusNotFound, "NOT_FOUND"},
		{"/wfreq/BB_999", http.StatusNotFound, "NOT_FOUND"},
		{"/samples/BB_999", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, r, tt.path)
			assert.Equal(t, tt.wantCode, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantKind, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestMalformedNameSkipsStore(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(t, store)

	get(t, r, "/sample/no-underscore")
	get(t, r, "/wfreq/no-underscore")
	assert.Zero(t, store.calls)
}

func TestHandlersStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("disk I/O error at /var/lib/secret.sqlite")
	r := newTestRouter(t, store)

	for _, path := range []string{"/names", "/otu", "/sample/BB_940", "/wfreq/BB_940", "/samples/BB_940"} {
		t.Run(path, func(t *testing.T) {
			rec := get(t, r, path)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "INTERNAL_ERROR", body.Code)
			assert.NotContains(t, body.Error, "secret")
		})
	}
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	store := newFakeStore()
	store.names = []string{}
	store.otus = []string{}
	r := newTestRouter(t, store)

	assert.Equal(t, "[]\n", get(t, r, "/names").Body.String())
	assert.Equal(t, "[]\n", get(t, r, "/otu").Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, newFakeStore())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/names", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(t, store)

	assert.Equal(t, http.StatusOK, get(t, r, "/healthz").Code)

	store.pingErr = errors.New("database is locked")
	assert.Equal(t, http.StatusServiceUnavailable, get(t, r, "/healthz").Code)
}

func TestIndexPage(t *testing.T) {
	r := newTestRouter(t, newFakeStore())

	rec := get(t, r, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<title>Belly Button Biodiversity</title>")
	assert.Contains(t, rec.Body.String(), `src="/static/js/plots.js"`)
}

func TestStaticAssets(t *testing.T) {
	r := newTestRouter(t, newFakeStore())

	rec := get(t, r, "/static/js/plots.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/samples/")
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))

	assert.Equal(t, http.StatusNotFound, get(t, r, "/static/js/missing.js").Code)
}
