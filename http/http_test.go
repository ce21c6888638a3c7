package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoanBrand/AlloyCalc/descriptor"
	"github.com/RoanBrand/AlloyCalc/element"
	"github.com/RoanBrand/AlloyCalc/sample"
)

func newTestServer(t *testing.T, results ResultGetter) http.Handler {
	t.Helper()
	ts, err := element.Default()
	require.NoError(t, err)
	return NewServer(descriptor.NewEngineFromTables(ts), ts.Elements, results, 2).Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDescriptorEndpoint(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(h, http.MethodPost, "/descriptors", `{"elements":["Co","Cr","Fe","Mn","Ni"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res descriptor.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.InDelta(t, -4.16, res.MixingEnthalpy, 1e-9)
	assert.InDelta(t, descriptor.GasConstant*1.6094379124341003, res.MixingEntropy, 1e-9)
	assert.True(t, res.Price.IsKnown())
}

func TestDescriptorEndpointErrors(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"bad json", `{"elements":`, http.StatusBadRequest},
		{"unknown field", `{"elements":["Fe"],"foo":1}`, http.StatusBadRequest},
		{"no elements", `{"elements":[]}`, http.StatusBadRequest},
		{"negative ratio", `{"elements":["Fe","Ni"],"ratios":[1,-1]}`, http.StatusBadRequest},
		{"zero sum", `{"elements":["Fe","Ni"],"ratios":[0,0]}`, http.StatusBadRequest},
		{"unknown element", `{"elements":["Fe","Xx"]}`, http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/descriptors", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestBatchEndpoint(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(h, http.MethodPost, "/descriptors/batch", `{"compositions":[
		{"name":"a","elements":["Fe","Ni"],"ratios":[1,1]},
		{"name":"b","elements":["Fe","Xx"]},
		{"name":"c","elements":["W"]}
	]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rows []batchResponseRow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 3)

	assert.Equal(t, "a", rows[0].Name)
	require.NotNil(t, rows[0].Result)
	assert.InDelta(t, -2, rows[0].Result.MixingEnthalpy, 1e-9)

	assert.Nil(t, rows[1].Result)
	assert.Contains(t, rows[1].Error, "Xx")

	require.NotNil(t, rows[2].Result)
	assert.Zero(t, rows[2].Result.MixingEntropy)
}

func TestElementsEndpoint(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(h, http.MethodGet, "/elements", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var symbols []string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&symbols))
	assert.Len(t, symbols, 16)
	assert.Contains(t, symbols, "Fe")
}

func TestResultEndpoint(t *testing.T) {
	rec := do(newTestServer(t, nil), http.MethodGet, "/results", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	h := newTestServer(t, func(ctx context.Context) ([]sample.Computed, error) {
		return []sample.Computed{{Record: sample.Record{SampleName: "H1001T"}, Error: "no usable results"}}, nil
	})
	rec = do(h, http.MethodGet, "/results", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sample_name":"H1001T"`)

	h = newTestServer(t, func(ctx context.Context) ([]sample.Computed, error) {
		return nil, errors.New("database locked")
	})
	rec = do(h, http.MethodGet, "/results", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "database locked")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, nil)
	do(h, http.MethodPost, "/descriptors", `{"elements":["Fe"]}`)

	rec := do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `alloycalc_http_requests_total{code="200",endpoint="descriptors"}`)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(newTestServer(t, nil), http.MethodGet, "/descriptors", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
