package gliner2

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(Config{Provider: ProviderLocal, Local: &LocalConfig{Endpoint: srv.URL + "/"}})
	require.NoError(t, err)
	return c
}

func TestClassifyText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gliner-2", r.URL.Path)
		var req ExtractRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "classify_text", req.Task)
		assert.Equal(t, "Screen cracked", req.Text)

		w.Write([]byte(`{"result":{"classifications":{"topic":{"task":"topic","label":"Ease of Use and Design","confidence":0.8}}}}`))
	})

	res, err := c.ClassifyText(context.Background(), "Screen cracked", map[string][]string{"topic": {"a", "b"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Ease of Use and Design", res.Classifications["topic"].Label)
	assert.InDelta(t, 0.8, res.Classifications["topic"].Confidence, 1e-9)
}

func TestAPIErrorCarriesDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail":"model loading"}`))
	})

	_, err := c.ClassifyText(context.Background(), "x", nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model loading")
	assert.Contains(t, err.Error(), "503")
}

func TestRecognizerOrdersByOffset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"entities":{"organization":[
			{"text":"Logitech","start":30},
			{"text":"Sony","start":4}
		]}}}`))
	})

	rec := &Recognizer{Client: c}
	ents, err := rec.Recognize(context.Background(), "The Sony remote paired with my Logitech hub")
	require.NoError(t, err)
	require.Len(t, ents, 2)
	assert.Equal(t, "Sony", ents[0].Text)
	assert.Equal(t, "organization", ents[0].Label)
	assert.True(t, ents[0].IsOrganization())
}

func TestFastinoSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewHTTPClient(Config{Provider: ProviderFastino, Fastino: &FastinoConfig{Endpoint: srv.URL, APIKey: "key-1"}})
	require.NoError(t, err)
	assert.NoError(t, c.Health(context.Background()))
}

func TestNewHTTPClientValidation(t *testing.T) {
	_, err := NewHTTPClient(Config{Provider: ProviderLocal})
	assert.Error(t, err)

	_, err = NewHTTPClient(Config{Provider: ProviderLocal, Local: &LocalConfig{}})
	assert.Error(t, err)

	_, err = ParseProvider("native")
	assert.Error(t, err)
}
