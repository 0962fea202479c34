package geocoding

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) (*NominatimGeocoder, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g := NewNominatimGeocoder(quietLogger(), "", time.Second)
	g.baseURL = server.URL
	return g, server
}

func TestGeocodeSuccess(t *testing.T) {
	var requests int
	g, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "Tokyo, Minato 1-2-3", r.URL.Query().Get("q"))
		assert.Equal(t, "jp", r.URL.Query().Get("countrycodes"))
		w.Write([]byte(`[{"lat": "35.6581", "lon": "139.7514"}]`))
	})

	coords, err := g.Geocode("Tokyo, Minato 1-2-3")
	require.NoError(t, err)
	assert.InDelta(t, 35.6581, coords.Latitude, 1e-4)
	assert.InDelta(t, 139.7514, coords.Longitude, 1e-4)

	// Second lookup is served from the cache.
	_, err = g.Geocode("Tokyo, Minato 1-2-3")
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
}

func TestGeocodeNotFound(t *testing.T) {
	g, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := g.Geocode("Nowhere 9-9-9")
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestGeocodeServerError(t *testing.T) {
	g, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := g.Geocode("Tokyo, Minato")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestGeocodeUnreachable(t *testing.T) {
	g, server := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := g.Geocode("Tokyo, Minato")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}
