package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse-forecaster/models"
)

var humidity = models.Channel{ID: "Humidity", Label: "Humidity (%)", Field: 3}

func TestThingSpeakFetch(t *testing.T) {
	var gotPath, gotKey, gotResults string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		gotResults = r.URL.Query().Get("results")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"channel":{"id":42},"feeds":[
			{"created_at":"2025-03-01T10:00:00Z","entry_id":1,"field3":"61.5"},
			{"created_at":"2025-03-01T10:01:00Z","entry_id":2,"field3":null},
			{"created_at":"2025-03-01T10:02:00Z","entry_id":3,"field3":""},
			{"created_at":"not a time","entry_id":4,"field3":"60"},
			{"created_at":"2025-03-01T10:03:00Z","entry_id":5,"field3":62}
		]}`))
	}))
	defer srv.Close()

	ts := NewThingSpeak(srv.URL, "42", "secret")
	res := ts.Fetch(context.Background(), humidity, 100)

	require.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "/channels/42/fields/3.json", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "100", gotResults)

	require.Len(t, res.Readings, 4)
	assert.Equal(t, "61.5", res.Readings[0].Value)
	assert.True(t, res.Readings[0].Present)
	assert.False(t, res.Readings[1].Present)
	assert.False(t, res.Readings[2].Present)
	assert.Equal(t, "62", res.Readings[3].Value)
	assert.Equal(t, "Humidity", res.Readings[3].Channel)
}

func TestThingSpeakUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res := NewThingSpeak(srv.URL, "42", "").Fetch(context.Background(), humidity, 10)
	assert.Equal(t, StatusUnavailable, res.Status)
	assert.Error(t, res.Err)
}

func TestThingSpeakUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := NewThingSpeak(url, "42", "").Fetch(context.Background(), humidity, 10)
	assert.Equal(t, StatusUnavailable, res.Status)
}

func TestThingSpeakCorrupt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"feeds": [`))
	}))
	defer srv.Close()

	res := NewThingSpeak(srv.URL, "42", "").Fetch(context.Background(), humidity, 10)
	assert.Equal(t, StatusCorrupt, res.Status)
}

func TestThingSpeakChannelWithoutField(t *testing.T) {
	res := NewThingSpeak("http://unused", "42", "").Fetch(context.Background(), models.Channel{ID: "x"}, 10)
	assert.Equal(t, StatusCorrupt, res.Status)
}
