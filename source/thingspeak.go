package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"greenhouse-forecaster/models"
)

const DefaultThingSpeakURL = "https://api.thingspeak.com"

// ThingSpeak reads one field of a ThingSpeak channel feed.
type ThingSpeak struct {
	baseURL   string
	channelID string
	apiKey    string
	client    *http.Client
}

func NewThingSpeak(baseURL, channelID, apiKey string) *ThingSpeak {
	if baseURL == "" {
		baseURL = DefaultThingSpeakURL
	}
	return &ThingSpeak{
		baseURL:   baseURL,
		channelID: channelID,
		apiKey:    apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type feedResponse struct {
	Feeds []map[string]any `json:"feeds"`
}

func (ts *ThingSpeak) Fetch(ctx context.Context, ch models.Channel, limit int) Result {
	if ch.Field <= 0 {
		return Corrupt(fmt.Errorf("channel %s has no thingspeak field", ch.ID))
	}

	query := url.Values{}
	if ts.apiKey != "" {
		query.Set("api_key", ts.apiKey)
	}
	if limit > 0 {
		query.Set("results", strconv.Itoa(limit))
	}
	endpoint := fmt.Sprintf("%s/channels/%s/fields/%d.json?%s",
		ts.baseURL, url.PathEscape(ts.channelID), ch.Field, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Unavailable(err)
	}

	resp, err := ts.client.Do(req)
	if err != nil {
		return Unavailable(fmt.Errorf("thingspeak request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Unavailable(fmt.Errorf("thingspeak status %d", resp.StatusCode))
	}

	var body feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Corrupt(fmt.Errorf("thingspeak decode: %w", err))
	}

	key := "field" + strconv.Itoa(ch.Field)
	readings := make([]models.RawReading, 0, len(body.Feeds))
	for _, entry := range body.Feeds {
		created, _ := entry["created_at"].(string)
		at, err := models.ParseTimestamp(created)
		if err != nil {
			continue
		}

		reading := models.RawReading{Timestamp: at, Channel: ch.ID}
		switch v := entry[key].(type) {
		case string:
			reading.Value, reading.Present = v, v != ""
		case float64:
			reading.Value, reading.Present = strconv.FormatFloat(v, 'f', -1, 64), true
		}
		readings = append(readings, reading)
	}

	return OK(readings)
}
