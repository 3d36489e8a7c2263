package geocoding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"service-marketplace/pkg/geo"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	googleGeocodeURL   = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultHTTPTimeout = 8 * time.Second
	geocodeCacheTTL    = 30 * 24 * time.Hour
	localCacheSize     = 1024
	cacheKeyPrefix     = "geocode:"
)

var (
	// ErrNoResults is returned when the address could not be resolved
	ErrNoResults = errors.New("no results for address")
	// ErrDisabled is returned by the no-op geocoder
	ErrDisabled = errors.New("geocoding is disabled")
)

// Geocoder resolves a free-form address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geo.Point, error)
}

// GoogleGeocoder calls the Google Geocoding API. Results are cached in Redis
// when a client is given and always in a small in-process LRU.
type GoogleGeocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	redis      *redis.Client
	local      *lru.Cache[string, geo.Point]
	breaker    *gobreaker.CircuitBreaker
	log        *logrus.Logger
}

type googleGeocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func NewGoogleGeocoder(apiKey string, redisClient *redis.Client, log *logrus.Logger) *GoogleGeocoder {
	return NewGoogleGeocoderWithOptions(apiKey, redisClient, googleGeocodeURL, nil, log)
}

// NewGoogleGeocoderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewGoogleGeocoderWithOptions(apiKey string, redisClient *redis.Client, baseURL string, httpClient *http.Client, log *logrus.Logger) *GoogleGeocoder {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleGeocodeURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	local, _ := lru.New[string, geo.Point](localCacheSize)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "google-geocoder",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("Circuit breaker %s changed from %s to %s", name, from, to)
		},
	})

	return &GoogleGeocoder{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		redis:      redisClient,
		local:      local,
		breaker:    breaker,
		log:        log,
	}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (*geo.Point, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, fmt.Errorf("address is required")
	}

	key := cacheKey(trimmed)
	if p, ok := g.cached(ctx, key); ok {
		return &p, nil
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.request(ctx, trimmed)
	})
	if err != nil {
		return nil, err
	}
	point := result.(geo.Point)

	g.store(ctx, key, point)
	return &point, nil
}

func (g *GoogleGeocoder) cached(ctx context.Context, key string) (geo.Point, bool) {
	if p, ok := g.local.Get(key); ok {
		return p, true
	}
	if g.redis == nil {
		return geo.Point{}, false
	}

	raw, err := g.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			g.log.Warnf("Failed to read geocode cache: %+v", err)
		}
		return geo.Point{}, false
	}

	var p geo.Point
	if err := json.Unmarshal(raw, &p); err != nil {
		return geo.Point{}, false
	}
	g.local.Add(key, p)
	return p, true
}

func (g *GoogleGeocoder) store(ctx context.Context, key string, p geo.Point) {
	g.local.Add(key, p)
	if g.redis == nil {
		return
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := g.redis.Set(ctx, key, payload, geocodeCacheTTL).Err(); err != nil {
		g.log.Warnf("Failed to write geocode cache: %+v", err)
	}
}

func (g *GoogleGeocoder) request(ctx context.Context, address string) (geo.Point, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return geo.Point{}, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return geo.Point{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return geo.Point{}, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var body googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return geo.Point{}, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return geo.Point{}, ErrNoResults
	default:
		return geo.Point{}, fmt.Errorf("geocode request failed: %s %s", body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 {
		return geo.Point{}, ErrNoResults
	}

	loc := body.Results[0].Geometry.Location
	return geo.Point{Longitude: loc.Lng, Latitude: loc.Lat}, nil
}

func cacheKey(address string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(address)))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// NoopGeocoder is used when no Maps API key is configured.
type NoopGeocoder struct{}

func (NoopGeocoder) Geocode(context.Context, string) (*geo.Point, error) {
	return nil, ErrDisabled
}
