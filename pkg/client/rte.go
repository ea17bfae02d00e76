package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"energy-collector/internal/timeutil"
	"go.uber.org/zap"
)

const (
	tokenPath      = "/token/oauth/"
	generationPath = "/open_api/actual_generation/v1/actual_generations_per_production_type"

	// The RTE token is valid for two hours when the server omits expires_in.
	defaultTokenTTL = 7200 * time.Second
)

// RTEClient talks to the RTE actual-generation API, handling the OAuth2
// client-credentials exchange and lazy token refresh.
type RTEClient struct {
	*BaseClient
	baseURL        string
	clientID       string
	clientSecret   string
	productionType string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	now         func() time.Time
}

func NewRTEClient(baseURL, clientID, clientSecret, productionType string, config ClientConfig, logger *zap.Logger) (*RTEClient, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("rte client credentials are not configured")
	}
	return &RTEClient{
		BaseClient:     NewBaseClient("rte", config, logger),
		baseURL:        baseURL,
		clientID:       clientID,
		clientSecret:   clientSecret,
		productionType: productionType,
		now:            time.Now,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ensureToken returns a valid bearer token, refreshing it when missing or
// expired. The token state is guarded so concurrent fetches share one
// exchange. The exchange itself is never retried: any failure surfaces as an
// AuthError.
func (c *RTEClient) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	header := http.Header{}
	header.Set("Authorization", "Basic "+credentials)

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	c.logger.Info("Requesting OAuth2 token from RTE")
	status, body, err := c.PostForm(ctx, c.baseURL+tokenPath, header, form)
	if err != nil {
		return "", &AuthError{Detail: err.Error()}
	}
	if status != http.StatusOK {
		c.logger.Error("Token exchange failed",
			zap.Int("status", status),
			zap.ByteString("response", body))
		return "", &AuthError{StatusCode: status, Detail: string(body)}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", &AuthError{Detail: fmt.Sprintf("decode token response: %v", err)}
	}
	if token.AccessToken == "" {
		return "", &AuthError{Detail: "token response missing access_token"}
	}

	ttl := defaultTokenTTL
	if token.ExpiresIn > 0 {
		ttl = time.Duration(token.ExpiresIn) * time.Second
	}
	c.accessToken = token.AccessToken
	c.expiresAt = c.now().Add(ttl)

	c.logger.Info("OAuth2 token acquired", zap.Time("expires_at", c.expiresAt))
	return c.accessToken, nil
}

// GenerationResponse is the decoded actual-generation payload for one slice.
type GenerationResponse struct {
	Generations []ProductionTypeGeneration `json:"actual_generations_per_production_type"`
}

// ProductionTypeGeneration holds one production type's interval observations.
type ProductionTypeGeneration struct {
	ProductionType string            `json:"production_type"`
	Values         []GenerationValue `json:"values"`
}

// GenerationValue is a single observed interval.
type GenerationValue struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Value     float64 `json:"value"`
}

// PointCount returns the total number of observations across all production
// types.
func (r *GenerationResponse) PointCount() int {
	n := 0
	for _, g := range r.Generations {
		n += len(g.Values)
	}
	return n
}

// FetchGeneration issues one GET for the given slice and decodes the
// per-production-type payload.
func (c *RTEClient) FetchGeneration(ctx context.Context, r timeutil.Range) (*GenerationResponse, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("start_date", timeutil.FormatOffset(r.Start))
	params.Set("end_date", timeutil.FormatOffset(r.End))
	if c.productionType != "" {
		params.Set("production_type", c.productionType)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Accept", "application/json")

	c.logger.Info("Fetching generation data",
		zap.String("start_date", params.Get("start_date")),
		zap.String("end_date", params.Get("end_date")))

	body, err := c.Get(ctx, c.baseURL+generationPath+"?"+params.Encode(), header)
	if err != nil {
		return nil, err
	}

	var resp GenerationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode generation response: %w", err)
	}

	c.logger.Info("Generation data fetched",
		zap.Int("production_types", len(resp.Generations)),
		zap.Int("data_points", resp.PointCount()))
	return &resp, nil
}
