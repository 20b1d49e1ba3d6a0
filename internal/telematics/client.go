// Package telematics is the client for the Smartcar-compatible vehicle API
// behind the relay: OAuth code exchange, token refresh, and the vehicle,
// odometer and location reads the marketplace needs.
package telematics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ligo/internal/domain"
)

// Client talks to one telematics provider.
type Client struct {
	httpClient   *http.Client
	authHost     string
	apiHost      string
	clientID     string
	clientSecret string
	redirectURI  string
}

// NewClient creates a provider client.
func NewClient(authHost, apiHost, clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		authHost:     authHost,
		apiHost:      apiHost,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
	}
}

// ExchangeCode swaps an authorization code for a token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", c.redirectURI)

	return c.tokenRequest(ctx, data)
}

// Refresh swaps a refresh token for a fresh token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	return c.tokenRequest(ctx, data)
}

func (c *Client) tokenRequest(ctx context.Context, data url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authHost+"/oauth/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	token.CreatedAt = time.Now()

	return &token, nil
}

// UserID returns the provider's id for the token's user.
func (c *Client) UserID(ctx context.Context, accessToken string) (string, error) {
	var user struct {
		ID string `json:"id"`
	}
	if err := c.apiGet(ctx, accessToken, "/v2.0/user", &user); err != nil {
		return "", err
	}
	return user.ID, nil
}

// Vehicles returns the token's vehicles with make/model/year/VIN resolved.
func (c *Client) Vehicles(ctx context.Context, accessToken string) ([]domain.Vehicle, error) {
	var list vehicleList
	if err := c.apiGet(ctx, accessToken, "/v2.0/vehicles", &list); err != nil {
		return nil, err
	}

	vehicles := make([]domain.Vehicle, 0, len(list.Vehicles))
	for _, vehicleID := range list.Vehicles {
		var attrs vehicleAttributes
		if err := c.apiGet(ctx, accessToken, "/v2.0/vehicles/"+vehicleID, &attrs); err != nil {
			return nil, err
		}

		var vin struct {
			VIN string `json:"vin"`
		}
		if err := c.apiGet(ctx, accessToken, "/v2.0/vehicles/"+vehicleID+"/vin", &vin); err != nil {
			return nil, err
		}

		vehicles = append(vehicles, domain.Vehicle{
			ID:    attrs.ID,
			Make:  attrs.Make,
			Model: attrs.Model,
			Year:  attrs.Year,
			VIN:   vin.VIN,
		})
	}

	return vehicles, nil
}

// VehicleOdometer returns the current odometer reading for a vehicle.
func (c *Client) VehicleOdometer(ctx context.Context, accessToken, vehicleID string) (*Odometer, error) {
	var odometer Odometer
	if err := c.apiGet(ctx, accessToken, "/v2.0/vehicles/"+vehicleID+"/odometer", &odometer); err != nil {
		return nil, err
	}
	return &odometer, nil
}

// VehicleLocation returns the current GPS position for a vehicle.
func (c *Client) VehicleLocation(ctx context.Context, accessToken, vehicleID string) (*Location, error) {
	var location Location
	if err := c.apiGet(ctx, accessToken, "/v2.0/vehicles/"+vehicleID+"/location", &location); err != nil {
		return nil, err
	}
	return &location, nil
}

func (c *Client) apiGet(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiHost+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provider request %s failed: status=%d body=%s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response %s: %w", path, err)
	}

	return nil
}
