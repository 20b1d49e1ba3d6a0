package telematics

import "time"

// Token is an OAuth token pair issued by the telematics provider.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	CreatedAt    time.Time `json:"-"`
}

// ExpiresAt returns the instant the access token stops being usable.
func (t *Token) ExpiresAt() time.Time {
	return t.CreatedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Expired reports whether the token is past (or within a minute of) expiry.
func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt().Add(-time.Minute))
}

// vehicleList is the provider's paged vehicle id response.
type vehicleList struct {
	Vehicles []string `json:"vehicles"`
	Paging   struct {
		Count  int `json:"count"`
		Offset int `json:"offset"`
	} `json:"paging"`
}

// vehicleAttributes is the provider's vehicle info response.
type vehicleAttributes struct {
	ID    string `json:"id"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// Odometer is the provider's odometer reading in kilometers.
type Odometer struct {
	Distance float64 `json:"distance"`
}

// Location is the provider's GPS reading in degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
