package auth

// How a token request found its user uuid. Used as a metric label.
const (
	ResolvedByCache   = "cache"
	ResolvedByTicket  = "ticket"
	ResolvedByIP      = "ip"
	ResolvedByDerived = "derived"
)

// TokenResponse is the OAuth-shaped body the game client parses.
type TokenResponse struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}
