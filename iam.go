package glide

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IamTokenProvider supplies the current IAM auth token for the Connection
// Request's IAM credential branch and decides, ahead of each
// RefreshIamToken call, whether a refresh round-trip is actually needed.
type IamTokenProvider interface {
	// Token returns the current token. It does not itself refresh: callers
	// needing a fresh token should check NeedsRefresh first.
	Token(ctx context.Context) (string, error)
	// NeedsRefresh reports whether the current token is close enough to
	// expiry to warrant a refresh_iam_token round-trip.
	NeedsRefresh() bool
}

// JWTTokenProvider is the bundled IamTokenProvider: it treats the token's
// own "exp" claim as the source of truth for NeedsRefresh rather than
// tracking a separate expiry timer, so SetToken is the only place staleness
// can be introduced.
type JWTTokenProvider struct {
	// RefreshMargin is how far ahead of the token's exp claim NeedsRefresh
	// starts returning true.
	RefreshMargin time.Duration

	mu    sync.Mutex
	token string
}

// NewJWTTokenProvider builds a provider seeded with the first token.
func NewJWTTokenProvider(initialToken string, refreshMargin time.Duration) *JWTTokenProvider {
	return &JWTTokenProvider{RefreshMargin: refreshMargin, token: initialToken}
}

// SetToken installs a newly minted token, normally called after a caller's
// own IAM SDK round-trip completed RefreshIamToken's wire request.
func (p *JWTTokenProvider) SetToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
}

func (p *JWTTokenProvider) Token(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token, nil
}

// NeedsRefresh parses the token's exp claim without verifying a signature
// (the runtime, not this binding, is the token's consumer) and compares it
// against RefreshMargin. A token that is empty or fails to parse is always
// due for refresh.
func (p *JWTTokenProvider) NeedsRefresh() bool {
	p.mu.Lock()
	token := p.token
	p.mu.Unlock()

	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Until(exp.Time) <= p.RefreshMargin
}
