package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/funcland/control-plane/internal/core/ports"
)

// OAuthConfig captures the third-party provider endpoints.
type OAuthConfig struct {
	Name         string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
	Scopes       []string
}

// OAuthProvider is the third-party identity variant. Exchange trades the
// dashboard's authorization code for an access token; the access token is
// the session seed, and verification replays it against the provider's
// userinfo endpoint.
type OAuthProvider struct {
	name        string
	cfg         *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

func NewOAuthProvider(cfg OAuthConfig) *OAuthProvider {
	return &OAuthProvider{
		name: cfg.Name,
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  http.DefaultClient,
	}
}

// AuthCodeURL returns the provider's authorization URL for the dashboard's
// sign-in redirect.
func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

// Verify replays the seed (an access token) against the userinfo endpoint.
func (p *OAuthProvider) Verify(ctx context.Context, seed string) (*ports.IdentityClaims, error) {
	info, err := p.fetchUserInfo(ctx, seed)
	if err != nil {
		return nil, err
	}
	return p.claims(info), nil
}

// Exchange trades the authorization code carried in the claims for an access
// token and resolves the user behind it.
func (p *OAuthProvider) Exchange(ctx context.Context, in ports.IdentityClaims) (*ports.SessionSeed, error) {
	token, err := p.cfg.Exchange(ctx, in.Credential)
	if err != nil {
		return nil, fmt.Errorf("oauth code exchange: %w", err)
	}

	info, err := p.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	claims := p.claims(info)
	return &ports.SessionSeed{
		Provider:  claims.Provider,
		Subject:   claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		AvatarURL: claims.AvatarURL,
		Value:     token.AccessToken,
	}, nil
}

type userInfo struct {
	ID        json.Number `json:"id"`
	Sub       string      `json:"sub"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Login     string      `json:"login"`
	AvatarURL string      `json:"avatar_url"`
	Picture   string      `json:"picture"`
}

func (p *OAuthProvider) fetchUserInfo(ctx context.Context, accessToken string) (*userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &info, nil
}

// claims normalizes the provider-specific userinfo shapes (OIDC "sub" vs.
// numeric "id", "picture" vs. "avatar_url").
func (p *OAuthProvider) claims(info *userInfo) *ports.IdentityClaims {
	subject := info.Sub
	if subject == "" {
		subject = info.ID.String()
	}
	name := info.Name
	if name == "" {
		name = info.Login
	}
	avatar := info.AvatarURL
	if avatar == "" {
		avatar = info.Picture
	}
	return &ports.IdentityClaims{
		Provider:  p.name,
		Subject:   subject,
		Email:     info.Email,
		Name:      name,
		AvatarURL: avatar,
	}
}
