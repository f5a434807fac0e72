package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"markethub/internal/domain"
	"markethub/internal/repository"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

type oauthProvider struct {
	config      *oauth2.Config
	userInfoURL string
	parse       func([]byte) (oauthIdentity, error)
}

// oauthIdentity is the normalized profile the providers reduce to.
type oauthIdentity struct {
	Email     string
	Name      string
	AvatarURL string
}

// RegisterGoogle enables Google sign-in. Call during wiring.
func (s *Service) RegisterGoogle(clientID, clientSecret, redirectURL string) {
	s.oauth[ProviderGoogle] = &oauthProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		parse: func(body []byte) (oauthIdentity, error) {
			var v struct {
				Email   string `json:"email"`
				Name    string `json:"name"`
				Picture string `json:"picture"`
			}
			if err := json.Unmarshal(body, &v); err != nil {
				return oauthIdentity{}, err
			}
			return oauthIdentity{Email: v.Email, Name: v.Name, AvatarURL: v.Picture}, nil
		},
	}
}

// RegisterGitHub enables GitHub sign-in. Accounts hiding their email get a
// noreply address derived from the login.
func (s *Service) RegisterGitHub(clientID, clientSecret, redirectURL string) {
	s.oauth[ProviderGitHub] = &oauthProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		userInfoURL: "https://api.github.com/user",
		parse: func(body []byte) (oauthIdentity, error) {
			var v struct {
				Login     string `json:"login"`
				Email     string `json:"email"`
				Name      string `json:"name"`
				AvatarURL string `json:"avatar_url"`
			}
			if err := json.Unmarshal(body, &v); err != nil {
				return oauthIdentity{}, err
			}
			email := v.Email
			if email == "" {
				email = fmt.Sprintf("%s@users.noreply.github.com", v.Login)
			}
			name := v.Name
			if name == "" {
				name = v.Login
			}
			return oauthIdentity{Email: email, Name: name, AvatarURL: v.AvatarURL}, nil
		},
	}
}

// OAuthLoginURL returns the provider consent page URL for the given state.
func (s *Service) OAuthLoginURL(provider, state string) (string, error) {
	p, ok := s.oauth[provider]
	if !ok {
		return "", ErrOAuthDisabled
	}
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// CompleteOAuth exchanges the callback code, fetches the provider profile
// and signs the user in, creating a customer account on first login.
func (s *Service) CompleteOAuth(ctx context.Context, provider, code string) (*AuthResponse, error) {
	p, ok := s.oauth[provider]
	if !ok {
		return nil, ErrOAuthDisabled
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, ErrOAuthFailed
	}

	identity, err := fetchIdentity(ctx, p, token)
	if err != nil {
		return nil, ErrOAuthFailed
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(identity.Email))
	if err == nil {
		return s.establishSession(user)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user = &domain.User{
		Email:     normalizeEmail(identity.Email),
		Name:      identity.Name,
		Role:      domain.RoleCustomer,
		AvatarURL: identity.AvatarURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.establishSession(user)
}

func fetchIdentity(ctx context.Context, p *oauthProvider, token *oauth2.Token) (oauthIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return oauthIdentity{}, err
	}

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return oauthIdentity{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthIdentity{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return oauthIdentity{}, err
	}
	return p.parse(body)
}
