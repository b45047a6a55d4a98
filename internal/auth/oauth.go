package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	defaultGithubUserURL   = "https://api.github.com/user"
	defaultGithubEmailsURL = "https://api.github.com/user/emails"
)

// GithubProvider drives the OAuth code flow against GitHub and turns the
// resulting profile into an ExternalProfile for the service upsert.
type GithubProvider struct {
	cfg *oauth2.Config

	// Overridable for tests.
	userURL   string
	emailsURL string
}

func NewGithubProvider(clientID, clientSecret, baseURL string) *GithubProvider {
	return &GithubProvider{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  baseURL + "/api/v1/auth/github/callback",
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		userURL:   defaultGithubUserURL,
		emailsURL: defaultGithubEmailsURL,
	}
}

func (p *GithubProvider) Configured() bool {
	return p.cfg.ClientID != "" && p.cfg.ClientSecret != ""
}

func (p *GithubProvider) LoginURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange trades the authorization code for a token and fetches the user's
// profile. GitHub hides the email on private-email accounts, so the emails
// endpoint is the fallback.
func (p *GithubProvider) Exchange(ctx context.Context, code string) (*ExternalProfile, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	client := p.cfg.Client(ctx, token)

	var gu githubUser
	if err := getJSON(ctx, client, p.userURL, &gu); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	email := gu.Email
	if email == "" {
		var emails []githubEmail
		if err := getJSON(ctx, client, p.emailsURL, &emails); err != nil {
			return nil, fmt.Errorf("fetch emails: %w", err)
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}
	name := gu.Name
	if name == "" {
		name = gu.Login
	}
	return &ExternalProfile{
		Provider:   "github",
		ProviderID: strconv.FormatInt(gu.ID, 10),
		Email:      email,
		Name:       name,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api status %d: %s", resp.StatusCode, body)
	}
	return json.Unmarshal(body, out)
}
