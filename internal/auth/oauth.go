package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/iliyamo/notes-keeper/internal/config"
)

// profileResolver extracts the derived username from the provider's
// profile API using an authorized HTTP client.
type profileResolver func(ctx context.Context, rc *resty.Client, token *oauth2.Token) (string, error)

// oauthProvider implements Provider on top of an oauth2.Config plus a
// provider-specific profile fetch.
type oauthProvider struct {
	name    string
	conf    *oauth2.Config
	rc      *resty.Client
	resolve profileResolver
}

func (p *oauthProvider) Name() string { return p.name }

func (p *oauthProvider) AuthURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

func (p *oauthProvider) ResolveUsername(ctx context.Context, code string) (string, error) {
	token, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%s code exchange: %w", p.name, err)
	}
	username, err := p.resolve(ctx, p.rc, token)
	if err != nil {
		return "", fmt.Errorf("%s profile fetch: %w", p.name, err)
	}
	if username == "" {
		return "", fmt.Errorf("%s profile carries no usable identity", p.name)
	}
	return username, nil
}

// newProvider wires an oauthProvider when the credentials are present,
// or returns nil so the registry skips the provider entirely.
func newProvider(name string, pc config.OAuthProvider, endpoint oauth2.Endpoint, scopes []string, rc *resty.Client, resolve profileResolver) Provider {
	if !pc.Enabled() {
		return nil
	}
	return &oauthProvider{
		name: name,
		conf: &oauth2.Config{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			RedirectURL:  pc.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       scopes,
		},
		rc:      rc,
		resolve: resolve,
	}
}

// NewGoogle logs users in by their Google account email.
func NewGoogle(pc config.OAuthProvider, rc *resty.Client) Provider {
	return newProvider("google", pc, endpoints.Google, []string{"email", "profile"}, rc,
		func(ctx context.Context, rc *resty.Client, token *oauth2.Token) (string, error) {
			var profile struct {
				Email string `json:"email"`
			}
			if err := getProfile(ctx, rc, token, "https://www.googleapis.com/oauth2/v2/userinfo", &profile); err != nil {
				return "", err
			}
			return profile.Email, nil
		})
}

// NewGitHub logs users in by their GitHub login handle.
func NewGitHub(pc config.OAuthProvider, rc *resty.Client) Provider {
	return newProvider("github", pc, endpoints.GitHub, []string{"user:email"}, rc,
		func(ctx context.Context, rc *resty.Client, token *oauth2.Token) (string, error) {
			var profile struct {
				Login string `json:"login"`
			}
			if err := getProfile(ctx, rc, token, "https://api.github.com/user", &profile); err != nil {
				return "", err
			}
			return profile.Login, nil
		})
}

// NewFacebook logs users in by their Facebook email, falling back to
// fb_<id> when the profile exposes no email address.
func NewFacebook(pc config.OAuthProvider, rc *resty.Client) Provider {
	return newProvider("facebook", pc, endpoints.Facebook, []string{"email"}, rc,
		func(ctx context.Context, rc *resty.Client, token *oauth2.Token) (string, error) {
			var profile struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			}
			if err := getProfile(ctx, rc, token, "https://graph.facebook.com/me?fields=id,email", &profile); err != nil {
				return "", err
			}
			if profile.Email != "" {
				return profile.Email, nil
			}
			if profile.ID != "" {
				return "fb_" + profile.ID, nil
			}
			return "", nil
		})
}

// getProfile performs an authorized GET against a profile endpoint and
// decodes the JSON body into out.
func getProfile(ctx context.Context, rc *resty.Client, token *oauth2.Token, url string, out any) error {
	resp, err := rc.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetResult(out).
		Get(url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return errors.New("profile endpoint returned " + resp.Status())
	}
	return nil
}
