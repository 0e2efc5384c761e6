package identity

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const usersPerPage = 50

// Auth0Management proxies the Management API user directory. A
// client-credentials token is obtained lazily and reused until expiry.
type Auth0Management struct {
	baseURL string
	http    *resty.Client
	tokens  oauth2.TokenSource
}

// NewAuth0Management wires the management client for a tenant.
func NewAuth0Management(domain, clientID, clientSecret string) *Auth0Management {
	issuer := "https://" + strings.TrimSuffix(domain, "/")
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     issuer + "/oauth/token",
		EndpointParams: url.Values{
			"audience": {issuer + "/api/v2/"},
		},
	}
	return &Auth0Management{
		baseURL: issuer + "/api/v2",
		http:    resty.New(),
		tokens:  cc.TokenSource(context.Background()),
	}
}

type directoryUser struct {
	Email string `json:"email"`
}

// ListUserEmails pages through the user directory and returns email
// addresses only; no other profile field leaves this adapter.
func (m *Auth0Management) ListUserEmails(ctx context.Context) ([]string, error) {
	tok, err := m.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("management token: %w", err)
	}

	emails := []string{}
	for page := 0; ; page++ {
		var users []directoryUser
		resp, err := m.http.R().
			SetContext(ctx).
			SetAuthToken(tok.AccessToken).
			SetQueryParams(map[string]string{
				"fields":         "email",
				"include_fields": "true",
				"page":           fmt.Sprintf("%d", page),
				"per_page":       fmt.Sprintf("%d", usersPerPage),
			}).
			SetResult(&users).
			Get(m.baseURL + "/users")
		if err != nil {
			return nil, fmt.Errorf("list users page %d: %w", page, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("list users page %d: status %d", page, resp.StatusCode())
		}
		for _, u := range users {
			if u.Email != "" {
				emails = append(emails, u.Email)
			}
		}
		if len(users) < usersPerPage {
			return emails, nil
		}
	}
}
