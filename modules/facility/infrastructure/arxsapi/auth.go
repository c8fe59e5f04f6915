package arxsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/oauth2"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/failure"
)

const tokenPathDisplay = "/api/authenticate/token/{apiKey}"

// Credential is the bearer token of one run. It is never refreshed.
type Credential struct {
	AccessToken string
	IssuedAt    time.Time
}

// Authenticate exchanges the API key for a bearer token.
func (c *Client) Authenticate(ctx context.Context) (Credential, error) {
	header := http.Header{}
	if c.tenantID != "" {
		header.Set("TenantId", c.tenantID)
	}

	var raw []byte
	err := c.do(ctx, c.httpClient, call{
		stage:    failure.StageAuthenticate,
		endpoint: "auth.token",
		method:   http.MethodGet,
		url:      c.resolve(c.identityURL, "/api/authenticate/token/"+url.PathEscape(c.apiKey), nil),
		path:     tokenPathDisplay,
		header:   header,
	}, &raw)
	if err != nil {
		return Credential{}, err
	}

	token, err := parseToken(raw)
	if err != nil {
		return Credential{}, &failure.Error{Stage: failure.StageAuthenticate, Path: tokenPathDisplay, Err: err}
	}
	return Credential{AccessToken: token, IssuedAt: time.Now().UTC()}, nil
}

// Connect authenticates and returns a session bound to the new credential.
func (c *Client) Connect(ctx context.Context) (*Session, error) {
	cred, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return c.NewSession(cred), nil
}

// The identity endpoint answers with a bare JSON string; some deployments
// wrap it in an object.
func parseToken(raw []byte) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s, nil
		}
		return "", errors.New("empty token")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", errors.Wrap(err, "decode token")
	}
	for _, key := range []string{"token", "access_token", "accessToken", "jwt"} {
		v, ok := obj[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), nil
		}
	}
	return "", errors.New("token payload has no token field")
}

func bearerClient(base http.RoundTripper, cred Credential) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cred.AccessToken,
		TokenType:   "Bearer",
	})
	return &http.Client{Transport: &oauth2.Transport{Source: src, Base: base}}
}
