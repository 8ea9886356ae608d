package discogs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// AuthorizeURL is the page a user visits to approve a request token.
const AuthorizeURL = "https://discogs.com/oauth/authorize"

// RequestToken is a temporary token from the first step of the OAuth
// handshake.
type RequestToken struct {
	Token        string
	TokenSecret  string
	AuthorizeURL string // Send the user here to obtain a verifier
}

// OAuthService performs the OAuth 1.0a handshake. The client must hold
// OAuth consumer credentials (see NewOAuth).
type OAuthService struct {
	client *Client
}

// RequestToken obtains a request token. callback is where the user is sent
// after authorizing; pass "" for out-of-band verification.
func (s *OAuthService) RequestToken(ctx context.Context, callback string) (*RequestToken, error) {
	auth, err := s.consumer()
	if err != nil {
		return nil, err
	}

	extra := map[string]string{}
	if callback != "" {
		extra["oauth_callback"] = callback
	}

	values, err := s.exchange(ctx, &Request{
		Method:      "GET",
		URL:         "/oauth/request_token",
		AuthLevel:   AuthConsumer,
		Raw:         true,
		auth:        NewOAuth(auth.ConsumerKey, auth.ConsumerSecret, "", ""),
		oauthParams: extra,
	})
	if err != nil {
		return nil, err
	}

	token := values.Get("oauth_token")
	return &RequestToken{
		Token:        token,
		TokenSecret:  values.Get("oauth_token_secret"),
		AuthorizeURL: AuthorizeURL + "?oauth_token=" + url.QueryEscape(token),
	}, nil
}

// AccessToken exchanges an authorized request token and its verifier for an
// access token. On success the client switches to the returned credentials,
// which are also returned so they can be stored.
func (s *OAuthService) AccessToken(ctx context.Context, rt *RequestToken, verifier string) (*Auth, error) {
	if rt == nil || rt.Token == "" {
		return nil, errors.New("discogs: access token exchange needs a request token")
	}
	if verifier == "" {
		return nil, errors.New("discogs: access token exchange needs a verifier")
	}
	auth, err := s.consumer()
	if err != nil {
		return nil, err
	}

	values, err := s.exchange(ctx, &Request{
		Method:      "POST",
		URL:         "/oauth/access_token",
		AuthLevel:   AuthConsumer,
		Raw:         true,
		auth:        NewOAuth(auth.ConsumerKey, auth.ConsumerSecret, rt.Token, rt.TokenSecret),
		oauthParams: map[string]string{"oauth_verifier": verifier},
	})
	if err != nil {
		return nil, err
	}

	access := NewOAuth(auth.ConsumerKey, auth.ConsumerSecret,
		values.Get("oauth_token"), values.Get("oauth_token_secret"))
	if access.Token == "" {
		return nil, errors.New("discogs: access token response did not contain a token")
	}
	if err := s.client.SetAuth(access); err != nil {
		return nil, err
	}
	return access, nil
}

func (s *OAuthService) consumer() (*Auth, error) {
	auth := s.client.Auth()
	if auth == nil {
		return nil, &AuthError{Required: AuthConsumer, Have: AuthNone}
	}
	if auth.Method != AuthMethodOAuth {
		return nil, fmt.Errorf("%w: oauth handshake needs oauth consumer credentials", ErrInvalidConfig)
	}
	return auth, nil
}

// exchange sends a handshake request and parses its form-encoded answer.
func (s *OAuthService) exchange(ctx context.Context, req *Request) (url.Values, error) {
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	values, err := url.ParseQuery(string(resp.Data))
	if err != nil {
		return nil, fmt.Errorf("discogs: failed to parse token response: %w", err)
	}
	return values, nil
}
