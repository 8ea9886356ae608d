package discogs

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthLevel indicates how strongly a client is authenticated.
type AuthLevel int

const (
	AuthNone     AuthLevel = iota // Anonymous
	AuthConsumer                  // Consumer key and secret only
	AuthUser                      // Fully user-authenticated
)

// AuthMethod selects how the Authorization header is built.
type AuthMethod string

const (
	AuthMethodDiscogs AuthMethod = "discogs" // Discogs token or key/secret scheme
	AuthMethodOAuth   AuthMethod = "oauth"   // OAuth 1.0a, PLAINTEXT signature
)

// Auth holds the credentials of a client.
//
// Use NewTokenAuth, NewKeyAuth or NewOAuth to get a value with the right Level.
type Auth struct {
	Method         AuthMethod
	Level          AuthLevel
	ConsumerKey    string
	ConsumerSecret string
	UserToken      string // Personal access token (discogs method)
	Token          string // OAuth access token
	TokenSecret    string // OAuth access token secret
}

// NewTokenAuth authenticates as a user with a personal access token.
func NewTokenAuth(userToken string) *Auth {
	return &Auth{Method: AuthMethodDiscogs, Level: AuthUser, UserToken: userToken}
}

// NewKeyAuth identifies the application with its consumer key and secret.
func NewKeyAuth(consumerKey, consumerSecret string) *Auth {
	return &Auth{
		Method:         AuthMethodDiscogs,
		Level:          AuthConsumer,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
	}
}

// NewOAuth authenticates with OAuth 1.0a. An empty token gives consumer-level
// access, which is what the request-token step of the handshake needs.
func NewOAuth(consumerKey, consumerSecret, token, tokenSecret string) *Auth {
	level := AuthConsumer
	if token != "" {
		level = AuthUser
	}
	return &Auth{
		Method:         AuthMethodOAuth,
		Level:          level,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		Token:          token,
		TokenSecret:    tokenSecret,
	}
}

func (a *Auth) level() AuthLevel {
	if a == nil {
		return AuthNone
	}
	return a.Level
}

func (a *Auth) validate() error {
	if a == nil {
		return nil
	}
	switch a.Method {
	case AuthMethodDiscogs:
		if a.UserToken == "" && (a.ConsumerKey == "" || a.ConsumerSecret == "") {
			return fmt.Errorf("%w: discogs auth needs a user token or a consumer key and secret", ErrInvalidConfig)
		}
	case AuthMethodOAuth:
		if a.ConsumerKey == "" || a.ConsumerSecret == "" {
			return fmt.Errorf("%w: oauth needs a consumer key and secret", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown auth method %q", ErrInvalidConfig, a.Method)
	}
	if a.Level < AuthNone || a.Level > AuthUser {
		return fmt.Errorf("%w: auth level %d out of range", ErrInvalidConfig, a.Level)
	}
	return nil
}

// Signer builds Authorization header values.
//
// Now and Nonce may be replaced for deterministic output. The zero value is
// ready to use.
type Signer struct {
	Now   func() time.Time
	Nonce func() string
}

// Authorization returns the Authorization header value for a request, or ""
// when auth is nil.
//
// PLAINTEXT signatures do not cover the request method or URL; both are
// accepted so that signing stays a function of the full request.
func (s *Signer) Authorization(method, rawURL string, auth *Auth) string {
	return s.authorization(method, rawURL, auth, nil)
}

func (s *Signer) authorization(method, rawURL string, auth *Auth, extra map[string]string) string {
	if auth == nil {
		return ""
	}

	if auth.Method == AuthMethodOAuth {
		return s.oauthHeader(auth, extra)
	}

	if auth.UserToken != "" {
		return "Discogs token=" + auth.UserToken
	}
	return "Discogs key=" + auth.ConsumerKey + ", secret=" + auth.ConsumerSecret
}

// oauthHeader builds an OAuth 1.0a header with a PLAINTEXT signature.
//
// Parameters are emitted sorted by name as key="value" pairs, both
// percent-encoded per RFC 3986, and joined with ", ".
func (s *Signer) oauthHeader(auth *Auth, extra map[string]string) string {
	params := map[string]string{
		"oauth_consumer_key":     auth.ConsumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature":        percentEncode(auth.ConsumerSecret) + "&" + percentEncode(auth.TokenSecret),
		"oauth_signature_method": "PLAINTEXT",
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_version":          "1.0",
	}
	if auth.Token != "" {
		params["oauth_token"] = auth.Token
	}
	for k, v := range extra {
		params[k] = v
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, percentEncode(k)+`="`+percentEncode(params[k])+`"`)
	}
	return "OAuth " + strings.Join(pairs, ", ")
}

func (s *Signer) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Signer) nonce() string {
	if s != nil && s.Nonce != nil {
		return s.Nonce()
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// percentEncode escapes everything outside the RFC 3986 unreserved set.
func percentEncode(v string) string {
	// QueryEscape only differs from RFC 3986 in encoding space as '+'.
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
