package discogs

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmhodges/clock"
)

// Settings holds the tunable request settings of a client.
//
// Settings may be changed after construction with UpdateSettings; changes
// apply to the next request admitted by the queue.
type Settings struct {
	Host                 string        // API host (default api.discogs.com)
	Port                 int           // API port (default 443)
	UserAgent            string        // User-Agent header value
	APIVersion           string        // API version tag used in the Accept header
	OutputFormat         string        // discogs, plaintext or html
	RequestLimit         int           // Calls per interval without user authentication
	RequestLimitAuth     int           // Calls per interval with user authentication
	RequestLimitInterval time.Duration // Length of the throttling window
	BackoffMaxRetries    int           // Retries after a 429 response (0 disables retrying)
	BackoffInterval      time.Duration // Wait before the first retry
	BackoffRate          float64       // Multiplier applied to each following wait
}

// Config holds client configuration.
type Config struct {
	Settings

	Auth       *Auth              // Optional: credentials, see NewTokenAuth, NewKeyAuth and NewOAuth
	HTTPClient *http.Client       // Optional: HTTP client (defaults to http.DefaultClient)
	BaseURL    string             // Optional: overrides Host and Port (used for testing)
	Queue      *Queue             // Optional: shared throttle queue; nil gives the client its own
	MaxStack   int                // Optional: waiting stack size for a private queue (default 20)
	Logger     Logger             // Optional: Logger interface for debug logging
	Clock      clock.Clock        // Optional: time source for throttling and backoff
	OnResponse func(ResponseInfo) // Optional: called after every attempt that reached the server
	Signer     *Signer            // Optional: Authorization header builder
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for Discogs API operations.
type Client struct {
	mu       sync.RWMutex
	settings Settings
	auth     *Auth

	httpClient *http.Client
	baseURL    string
	queue      *Queue
	logger     Logger
	clock      clock.Clock
	onResponse func(ResponseInfo)
	signer     *Signer
	validate   *validator.Validate

	database    *DatabaseService
	user        *UserService
	marketplace *MarketplaceService
	oauth       *OAuthService
}

const (
	// DefaultHost is the Discogs API host.
	DefaultHost = "api.discogs.com"

	// DefaultUserAgent identifies this client when no user agent is configured.
	DefaultUserAgent = "crates/1.0 +https://github.com/jfmyers9/crates"

	defaultMaxStack = 20
)

// DefaultSettings returns the settings used for any zero field in Config.
func DefaultSettings() Settings {
	return Settings{
		Host:                 DefaultHost,
		Port:                 443,
		UserAgent:            DefaultUserAgent,
		APIVersion:           "v2",
		OutputFormat:         "discogs",
		RequestLimit:         25,
		RequestLimitAuth:     60,
		RequestLimitInterval: 60 * time.Second,
		BackoffMaxRetries:    0,
		BackoffInterval:      2 * time.Second,
		BackoffRate:          2.7,
	}
}

// NewClient creates a new Discogs API client.
//
// Returns an error if the configuration is inconsistent, for example an OAuth
// Auth without a consumer secret.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Auth.validate(); err != nil {
		return nil, err
	}

	settings := cfg.Settings.withDefaults()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	signer := cfg.Signer
	if signer == nil {
		signer = &Signer{Now: clk.Now}
	}

	queue := cfg.Queue
	if queue == nil {
		maxStack := cfg.MaxStack
		if maxStack <= 0 {
			maxStack = defaultMaxStack
		}
		queue = NewQueue(QueueConfig{
			MaxStack: maxStack,
			MaxCalls: settings.RequestLimit,
			Interval: settings.RequestLimitInterval,
			Clock:    clk,
			Logger:   cfg.Logger,
		})
	}

	c := &Client{
		settings:   settings,
		auth:       cfg.Auth,
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		queue:      queue,
		logger:     cfg.Logger,
		clock:      clk,
		onResponse: cfg.OnResponse,
		signer:     signer,
		validate:   validator.New(),
	}

	c.database = &DatabaseService{client: c}
	c.user = &UserService{client: c}
	c.user.collection = &CollectionService{client: c}
	c.user.wantlist = &WantlistService{client: c}
	c.user.lists = &ListService{client: c}
	c.marketplace = &MarketplaceService{client: c, inventory: c.user.GetInventory}
	c.oauth = &OAuthService{client: c}

	return c, nil
}

// Database returns the database service (artists, releases, masters, labels, search).
func (c *Client) Database() *DatabaseService {
	return c.database
}

// User returns the user service (profiles, identity, inventory, collection, wantlist, lists).
func (c *Client) User() *UserService {
	return c.user
}

// Marketplace returns the marketplace service (listings, orders, fees, price suggestions).
func (c *Client) Marketplace() *MarketplaceService {
	return c.marketplace
}

// OAuth returns the OAuth handshake service.
func (c *Client) OAuth() *OAuthService {
	return c.oauth
}

// Queue returns the throttle queue used by the client.
func (c *Client) Queue() *Queue {
	return c.queue
}

// Settings returns a copy of the current settings.
func (c *Client) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// UpdateSettings applies fn to the client's settings. Zero values are
// replaced by defaults. The new values apply to subsequent requests.
func (c *Client) UpdateSettings(fn func(*Settings)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.settings
	fn(&s)
	c.settings = s.withDefaults()
}

// SetAuth replaces the client's credentials.
func (c *Client) SetAuth(auth *Auth) error {
	if err := auth.validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.auth = auth
	c.mu.Unlock()
	return nil
}

// Auth returns the client's credentials, or nil when unauthenticated.
func (c *Client) Auth() *Auth {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// Authenticated reports whether the client holds at least the given auth level.
func (c *Client) Authenticated(level AuthLevel) bool {
	return c.Auth().level() >= level
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.Host == "" {
		s.Host = d.Host
	}
	if s.Port <= 0 {
		s.Port = d.Port
	}
	if s.UserAgent == "" {
		s.UserAgent = d.UserAgent
	}
	if s.APIVersion == "" {
		s.APIVersion = d.APIVersion
	}
	if s.OutputFormat == "" {
		s.OutputFormat = d.OutputFormat
	}
	if s.RequestLimit <= 0 {
		s.RequestLimit = d.RequestLimit
	}
	if s.RequestLimitAuth <= 0 {
		s.RequestLimitAuth = d.RequestLimitAuth
	}
	if s.RequestLimitInterval <= 0 {
		s.RequestLimitInterval = d.RequestLimitInterval
	}
	if s.BackoffMaxRetries < 0 {
		s.BackoffMaxRetries = 0
	}
	if s.BackoffInterval <= 0 {
		s.BackoffInterval = d.BackoffInterval
	}
	if s.BackoffRate < 1 {
		s.BackoffRate = d.BackoffRate
	}
	return s
}

// rootURL returns the scheme and authority that root-relative URLs are joined to.
func (c *Client) rootURL(s Settings) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	if s.Port == 443 {
		return "https://" + s.Host
	}
	return "https://" + s.Host + ":" + strconv.Itoa(s.Port)
}

// acceptHeader builds the media type requested from the API.
func (s Settings) acceptHeader() string {
	return fmt.Sprintf("application/vnd.discogs.%s.%s+json", s.APIVersion, s.OutputFormat)
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
