package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dkeye/Huddle/internal/origin"
)

const (
	envConfigEnv      = "CONFIG_ENV"
	envPrefix         = "HUDDLE"
	envICEServersJSON = "HUDDLE_ICE_SERVERS_JSON"
)

type ICEServer struct {
	URLs       []string `mapstructure:"urls" json:"urls"`
	Username   string   `mapstructure:"username" json:"username,omitempty"`
	Credential string   `mapstructure:"credential" json:"credential,omitempty"`
}

type RateLimit struct {
	Events   int           `mapstructure:"events"`
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	LoopBuffer     int           `mapstructure:"loop_buffer"`
	Secret         string        `mapstructure:"secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ICEServers     []ICEServer   `mapstructure:"ice_servers"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	ValidateSDP    bool          `mapstructure:"validate_sdp"`
	Backpressure   string        `mapstructure:"backpressure"`
	RateLimit      RateLimit     `mapstructure:"rate_limit"`
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default) on top of
// built-in defaults, then applies environment overrides.
func Load() (*Config, error) {
	env := os.Getenv(envConfigEnv)
	if env == "" {
		env = "dev"
	}
	return load(fmt.Sprintf("config/config.%s.yaml", env))
}

func load(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("loop_buffer", 1024)
	v.SetDefault("secret", "huddle-dev-secret")
	v.SetDefault("allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("validate_sdp", true)
	v.SetDefault("backpressure", "kick")
	v.SetDefault("rate_limit.events", 40)
	v.SetDefault("rate_limit.interval", "1s")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Hosting platforms set these without our prefix.
	_ = v.BindEnv("port", "PORT", "HUDDLE_PORT")
	_ = v.BindEnv("allowed_origins", "ALLOWED_ORIGINS", "HUDDLE_ALLOWED_ORIGINS")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if raw := strings.TrimSpace(os.Getenv(envICEServersJSON)); raw != "" {
		servers, err := ParseICEServersJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envICEServersJSON, err)
		}
		cfg.ICEServers = servers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Strs("origins", cfg.AllowedOrigins).Msg("config ready")
	return &cfg, nil
}

// Validate checks ranges and normalizes allowed origins in place.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ReadLimit <= 0 {
		return errors.New("read_limit must be positive")
	}
	if c.PingPeriod <= 0 {
		return errors.New("ping_period must be positive")
	}
	if c.SendBuffer <= 0 || c.LoopBuffer <= 0 {
		return errors.New("send_buffer and loop_buffer must be positive")
	}
	if c.RateLimit.Events <= 0 || c.RateLimit.Interval <= 0 {
		return errors.New("rate_limit needs positive events and interval")
	}

	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, raw := range c.AllowedOrigins {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if raw == "*" {
			origins = append(origins, raw)
			continue
		}
		normalized, _, ok := origin.NormalizeHeader(raw)
		if !ok || normalized == "null" {
			return fmt.Errorf("invalid allowed origin %q", raw)
		}
		origins = append(origins, normalized)
	}
	c.AllowedOrigins = origins

	for i, s := range c.ICEServers {
		if len(s.URLs) == 0 {
			return fmt.Errorf("ice_servers[%d]: no urls", i)
		}
		for _, u := range s.URLs {
			uri, err := stun.ParseURI(u)
			if err != nil {
				return fmt.Errorf("ice_servers[%d]: %q: %w", i, u, err)
			}
			if (uri.Scheme == stun.SchemeTypeTURN || uri.Scheme == stun.SchemeTypeTURNS) && (s.Username == "" || s.Credential == "") {
				return fmt.Errorf("ice_servers[%d]: turn url %q needs username and credential", i, u)
			}
		}
	}
	return nil
}

// WebRTCICEServers is the ICE list handed to browsers.
func (c *Config) WebRTCICEServers() []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(c.ICEServers))
	for _, s := range c.ICEServers {
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
			srv.CredentialType = webrtc.ICECredentialTypePassword
		}
		out = append(out, srv)
	}
	return out
}

// ParseICEServersJSON accepts the browser RTCIceServer shape, where urls
// may be a single string or a list.
func ParseICEServersJSON(raw string) ([]ICEServer, error) {
	var servers []struct {
		URLs       json.RawMessage `json:"urls"`
		Username   string          `json:"username"`
		Credential string          `json:"credential"`
	}
	if err := json.Unmarshal([]byte(raw), &servers); err != nil {
		return nil, err
	}
	out := make([]ICEServer, 0, len(servers))
	for i, s := range servers {
		var urls []string
		var single string
		if err := json.Unmarshal(s.URLs, &single); err == nil {
			urls = []string{single}
		} else if err := json.Unmarshal(s.URLs, &urls); err != nil {
			return nil, fmt.Errorf("server %d: urls: %w", i, err)
		}
		out = append(out, ICEServer{
			URLs:       urls,
			Username:   strings.TrimSpace(s.Username),
			Credential: s.Credential,
		})
	}
	return out, nil
}
