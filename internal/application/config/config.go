package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pion/webrtc/v4"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"3000"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9090"`
	Domain     string `env:"DOMAIN" envDefault:"http://localhost:3000"`
	JWTSecret  string `env:"JWT_SECRET,required"`

	Room RoomConfig
	Chat ChatConfig

	TurnUDPServer webrtc.ICEServer
	TurnTCPServer webrtc.ICEServer

	CoturnServer CoturnConfig
}

type RoomConfig struct {
	MaxParticipants    int  `env:"ROOM_MAX_PARTICIPANTS" envDefault:"16"`
	ScreenShareEnabled bool `env:"ROOM_SCREEN_SHARE_ENABLED" envDefault:"true"`
	ChatEnabled        bool `env:"ROOM_CHAT_ENABLED" envDefault:"true"`
}

type ChatConfig struct {
	MaxMessageLength int `env:"CHAT_MAX_MESSAGE_LENGTH" envDefault:"4000"`

	// Retention drives the in-memory pruning janitor, not durable storage.
	Retention     time.Duration `env:"CHAT_RETENTION" envDefault:"24h"`
	PruneInterval time.Duration `env:"CHAT_PRUNE_INTERVAL" envDefault:"10m"`
}

type CoturnConfig struct {
	Host     string `env:"COTURN_HOST"`
	Username string `env:"COTURN_USERNAME"`
	Password string `env:"COTURN_PASSWORD"`

	// Secret is shared with coturn to mint time-limited credentials.
	Secret string `env:"COTURN_SECRET"`
}

func (c *CoturnConfig) Enabled() bool {
	return c.Host != "" && c.Secret != ""
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if c.CoturnServer.Enabled() {
		c.TurnUDPServer = webrtc.ICEServer{
			URLs:       []string{fmt.Sprintf("turn:%s?transport=udp", c.CoturnServer.Host)},
			Username:   c.CoturnServer.Username,
			Credential: c.CoturnServer.Password,
		}

		c.TurnTCPServer = webrtc.ICEServer{
			URLs:       []string{fmt.Sprintf("turn:%s?transport=tcp", c.CoturnServer.Host)},
			Username:   c.CoturnServer.Username,
			Credential: c.CoturnServer.Password,
		}
	}

	return &c, nil
}
