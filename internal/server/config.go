package server

import (
	"net/http"
	"strconv"
	"time"
)

// EnvConfig defines fields used for parsing from environment variables
type EnvConfig struct {
	Host     string `env:"HOST" envDefault:"0.0.0.0"`
	Port     uint16 `env:"PORT" envDefault:"9000"`
	MediaDir string `env:"MEDIA_DIR" envDefault:"./media"`
}

// Addr renders the host:port pair http.Server listens on.
func (c EnvConfig) Addr() string {
	return c.Host + ":" + strconv.FormatUint(uint64(c.Port), 10)
}

// Option alters the http.Server built during NewServer.
type Option interface {
	apply(*http.Server)
}

type optionFunc func(s *http.Server)

func (f optionFunc) apply(s *http.Server) { f(s) }

// ReadTimeout sets read timeout for http.Server
func ReadTimeout(d time.Duration) Option {
	return optionFunc(func(s *http.Server) {
		s.ReadTimeout = d
	})
}
