package config

import (
	"net"
	"net/url"
	"strconv"
)

// ProxyAuth holds proxy credentials.
type ProxyAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ProxyConfig describes one HTTP proxy in the rotating pool.
type ProxyConfig struct {
	Host string     `yaml:"host"`
	Port int        `yaml:"port"`
	Auth *ProxyAuth `yaml:"auth,omitempty"`
}

// Validate reports whether the proxy entry is usable.
func (p ProxyConfig) Validate() error {
	if p.Host == "" || p.Port <= 0 || p.Port > 65535 {
		return ErrInvalidProxy
	}
	return nil
}

// URL returns the proxy as http://[user:pass@]host:port.
func (p ProxyConfig) URL() *url.URL {
	u := &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
	}
	if p.Auth != nil && p.Auth.Username != "" {
		u.User = url.UserPassword(p.Auth.Username, p.Auth.Password)
	}
	return u
}

// ProxyURLs converts the configured pool to URLs.
func (c *Config) ProxyURLs() []*url.URL {
	urls := make([]*url.URL, 0, len(c.Proxies))
	for _, p := range c.Proxies {
		urls = append(urls, p.URL())
	}
	return urls
}
