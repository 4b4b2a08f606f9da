package config

import (
	"maps"
	"net/url"
	"strings"
)

// SiteConfig holds the fetch profile of one host.
type SiteConfig struct {
	// UserAgent overrides the User-Agent sent to this host.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie is sent with every request to this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// RenderMode overrides the global render mode for this host.
	RenderMode string `yaml:"renderMode,omitempty"`

	// BaseURL overrides the base URL used to resolve relative list lines.
	BaseURL string `yaml:"baseURL,omitempty"`
}

// File represents the structure of the .aptscout configuration file.
type File struct {
	// Sites maps host names (e.g. "www.otodom.pl") to their profiles.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every host unless a site profile overrides it.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the profile for host merged over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	site, ok := cf.Sites[host]
	if !ok {
		return result
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.RenderMode != "" {
		result.RenderMode = site.RenderMode
	}
	if site.BaseURL != "" {
		result.BaseURL = site.BaseURL
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}
	return result
}

// Site resolves the effective profile for rawURL: global settings first,
// then the config file defaults, then the host's own profile.
func (c *Config) Site(rawURL string) SiteConfig {
	result := SiteConfig{
		UserAgent:  c.UserAgent,
		RenderMode: c.RenderMode,
		BaseURL:    c.BaseURL,
	}
	if c.SiteConfigs == nil {
		return result
	}

	profile := c.SiteConfigs.GetSiteConfig(hostOf(rawURL))
	if profile.UserAgent != "" {
		result.UserAgent = profile.UserAgent
	}
	if profile.RenderMode != "" {
		result.RenderMode = profile.RenderMode
	}
	if profile.BaseURL != "" {
		result.BaseURL = profile.BaseURL
	}
	result.Cookie = profile.Cookie
	result.Headers = profile.Headers
	return result
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
