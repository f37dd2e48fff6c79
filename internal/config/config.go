// Package config loads the site configuration from an optional YAML file
// with FOLIO_* environment overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Zachkp/folio/internal/sections"
)

// EnvPrefix marks environment overrides. A double underscore separates
// nesting levels: FOLIO_CONTACT__SMTP__HOST -> contact.smtp.host.
const EnvPrefix = "FOLIO_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Hosting platforms hand out the port as plain PORT.
	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", p, err)
		}
		cfg.Server.Port = port
	}

	return cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

var validRelays = map[RelayKind]bool{
	RelayEmailJS: true,
	RelaySMTP:    true,
	RelayLog:     true,
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Templates == "" {
		return fmt.Errorf("server.templates is required")
	}
	if c.DB.Path == "" {
		return fmt.Errorf("db.path is required")
	}
	if c.Theme.CookieName == "" {
		return fmt.Errorf("theme.cookie_name is required")
	}
	if c.Theme.Transition <= 0 {
		return fmt.Errorf("theme.transition must be positive")
	}

	if len(c.Sections.Order) == 0 {
		return fmt.Errorf("sections.order must list at least one section")
	}
	seen := make(map[string]bool, len(c.Sections.Order))
	for _, id := range c.Sections.Order {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("sections.order contains an empty id")
		}
		if seen[id] {
			return fmt.Errorf("sections.order lists %q twice", id)
		}
		if _, ok := sections.Parse(sections.DefaultOrder, id); !ok {
			return fmt.Errorf("sections.order: unknown section %q", id)
		}
		seen[id] = true
	}
	if c.Sections.FrameInterval <= 0 {
		return fmt.Errorf("sections.frame_interval must be positive")
	}
	if len(c.Hero.Roles) == 0 {
		return fmt.Errorf("hero.roles must list at least one role")
	}

	if !validRelays[c.Contact.Relay] {
		return fmt.Errorf("invalid contact.relay %q: must be one of emailjs, smtp, log", c.Contact.Relay)
	}
	if c.Contact.DismissAfter <= 0 {
		return fmt.Errorf("contact.dismiss_after must be positive")
	}
	switch c.Contact.Relay {
	case RelayEmailJS:
		e := c.Contact.EmailJS
		if e.ServiceID == "" || e.TemplateID == "" || e.PublicKey == "" {
			return fmt.Errorf("contact.emailjs needs service_id, template_id and public_key")
		}
	case RelaySMTP:
		s := c.Contact.SMTP
		if s.Username == "" || s.Password == "" || s.To == "" {
			return fmt.Errorf("contact.smtp needs username, password and to")
		}
	}
	return nil
}
