package config

import "time"

// RelayKind selects how contact-form messages leave the site.
type RelayKind string

const (
	RelayEmailJS RelayKind = "emailjs"
	RelaySMTP    RelayKind = "smtp"
	RelayLog     RelayKind = "log"
)

// Config is the top-level site configuration, corresponding to folio.yml.
type Config struct {
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	DB       DBConfig       `yaml:"db" koanf:"db"`
	Theme    ThemeConfig    `yaml:"theme" koanf:"theme"`
	Sections SectionsConfig `yaml:"sections" koanf:"sections"`
	Hero     HeroConfig     `yaml:"hero" koanf:"hero"`
	Contact  ContactConfig  `yaml:"contact" koanf:"contact"`
	Admin    AdminConfig    `yaml:"admin" koanf:"admin"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port      int    `yaml:"port" koanf:"port"`
	Templates string `yaml:"templates" koanf:"templates"`
	Static    string `yaml:"static" koanf:"static"`
	Images    string `yaml:"images" koanf:"images"`
	Resume    string `yaml:"resume" koanf:"resume"`
}

// DBConfig locates the sqlite file.
type DBConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// ThemeConfig controls the dark-mode toggle.
type ThemeConfig struct {
	CookieName string        `yaml:"cookie_name" koanf:"cookie_name"`
	Transition time.Duration `yaml:"transition" koanf:"transition"`
}

// SectionsConfig drives active-section tracking.
type SectionsConfig struct {
	Order         []string      `yaml:"order" koanf:"order"`
	NavOffset     float64       `yaml:"nav_offset" koanf:"nav_offset"`
	TopThreshold  float64       `yaml:"top_threshold" koanf:"top_threshold"`
	FrameInterval time.Duration `yaml:"frame_interval" koanf:"frame_interval"`
}

// HeroConfig is the typewriter banner.
type HeroConfig struct {
	Roles      []string      `yaml:"roles" koanf:"roles"`
	TypeDelay  time.Duration `yaml:"type_delay" koanf:"type_delay"`
	EraseDelay time.Duration `yaml:"erase_delay" koanf:"erase_delay"`
	Hold       time.Duration `yaml:"hold" koanf:"hold"`
}

// ContactConfig selects and configures the relay.
type ContactConfig struct {
	Relay        RelayKind     `yaml:"relay" koanf:"relay"`
	DismissAfter time.Duration `yaml:"dismiss_after" koanf:"dismiss_after"`
	Timeout      time.Duration `yaml:"timeout" koanf:"timeout"`
	EmailJS      EmailJSConfig `yaml:"emailjs" koanf:"emailjs"`
	SMTP         SMTPConfig    `yaml:"smtp" koanf:"smtp"`
}

// EmailJSConfig holds the routing identifiers EmailJS needs.
type EmailJSConfig struct {
	ServiceID  string `yaml:"service_id" koanf:"service_id"`
	TemplateID string `yaml:"template_id" koanf:"template_id"`
	PublicKey  string `yaml:"public_key" koanf:"public_key"`
}

// SMTPConfig holds mail server credentials.
type SMTPConfig struct {
	Host     string `yaml:"host" koanf:"host"`
	Port     string `yaml:"port" koanf:"port"`
	Username string `yaml:"username" koanf:"username"`
	Password string `yaml:"password" koanf:"password"`
	To       string `yaml:"to" koanf:"to"`
}

// AdminConfig guards the dashboard.
type AdminConfig struct {
	Username  string        `yaml:"username" koanf:"username"`
	Password  string        `yaml:"password" koanf:"password"`
	Retention time.Duration `yaml:"retention" koanf:"retention"`
}
