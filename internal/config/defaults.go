package config

import "time"

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      8080,
			Templates: "templates/*",
			Static:    "./static",
			Images:    "./images",
			Resume:    "./static/resume.pdf",
		},
		DB: DBConfig{Path: "data/folio.db"},
		Theme: ThemeConfig{
			CookieName: "theme",
			Transition: 1500 * time.Millisecond,
		},
		Sections: SectionsConfig{
			Order:         []string{"home", "about", "experience", "projects", "skills", "contact"},
			NavOffset:     100,
			TopThreshold:  100,
			FrameInterval: time.Second / 60,
		},
		Hero: HeroConfig{
			Roles:      []string{"Web Developer", "Go Enthusiast", "Problem Solver"},
			TypeDelay:  100 * time.Millisecond,
			EraseDelay: 50 * time.Millisecond,
			Hold:       1500 * time.Millisecond,
		},
		Contact: ContactConfig{
			Relay:        RelayLog,
			DismissAfter: 3 * time.Second,
			Timeout:      15 * time.Second,
			SMTP: SMTPConfig{
				Host: "smtp.gmail.com",
				Port: "587",
			},
		},
		Admin: AdminConfig{
			Retention: 365 * 24 * time.Hour,
		},
	}
}
