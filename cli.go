package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/db"
	"github.com/Zachkp/folio/internal/theme"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Personal portfolio site",
	Long: `folio serves a single-page portfolio with a dark-mode toggle, scroll-aware
navigation and a contact form that relays messages by email.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "folio.yml", "config file path")

	themeCmd.AddCommand(themeToggleCmd)
	messagesCmd.Flags().IntVar(&messagesLimit, "limit", 20, "number of messages to show")
	rootCmd.AddCommand(serveCmd, themeCmd, messagesCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		app, err := newApp(cfg, database, buildRelay(cfg.Contact))
		if err != nil {
			return fmt.Errorf("building app: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go app.admin.pruneLoop(ctx, 24*time.Hour)

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: app.Router(),
		}
		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "folio starting on port %d\n", cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", database.Path())
		fmt.Fprintf(os.Stderr, "  Relay: %s\n", cfg.Contact.Relay)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// pruneLoop applies the retention window now and then once per interval.
func (a *Admin) pruneLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		if _, err := a.pruneVisits(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: visitor cleanup: %v\n", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

var (
	darkBadge  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("57")).Padding(0, 1)
	lightBadge = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("229")).Padding(0, 1)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func modeBadge(m theme.Mode) string {
	if m == theme.Dark {
		return darkBadge.Render(m.String())
	}
	return lightBadge.Render(m.String())
}

// cliController backs the CLI's theme with the sqlite preference table.
// Without a stored value it follows FOLIO_COLOR_SCHEME, then the terminal.
func cliController(cfg *config.Config, database *db.DB) *theme.Controller {
	prefs := theme.Chain{theme.EnvSource{}, theme.TerminalSource{}}
	return theme.NewController(database.Preferences("cli"), prefs,
		theme.WithKey(cfg.Theme.CookieName),
		theme.WithTransition(cfg.Theme.Transition),
	)
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show the command-line theme preference",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		ctl := cliController(cfg, database)
		defer ctl.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "theme %s\n", modeBadge(ctl.Mode()))
		return nil
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Flip and persist the command-line theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		ctl := cliController(cfg, database)
		defer ctl.Close()
		before := ctl.Mode()
		after := ctl.Toggle(nil)
		fmt.Fprintf(cmd.OutOrStdout(), "theme %s -> %s\n", modeBadge(before), modeBadge(after))
		return nil
	},
}

var messagesLimit int

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "List contact-form messages from the inbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		counts, err := database.CountMessages(ctx)
		if err != nil {
			return err
		}
		msgs, err := database.Messages(ctx, messagesLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d messages (%d sent, %d failed)\n", counts.Total, counts.Sent, counts.Failed)
		for _, m := range msgs {
			status := string(m.Status)
			if m.Error != "" {
				status = failStyle.Render(status + ": " + m.Error)
			}
			fmt.Fprintf(out, "\n%s %s <%s> %s\n", dimStyle.Render(m.CreatedAt.Format(time.RFC3339)), m.Name, m.Email, status)
			fmt.Fprintf(out, "  %s\n", m.Body)
		}
		return nil
	},
}
