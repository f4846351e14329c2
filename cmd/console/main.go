package main

import (
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"sanraw/console/internal/backend"
	"sanraw/console/internal/backend/memory"
	"sanraw/console/internal/backend/rest"
	"sanraw/console/internal/bills"
	"sanraw/console/internal/catalog"
	"sanraw/console/internal/config"
	"sanraw/console/internal/session"
	"sanraw/console/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	log := newLogger(cfg.LogLevel)

	sess := session.New(cfg.APIToken)
	if sess.Authenticated() && sess.Expired(time.Now()) {
		log.Warn("API token is already expired; the backend will reject requests")
	}

	var client backend.Client
	if cfg.DemoMode() {
		client = memory.NewSeeded()
		log.Info("backend: in-memory demo store")
	} else {
		httpClient := &http.Client{Timeout: cfg.RequestTimeout}
		client = rest.New(cfg.BackendURL, sess, httpClient, log)
		log.WithField("url", cfg.BackendURL).Info("backend: rest")
	}

	cat := catalog.New(client)
	svc := bills.New(client, log)

	model := ui.New(cat, svc, cfg.ExportDir, cfg.DemoMode(), log)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("console error: %v", err)
	}
}

// newLogger writes to a file instead of stderr so log lines never tear the
// terminal UI.
func newLogger(level string) *logrus.Logger {
	log := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	log.SetFormatter(&logrus.JSONFormatter{})

	f, err := os.OpenFile("console.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return log
	}
	log.SetOutput(f)
	return log
}
