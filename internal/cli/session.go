package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskhub/internal/api"
	"github.com/sadopc/taskhub/internal/config"
	"github.com/sadopc/taskhub/internal/hub"
	"github.com/sadopc/taskhub/internal/model"
	"github.com/sadopc/taskhub/internal/notice"
	"github.com/sadopc/taskhub/internal/store"
)

var errNotLoggedIn = errors.New("not logged in; run `taskhub login` first")

// session is what one invocation works with: resolved config, the local
// store, a hub talking to the service through the persisted cookie jar.
type session struct {
	cfg    config.Config
	env    map[string]string
	store  *store.Store
	jar    *store.Jar
	hub    *hub.Hub
	log    *slog.Logger
	origin string

	logFile io.Closer
}

func open(cmd *cobra.Command, app *App, onNotice func(hub.Component, notice.Message)) (*session, error) {
	env := config.EnvMap(app.Environ())
	in := config.Input{ConfigPath: app.ConfigPath, Env: env, Flags: cmd.Flags()}

	// The store location comes from config, and the store holds the
	// settings layer, so resolve twice.
	cfg, err := config.Load(in)
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	s := &session{env: env, store: st}
	in.Settings = st.LookupSetting
	if s.cfg, err = config.Load(in); err != nil {
		s.Close()
		return nil, err
	}

	if s.log, s.logFile, err = openLog(s.cfg.LogFile, app.Verbose); err != nil {
		s.Close()
		return nil, err
	}

	base, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	s.origin = store.Origin(base)
	if s.jar, err = store.NewJar(st, base, s.log); err != nil {
		s.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	client, err := api.New(s.cfg.BaseURL, s.jar,
		api.WithTimeout(s.cfg.RequestTimeout),
		api.WithLogger(s.log),
	)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.hub = hub.New(client, hub.Options{
		Policy:    s.cfg.DanglingPolicy,
		NoticeTTL: s.cfg.NoticeTTL,
		Logger:    s.log,
		OnNotice:  onNotice,
	})
	s.log.Debug("session opened", "base_url", s.cfg.BaseURL, "db", s.cfg.DBPath, "sources", s.cfg.Sources)
	return s, nil
}

func (s *session) Close() {
	if s.hub != nil {
		s.hub.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
	if s.logFile != nil {
		s.logFile.Close()
	}
}

// openLog writes text records to path. The TUI owns the terminal, so
// nothing is ever logged to stderr.
func openLog(path string, verbose bool) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

// load fetches the board, mapping an expired session to errNotLoggedIn.
func (s *session) load(ctx context.Context) error {
	if err := s.hub.Load(ctx); err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) {
			return errNotLoggedIn
		}
		return fmt.Errorf("load board: %w", err)
	}
	return nil
}

func (s *session) saveProfile(u model.User) {
	err := s.store.SaveProfile(store.Profile{Origin: s.origin, UserID: u.ID, Name: u.Name, Email: u.Email})
	if err != nil {
		s.log.Warn("save profile", "err", err)
	}
}

// forget drops the saved cookies and profile for this origin.
func (s *session) forget() {
	if err := s.jar.Clear(); err != nil {
		s.log.Warn("clear cookies", "err", err)
	}
	if err := s.store.DeleteProfile(s.origin); err != nil {
		s.log.Warn("delete profile", "err", err)
	}
}
