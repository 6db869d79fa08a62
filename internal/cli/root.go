// Package cli implements the campusmarket command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"campusmarket/internal/app/catalog"
	"campusmarket/internal/app/messaging"
	"campusmarket/internal/app/session"
	"campusmarket/internal/app/wishlist"
	"campusmarket/internal/infra/api"
	"campusmarket/internal/infra/config"
	"campusmarket/internal/infra/obs"
	"campusmarket/internal/infra/storage/pebble"
)

// APIBaseKey stores a per-machine API root that overrides CMP_API_BASE.
const APIBaseKey = "cmp_api_base"

// Options replace process-level dependencies, mainly for tests.
type Options struct {
	Version string
	Stdout  io.Writer
	Stderr  io.Writer
	// Store replaces the pebble state directory.
	Store session.Store
	// Config replaces config.Load.
	Config *config.Config
}

func Execute(version string) error {
	return newRootCmd(Options{Version: version}).Execute()
}

type rootFlags struct {
	apiBase string
}

func newRootCmd(opts Options) *cobra.Command {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "campusmarket",
		Short:         "Campus Market Place from the terminal",
		Long:          "Browse listings, keep a wishlist and chat with buyers and sellers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       opts.Version,
	}
	cmd.SetOut(opts.Stdout)
	cmd.SetErr(opts.Stderr)
	cmd.PersistentFlags().StringVar(&flags.apiBase, "api", "", "API base URL (overrides the saved and environment values)")

	open := func() (*app, error) { return openApp(opts, flags) }
	cmd.AddCommand(
		newLoginCmd(open),
		newRegisterCmd(open),
		newLogoutCmd(open),
		newWhoamiCmd(open),
		newAPIBaseCmd(open),
		newListingsCmd(open),
		newWishlistCmd(open),
		newChatCmd(open),
		newInboxCmd(open),
		newWatchCmd(open),
		newSandboxCmd(opts),
	)
	return cmd
}

// app is the per-invocation client wiring.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	out      io.Writer
	store    session.Store
	session  *session.Context
	client   *api.Client
	catalog  *catalog.Service
	wishlist *wishlist.Wishlist
	closers  []func() error
}

type opener func() (*app, error)

func loadConfig(opts Options) (config.Config, error) {
	if opts.Config != nil {
		return *opts.Config, nil
	}
	return config.Load()
}

func openApp(opts Options, flags *rootFlags) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel, opts.Stderr)

	a := &app{cfg: cfg, logger: logger, out: opts.Stdout, store: opts.Store}
	if a.store == nil {
		store, err := pebble.Open(cfg.StateDir)
		if err != nil {
			return nil, err
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
	}

	a.session = session.New(a.store, logger)
	if _, err := a.session.Restore(); err != nil {
		logger.Warn("session restore failed", "error", err)
	}

	base, err := a.apiBase(flags.apiBase)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client, err = api.NewClient(api.Config{BaseURL: base, Timeout: cfg.APITimeout}, a.session, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.catalog = &catalog.Service{API: a.client, Session: a.session, Logger: logger}
	a.wishlist, err = wishlist.Load(a.store)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) apiBase(flag string) (string, error) {
	if base := strings.TrimSpace(flag); base != "" {
		return base, nil
	}
	saved, ok, err := a.store.Get(APIBaseKey)
	if err != nil {
		return "", fmt.Errorf("read saved api base: %w", err)
	}
	if ok && strings.TrimSpace(string(saved)) != "" {
		return strings.TrimSpace(string(saved)), nil
	}
	return a.cfg.APIBase, nil
}

func (a *app) messenger(opts messaging.Options) *messaging.Messenger {
	if opts.Interval <= 0 {
		opts.Interval = a.cfg.InboxRefresh
	}
	opts.OptimisticAppend = opts.OptimisticAppend || a.cfg.OptimisticAppend
	if opts.Logger == nil {
		opts.Logger = a.logger
	}
	return messaging.NewMessenger(a.client, a.session, opts)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}

// withApp opens the client wiring for one command run.
func withApp(open opener, fn func(a *app) error) error {
	a, err := open()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// userMessage turns known failures into the alerts the client shows.
func userMessage(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, messaging.ErrNoSession):
		return errors.New("Please login to message the seller.")
	case errors.Is(err, messaging.ErrOwnListing):
		return errors.New("This is your own listing.")
	case errors.Is(err, catalog.ErrLoginRequired):
		return errors.New("Please login to post an item.")
	case errors.Is(err, session.ErrNotSignedIn):
		return errors.New("Please login first.")
	}
	return errors.New(api.Message(err))
}
