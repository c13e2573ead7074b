package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jrsteele09/go-case-portal/apiclient"
	"github.com/jrsteele09/go-case-portal/auth"
	"github.com/jrsteele09/go-case-portal/cases"
	"github.com/jrsteele09/go-case-portal/complaints"
	"github.com/jrsteele09/go-case-portal/credentials"
	"github.com/jrsteele09/go-case-portal/credentials/filerepo"
	"github.com/jrsteele09/go-case-portal/credentials/redisrepo"
	credentialsrepofake "github.com/jrsteele09/go-case-portal/credentials/repofake"
	"github.com/jrsteele09/go-case-portal/evidence"
	"github.com/jrsteele09/go-case-portal/guard"
	"github.com/jrsteele09/go-case-portal/internal/config"
	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/jrsteele09/go-case-portal/internal/logging"
	"github.com/jrsteele09/go-case-portal/sessions"
	"github.com/jrsteele09/go-case-portal/suspects"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// app is the client stack one command runs against.
type app struct {
	cfg      config.Config
	logger   zerolog.Logger
	out      io.Writer
	registry *prometheus.Registry
	closers  []io.Closer

	// signingOut is set while the user signs out on purpose.
	signingOut bool

	session    *sessions.Session
	client     *apiclient.Client
	guard      *guard.Guard
	auth       *auth.Service
	complaints *complaints.Service
	cases      *cases.Service
	evidence   *evidence.Service
	suspects   *suspects.Service
}

func newApp(ctx context.Context, configPath string, out, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      cfg,
		logger:   logging.New(logOut, cfg.GetLogLevel(), cfg.GetEnv()),
		out:      out,
		registry: prometheus.NewRegistry(),
		guard:    guard.New(),
	}

	repo, err := a.credentialsRepo()
	if err != nil {
		return nil, err
	}

	wasSignedIn := false
	a.session, err = sessions.New(ctx, credentials.NewStore(repo),
		sessions.WithLogger(a.logger),
		sessions.WithOnChange(func(st sessions.State) {
			if wasSignedIn && !st.IsAuthenticated && !a.signingOut {
				fmt.Fprintln(logOut, "Your session has ended. Please sign in again.")
			}
			wasSignedIn = st.IsAuthenticated
		}),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	wasSignedIn = a.session.IsAuthenticated()

	a.client = apiclient.New(cfg.GetAPIURL(), a.session,
		apiclient.WithTimeout(cfg.GetRequestTimeout()),
		apiclient.WithRefreshTimeout(cfg.GetRefreshTimeout()),
		apiclient.WithRefreshPath(cfg.GetRefreshPath()),
		apiclient.WithLogger(a.logger),
		apiclient.WithMetrics(apiclient.NewMetrics(a.registry)),
	)
	a.auth, err = auth.NewService(a.client, a.session, auth.WithLogger(a.logger))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.complaints = complaints.NewService(a.client)
	a.cases = cases.NewService(a.client)
	a.evidence = evidence.NewService(a.client)
	a.suspects = suspects.NewService(a.client)
	return a, nil
}

// credentialsRepo picks the credential storage named by the config.
func (a *app) credentialsRepo() (credentials.Repo, error) {
	switch backend := a.cfg.GetStorageBackend(); backend {
	case config.StorageFile:
		return filerepo.New(a.cfg.GetCredentialsPath()), nil
	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{Addr: a.cfg.GetRedisAddr()})
		a.closers = append(a.closers, rdb)
		return redisrepo.New(rdb, a.cfg.GetRedisPrefix()), nil
	case config.StorageMemory:
		return credentialsrepofake.NewFakeCredentialsRepo(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close")
		}
	}
}

// printMetrics writes the client counters as "name{labels} value" lines.
func (a *app) printMetrics(w io.Writer) {
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to gather metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			sort.Strings(labels)
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
		}
	}
}

// describe renders err for the terminal. Backend errors get the friendly
// message plus any field details.
func describe(err error) string {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		if msg := apiclient.Message(err); !strings.HasPrefix(msg, "Unexpected error") {
			return msg
		}
		return err.Error()
	}
	msg := apiclient.Message(err)
	fields, ok := apiErr.Details.(map[string]any)
	if !ok {
		return msg
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		if k == "detail" && fields[k] == msg {
			continue
		}
		fmt.Fprintf(&b, "\n  %s: %v", k, fields[k])
	}
	return b.String()
}
