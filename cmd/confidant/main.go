// confidant is a confidential-VM web service that authenticates users through
// an OAuth identity provider and proves its own integrity with hardware
// attestation. At startup it obtains a TLS certificate over ACME HTTP-01,
// keeping every piece of key material in RAM only, then serves HTTPS until
// terminated.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	acmeclient "github.com/confidant-sh/confidant/acme/client"
	"github.com/confidant-sh/confidant/attest"
	"github.com/confidant-sh/confidant/challenge"
	"github.com/confidant-sh/confidant/cmd"
	"github.com/confidant-sh/confidant/config"
	"github.com/confidant-sh/confidant/identity"
	"github.com/confidant-sh/confidant/issuer"
	"github.com/confidant-sh/confidant/oauth"
	"github.com/confidant-sh/confidant/server"
	"github.com/confidant-sh/confidant/tlsconf"
	"github.com/confidant-sh/confidant/web"
)

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	cfg, err := config.Load()
	cmd.FailOnError(err, "loading configuration")

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := cmd.CatchSignals(context.Background())

	client, err := acmeclient.New(acmeclient.Config{
		DirectoryURL: cfg.DirectoryURL,
		CACert:       cfg.CACertPath,
		ContactEmail: cfg.ContactEmail,
	}, logger)
	cmd.FailOnError(err, "creating ACME client")

	// The staging store is shared between the issuer (writer) and the
	// challenge responder (reader) for the lifetime of the process.
	store := challenge.NewStore()

	// The authority validates HTTP-01 over plaintext before any certificate
	// exists, so the challenge responder runs on its own listener until
	// issuance completes.
	stopBootstrap := server.RunBootstrap(cfg.ChallengeAddr, challenge.Handler(store, logger), logger)

	logger.Info("requesting certificate", "domain", cfg.Domain, "directory", cfg.DirectoryURL)
	iss := issuer.New(client, store, logger)
	cert, err := iss.Issue(ctx, cfg.Domain)
	stopBootstrap()
	cmd.FailOnError(err, "obtaining certificate")

	tlsConfig, err := tlsconf.Activate(cert.ChainPEM, cert.PrivateKeyPEM)
	cmd.FailOnError(err, "activating certificate")
	logger.Info("certificate activated", "domain", cfg.Domain)

	provider := oauth.NewProvider(cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.RedirectURI())

	handlers := &web.Handlers{
		Domain:    cfg.Domain,
		OAuth:     provider,
		Seen:      identity.NewSeenSet(),
		Attestor:  attest.Detect(logger),
		Challenge: store,
		Log:       logger,
	}

	err = server.Run(ctx, cfg.ListenAddr, handlers.Router(), tlsConfig, logger)
	cmd.FailOnError(err, "running https server")
	logger.Info("shutdown complete")
}
