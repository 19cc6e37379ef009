package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"ridecoach/internal/auth"
	"ridecoach/internal/config"
	"ridecoach/internal/logging"
	"ridecoach/internal/store"
	"ridecoach/internal/strava"
)

// errConfigCreated stops a command after an example config was written
var errConfigCreated = errors.New("example config created")

// env is what every command needs: configuration, logging and the store
type env struct {
	cfg    *config.Config
	db     *store.DB
	closer io.Closer
}

func (e *env) Close() {
	if e.db != nil {
		e.db.Close()
	}
	e.closer.Close()
}

// setupEnv loads and validates config, configures logging and opens the
// store. needStrava requires usable Strava credentials; console mirrors the
// log to stderr.
func setupEnv(opts *rootOptions, out io.Writer, needStrava, console bool) (*env, error) {
	cfg, err := loadConfig(opts, out)
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}

	validate := cfg.ValidateLocal
	if needStrava {
		validate = cfg.Validate
	}
	if err := validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		return nil, fmt.Errorf("invalid config (edit %s/config.json): %w", configDir, err)
	}

	closer, err := logging.Setup(cfg.Log, console)
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}

	db, err := store.Open()
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &env{cfg: cfg, db: db, closer: closer}, nil
}

func loadConfig(opts *rootOptions, out io.Writer) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFrom(opts.configPath)
	}

	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Fprintln(out, "No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Fprintf(out, "\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Fprintln(out, "You need to add your Strava API credentials and your FTP and max heart rate.")
		fmt.Fprintln(out, "Get credentials from: https://www.strava.com/settings/api")
		return nil, errConfigCreated
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// connectStrava returns a client backed by stored tokens. With interactive
// set, a missing or rejected token starts the browser OAuth flow; otherwise
// it is an error.
func connectStrava(ctx context.Context, e *env, out io.Writer, interactive bool) (*strava.Client, error) {
	oauthCfg := e.oauthConfig()

	stored, err := e.db.GetAuth()
	if errors.Is(err, store.ErrNoAuth) && interactive {
		fmt.Fprintln(out, "No authentication found. Starting OAuth flow...")
		stored, err = authenticate(ctx, e.db, oauthCfg, out)
	}
	if err != nil {
		return nil, fmt.Errorf("loading Strava credentials: %w", err)
	}

	tokenSource := auth.NewTokenSource(oauthCfg, auth.TokenFromAuth(stored), e.db)

	// Refresh now so a revoked token fails here, not halfway through a sync
	if _, err := tokenSource.Token(); err != nil {
		if !interactive {
			return nil, fmt.Errorf("refreshing Strava token: %w", err)
		}
		log.Warn().Err(err).Msg("stored token rejected, re-authenticating")
		fmt.Fprintln(out, "Stored token is invalid or expired. Re-authenticating...")
		if stored, err = authenticate(ctx, e.db, oauthCfg, out); err != nil {
			return nil, err
		}
		tokenSource = auth.NewTokenSource(oauthCfg, auth.TokenFromAuth(stored), e.db)
	}

	return strava.NewClient(tokenSource), nil
}

func (e *env) oauthConfig() *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     e.cfg.Strava.ClientID,
		ClientSecret: e.cfg.Strava.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", auth.CallbackPort),
	})
}

func authenticate(ctx context.Context, db *store.DB, oauthCfg *oauth2.Config, out io.Writer) (*store.Auth, error) {
	result, err := auth.Authenticate(ctx, oauthCfg, out)
	if err != nil {
		return nil, fmt.Errorf("authentication: %w", err)
	}

	stored := auth.AuthFromResult(result)
	if err := db.SaveAuth(stored); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}

	log.Info().Int64("athlete_id", result.AthleteID).Msg("authenticated with Strava")
	fmt.Fprintf(out, "\nSuccessfully authenticated as %s %s (athlete %d)\n", result.Firstname, result.Lastname, result.AthleteID)
	return stored, nil
}
