package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/server"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization,
// exchanges the auth code for tokens, and persists the user with tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	token, err := r.doOAuth("authorization")
	if err != nil {
		return err
	}

	profile, err := r.spotify.Me(ctx, token.AccessToken)
	if err != nil {
		return fmt.Errorf("%w: failed to fetch profile: %v", shared.ErrAPIRequest, err)
	}

	user := models.NewUser(0, *profile)
	user.SetAccessToken(token.AccessToken)
	user.SetRefreshToken(token.RefreshToken)
	user.SetTokenExpiresAt(token.Expiry)

	stored, err := repositories.NewUserRepository(db).Upsert(user)
	if err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}

	r.logger.Info("user authenticated", "spotify_user_id", stored.SpotifyUserID())

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Logged in as %s (%s)\n\n", stored.DisplayName(), stored.SpotifyUserID())
	r.writePlain("You can now use: encore source pick\n")

	return nil
}

// AuthStatus shows the stored user and token expiry.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := r.currentUser(db)
	if err != nil {
		return err
	}

	r.writePlain("User: %s (%s)\n", user.DisplayName(), user.SpotifyUserID())
	if user.Email() != "" {
		r.writePlain("Email: %s\n", user.Email())
	}

	if user.TokenExpired() {
		r.writePlain("Token: ✗ expired at %s (refreshed automatically on next use)\n", user.TokenExpiresAt().Format(time.RFC822))
	} else {
		r.writePlain("Token: ✓ valid until %s\n", user.TokenExpiresAt().Format(time.RFC822))
	}

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := r.spotify.AuthURL(state)
	oauthHandler := server.NewOAuthHandler(r.spotify, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", prefix, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}
