package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/session"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin persists a bearer token and user record through the identity
// gate. Token issuance stays external: the token comes from the --token
// flag or is extracted from a browser cURL capture via --curl-file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	token := cmd.String("token")
	curlFile := cmd.String("curl-file")
	userID := cmd.String("user")
	displayName := cmd.String("name")

	if token == "" && curlFile == "" {
		return fmt.Errorf("%w: either --token or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if token != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --token and --curl-file", shared.ErrInvalidArgument)
	}

	if curlFile != "" {
		curlHeaders, err := shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		token = curlHeaders.BearerToken()
		if token == "" {
			return fmt.Errorf("%w: no bearer token in cURL headers", shared.ErrInvalidInput)
		}
		r.logger.Info("extracted bearer token from cURL capture", "file", curlFile)
	}

	st, err := r.buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	record := session.UserRecord{ID: userID, DisplayName: displayName}
	if err := st.gate.Save(record, &oauth2.Token{AccessToken: token}); err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}

	r.logger.Info("identity saved", "user", userID)
	return r.writePlain("✓ Signed in as %s\n", userID)
}

// AuthLogout clears the stored identity.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	st, err := r.buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	st.gate.Invalidate()
	return r.writePlain("✓ Signed out, session is now guest\n")
}

// AuthStatus reports the gate state and counter service health.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	st, err := r.buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	if ident := st.gate.Current(); ident != nil {
		name := ident.DisplayName
		if name == "" {
			name = ident.UserID
		}
		r.writePlain("Identity: ✓ %s (plays are counted)\n", name)
	} else {
		r.writePlain("Identity: guest (plays are not counted)\n")
	}

	resp, err := r.api.Get(ctx, "/health")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	return r.writePlain("Service: ✓ healthy\n")
}
