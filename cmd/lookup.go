package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/trackdex/internal/formatter"
	"github.com/desertthunder/trackdex/internal/models"
	"github.com/desertthunder/trackdex/internal/server"
	"github.com/desertthunder/trackdex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Token prints a bearer token in the same shape as the token route.
func (r *Runner) Token(ctx context.Context, cmd *cli.Command) error {
	if err := r.wire(ctx); err != nil {
		return err
	}

	token, err := r.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}

	r.logger.Debug("token ready", "expires_at", token.Expiry)
	return r.writeJSON(server.TokenResponse{AccessToken: token.AccessToken, TokenType: "Bearer"}, cmd.Bool("pretty"))
}

// Track prints a track document.
func (r *Runner) Track(ctx context.Context, cmd *cli.Command) error {
	return r.lookup(ctx, cmd, models.KindTrack)
}

// Artist prints an artist document.
func (r *Runner) Artist(ctx context.Context, cmd *cli.Command) error {
	return r.lookup(ctx, cmd, models.KindArtist)
}

func (r *Runner) lookup(ctx context.Context, cmd *cli.Command, kind models.ResourceKind) error {
	id, err := requireID(cmd, kind)
	if err != nil {
		return err
	}
	if err := r.wire(ctx); err != nil {
		return err
	}

	r.logger.Info("fetching "+string(kind), "id", id)

	var body json.RawMessage
	if kind == models.KindArtist {
		body, err = r.catalog.Artist(ctx, id)
	} else {
		body, err = r.catalog.Track(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", kind, err)
	}

	if cmd.Bool("raw") {
		return r.writeRaw(body)
	}
	return r.writeJSON(body, cmd.Bool("pretty"))
}

// Features prints the audio features for a track as JSON (null when absent), CSV or text.
func (r *Runner) Features(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd, models.KindTrack)
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.wire(ctx); err != nil {
		return err
	}

	r.logger.Info("fetching audio features", "id", id)

	features, err := r.features.AudioFeatures(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch audio features: %w", err)
	}
	if features == nil {
		r.logger.Warn("no audio features available", "id", id)
	}

	if format == formatter.FormatJSON {
		return r.writeJSON(features, cmd.Bool("pretty"))
	}

	var records []models.AudioFeatures
	if features != nil {
		records = append(records, *features)
	}

	var data []byte
	if format == formatter.FormatCSV {
		data, err = formatter.FeaturesToCSV(records)
	} else {
		data, err = formatter.FeaturesToText(records)
	}
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// requireID reads and validates the id argument before any network call.
func requireID(cmd *cli.Command, kind models.ResourceKind) (string, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return "", fmt.Errorf("%w: %s ID", shared.ErrMissingArgument, kind)
	}
	if err := models.ValidateID(kind, id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *Runner) writeRaw(body []byte) error {
	if _, err := r.output.Write(body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}
