package entrypoint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/readtrack/internal/config"
	"github.com/mrlokans/readtrack/internal/goodreads"
	"github.com/mrlokans/readtrack/internal/importer"
	"github.com/mrlokans/readtrack/internal/logger"
)

// ImportFile imports every row of a Goodreads export for the user owning
// token. An empty token selects the default local user.
func ImportFile(ctx context.Context, cfg *config.Config, path, token string) (importer.Summary, error) {
	log := logger.Setup(cfg.Log)

	app, err := Build(cfg, log)
	if err != nil {
		return importer.Summary{}, err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	userID, err := resolveUser(app, token)
	if err != nil {
		return importer.Summary{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return importer.Summary{}, err
	}
	defer f.Close()

	return app.Importer.ImportFile(ctx, userID, f)
}

func resolveUser(app *App, token string) (uint, error) {
	if token == "" {
		user, err := app.Users.EnsureDefaultUser()
		if err != nil {
			return 0, fmt.Errorf("failed to provision default user: %w", err)
		}
		return user.ID, nil
	}
	user, err := app.Users.GetByToken(token)
	if err != nil {
		return 0, importer.ErrUnauthenticated
	}
	return user.ID, nil
}

// ParseFile writes the normalized rows of a Goodreads export to out as JSON.
func ParseFile(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := goodreads.ParseExport(f)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// CreateUser adds an account and returns its API token.
func CreateUser(cfg *config.Config, username, email string) (string, error) {
	log := logger.Setup(cfg.Log)

	app, err := Build(cfg, log)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	user, err := app.Users.Create(username, email)
	if err != nil {
		return "", err
	}
	return user.Token, nil
}

// RotateToken issues a new API token for username. The previous token stops
// working immediately.
func RotateToken(cfg *config.Config, username string) (string, error) {
	log := logger.Setup(cfg.Log)

	app, err := Build(cfg, log)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	user, err := app.Users.GetByUsername(username)
	if err != nil {
		return "", fmt.Errorf("find user %q: %w", username, err)
	}
	return app.Users.RotateToken(user.ID)
}
