package serve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sig-0/fxcross/apikey"
	"github.com/sig-0/fxcross/storage"
)

// issueBootKey issues an API key for a store that does not outlive the process
func issueBootKey(ctx context.Context, logger *slog.Logger, store storage.KeyStorage) error {
	key, err := apikey.NewManager(store).Issue(ctx)
	if err != nil {
		return fmt.Errorf("unable to issue boot API key, %w", err)
	}

	logger.Info(
		"issued API key for the in-memory store",
		"api_key", key,
	)

	return nil
}
