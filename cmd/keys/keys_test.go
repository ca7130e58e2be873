package keys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys_OpenStore(t *testing.T) {
	t.Parallel()

	t.Run("unknown backend", func(t *testing.T) {
		t.Parallel()

		cfg := &keysCfg{backend: "etcd"}

		_, _, err := cfg.openStore(context.Background())
		assert.ErrorIs(t, err, errUnknownBackend)
	})

	t.Run("expire without keys", func(t *testing.T) {
		t.Parallel()

		cmd := NewKeysCmd()

		assert.ErrorIs(
			t,
			cmd.ParseAndRun(context.Background(), []string{"expire"}),
			errMissingKey,
		)
	})
}
