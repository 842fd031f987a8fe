package firebase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFirebase_RequiresCredentials(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := InitFirebase(context.Background(), "", logger)
	assert.ErrorIs(t, err, ErrNotConfigured)

	missing := filepath.Join(t.TempDir(), "firebase_credentials.json")
	_, err = InitFirebase(context.Background(), missing, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

