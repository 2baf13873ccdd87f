package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "00001_create_flow_saved_states.sql", files[0])
}

func TestMigrate_UnknownCommand(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = Migrate(context.Background(), db, "sideways", nil)
	assert.ErrorContains(t, err, `unknown migration command "sideways"`)
}

func TestMaskDatabaseURL(t *testing.T) {
	masked := MaskDatabaseURL("postgres://vault:secret@db:5432/vaultflow")
	assert.NotContains(t, masked, "secret")
	assert.Contains(t, masked, "vault:")
	assert.Contains(t, masked, "@db:5432/vaultflow")

	tests := []struct {
		in   string
		want string
	}{
		{in: "postgres://vault@db:5432/vaultflow", want: "postgres://vault@db:5432/vaultflow"},
		{in: "postgres://db:5432/vaultflow", want: "postgres://db:5432/vaultflow"},
		{in: "://bad", want: "invalid-url"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskDatabaseURL(tt.in))
		})
	}
}
