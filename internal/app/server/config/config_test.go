package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplicas(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []ReplicaSpec
		wantErr bool
	}{
		{
			name: "single sqlite",
			raw:  "sqlite=./data/replica.db",
			want: []ReplicaSpec{{Kind: ReplicaSQLite, Target: "./data/replica.db"}},
		},
		{
			name: "mixed list with spaces",
			raw:  " bdo=https://bdo.example.com , POSTGRES=postgres://u:p@localhost/v ",
			want: []ReplicaSpec{
				{Kind: ReplicaBDO, Target: "https://bdo.example.com"},
				{Kind: ReplicaPostgres, Target: "postgres://u:p@localhost/v"},
			},
		},
		{
			name: "empty items skipped",
			raw:  "bdo=http://a,,",
			want: []ReplicaSpec{{Kind: ReplicaBDO, Target: "http://a"}},
		},
		{name: "missing target", raw: "bdo=", wantErr: true},
		{name: "no separator", raw: "bdo", wantErr: true},
		{name: "unknown kind", raw: "redis=localhost:6379", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReplicas(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, ":3000", cfg.Server.RunAddress)
	assert.Equal(t, 8*time.Second, cfg.Replication.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Replication.RetryInterval)
	assert.Equal(t, "vigils", cfg.Replication.Hash)
	assert.Equal(t, 10.0, cfg.Search.RadiusMiles)
	assert.Equal(t, 2*time.Minute, cfg.Admin.Window)
	assert.Equal(t, []ReplicaSpec{{Kind: ReplicaSQLite, Target: "./data/replica.db"}}, cfg.Replication.Replicas)
	assert.Equal(t, "", cfg.Logger.Level, "empty means the env default")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("RUN_ADDRESS", ":8080")
	t.Setenv("REPLICAS", "bdo=http://bdo.local")
	t.Setenv("REPLICA_TIMEOUT", "3s")
	t.Setenv("ADMIN_PUBLIC_KEY", "  02abc  ")
	t.Setenv("LOG_LEVEL", " WARN ")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, ":8080", cfg.Server.RunAddress)
	assert.Equal(t, 3*time.Second, cfg.Replication.Timeout)
	assert.Equal(t, "02abc", cfg.Admin.PublicKey)
	assert.Equal(t, []ReplicaSpec{{Kind: ReplicaBDO, Target: "http://bdo.local"}}, cfg.Replication.Replicas)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run_address: \":9999\"\nsearch_radius_miles: 25\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.RunAddress)
	assert.Equal(t, 25.0, cfg.Search.RadiusMiles)
}

func TestLoad_InvalidRadius(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SEARCH_RADIUS_MILES", "-1")

	_, err := Load("")
	assert.Error(t, err)
}
