package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHome points the home lookup at dir for the duration of the test.
func fakeHome(t *testing.T, dir string) {
	t.Helper()
	orig := platformDir.homeDir
	platformDir.homeDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { platformDir.homeDir = orig })
}

func TestDefaultDataDir(t *testing.T) {
	fakeHome(t, "/home/ada")

	got, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/ada", ".mindstore"), got)

	cfg, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, got, cfg)
}

func TestDefaultDataDir_HomeError(t *testing.T) {
	orig := platformDir.homeDir
	platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
	t.Cleanup(func() { platformDir.homeDir = orig })

	_, err := DefaultDataDir()
	assert.Error(t, err)
}

func TestResolveConfigDir(t *testing.T) {
	fakeHome(t, "/home/ada")

	tests := []struct {
		name     string
		explicit string
		envVal   string
		want     string
	}{
		{
			name:     "explicit wins over env",
			explicit: "/explicit/config",
			envVal:   "/env/config",
			want:     "/explicit/config",
		},
		{
			name:   "env wins when explicit empty",
			envVal: "/env/config",
			want:   "/env/config",
		},
		{
			name: "home default when both empty",
			want: "/home/ada/.mindstore",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.explicit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	fakeHome(t, "/home/ada")

	tests := []struct {
		name        string
		explicit    string
		configValue string
		envVal      string
		want        string
	}{
		{
			name:        "explicit wins over all",
			explicit:    "/explicit/data",
			configValue: "/config/data",
			envVal:      "/env/data",
			want:        "/explicit/data",
		},
		{
			name:        "config value wins over env",
			configValue: "/config/data",
			envVal:      "/env/data",
			want:        "/config/data",
		},
		{
			name:   "env wins when explicit and config empty",
			envVal: "/env/data",
			want:   "/env/data",
		},
		{
			name: "home default when all empty",
			want: "/home/ada/.mindstore",
		},
		{
			name:        "tilde expands to home",
			configValue: "~/notes/store",
			want:        "/home/ada/notes/store",
		},
		{
			name:     "tilde inside a name is literal",
			explicit: "/data/~x",
			want:     "/data/~x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.explicit, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_RelativeBecomesAbsolute(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvDataDir, "")
	cwd, err := os.Getwd()
	require.NoError(t, err)

	got, err := ResolveConfigDir("relative/path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "relative", "path"), got)

	got, err = ResolveDataDir("", "relative/config")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
}
