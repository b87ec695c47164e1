package version

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBuildVars(t *testing.T, version, commit, date string) {
	t.Helper()
	v, c, d := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
}

func TestGetInfo_Ldflags(t *testing.T) {
	setBuildVars(t, "1.4.0", "9f8e7d6c5b4a", "2025-03-02T08:00:00Z")

	info := GetInfo()
	assert.Equal(t, "1.4.0", info.Version)
	assert.Equal(t, "9f8e7d6c5b4a", info.Commit)
	assert.Equal(t, "2025-03-02T08:00:00Z", info.Date)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestGetInfo_Defaults(t *testing.T) {
	setBuildVars(t, "dev", "unknown", "unknown")

	info := GetInfo()
	// Test binaries may or may not carry VCS stamps; either way nothing is empty.
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Commit)
	assert.NotEmpty(t, info.Date)
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "long commit is truncated",
			info: Info{Version: "1.0.0", Commit: "abc123def456", Date: "2025-01-01", GoVersion: "go1.24.6", Platform: "linux/amd64"},
			want: "specplan 1.0.0 (abc123de) built 2025-01-01 with go1.24.6 for linux/amd64",
		},
		{
			name: "short commit kept",
			info: Info{Version: "1.0.0-rc1", Commit: "abc123", Date: "2025-01-01", GoVersion: "go1.24.6", Platform: "darwin/arm64"},
			want: "specplan 1.0.0-rc1 (abc123) built 2025-01-01 with go1.24.6 for darwin/arm64",
		},
		{
			name: "dev build",
			info: Info{Version: "dev", Commit: "unknown", Date: "unknown", GoVersion: "go1.24.6", Platform: "linux/arm64"},
			want: "specplan dev (unknown) built unknown with go1.24.6 for linux/arm64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
			assert.Equal(t, tt.info.Version, tt.info.Short())
		})
	}
}

func TestInfoJSON(t *testing.T) {
	info := Info{Version: "1.2.3", Commit: "abc", Date: "2024-01-01", GoVersion: "go1.24.6", Platform: "linux/amd64"}

	data, err := json.Marshal(info)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.2.3","commit":"abc","date":"2024-01-01","goVersion":"go1.24.6","platform":"linux/amd64"}`, string(data))
}
