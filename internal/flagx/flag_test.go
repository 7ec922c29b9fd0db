package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "equals form",
			args:         []string{"-config=alt.json", "-x", "records.xlsx"},
			allowedFlags: []string{"-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "unknown flags and positionals ignored",
			args:         []string{"scan", "-x", "1", "--y=2"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag followed by another flag has no value",
			args:         []string{"-l", "-b", "/srv/haccare"},
			allowedFlags: []string{"-l", "-b"},
			want:         []string{"-l", "-b", "/srv/haccare"},
		},
		{
			name:         "flag without value at end is kept",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "repeated flag preserved in order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Run("short flag", func(t *testing.T) {
		t.Setenv(ConfigEnv, "")
		assert.Equal(t, "/etc/haccare/web.json", ConfigPath([]string{"-c", "/etc/haccare/web.json"}))
	})

	t.Run("long flag wins over env", func(t *testing.T) {
		t.Setenv(ConfigEnv, "/from/env.json")
		assert.Equal(t, "/from/flag.json", ConfigPath([]string{"-config", "/from/flag.json"}))
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(ConfigEnv, "/from/env.json")
		assert.Equal(t, "/from/env.json", ConfigPath([]string{"-a", ":8080"}))
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv(ConfigEnv, "")
		assert.Empty(t, ConfigPath(nil))
	})

	t.Run("last flag wins", func(t *testing.T) {
		t.Setenv(ConfigEnv, "")
		assert.Equal(t, "/2.json", ConfigPath([]string{"-c", "/1.json", "-config", "/2.json"}))
	})
}
