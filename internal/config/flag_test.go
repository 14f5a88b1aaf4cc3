package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-D", "sqlite", "-d", "file:dev.db", "-T", "person", "-A", "admin, normal", "-s", "secret", "-t", "5",
			"-m", "mailgun", "-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			"-n", "3", "-l", "debug",
		}, expected: &Config{
			DatabaseDriver:              "sqlite",
			DatabaseDSN:                 "file:dev.db",
			UsersTable:                  "person",
			AssetVariants:               []string{"admin", "normal"},
			SecretKey:                   "secret",
			AccessTokenValidityDuration: 5 * time.Minute,
			MailerImpl:                  "mailgun",
			S3AccessKey:                 "user",
			S3SecretKey:                 "password",
			S3Bucket:                    "bucket",
			S3Region:                    "us-west-1",
			S3BaseEndpoint:              "http://endpoint",
			SeedCount:                   3,
			LogLevel:                    "debug",
		}},
		{name: "subcommand arguments are ignored", args: []string{"cmd",
			"-d", "db", "create-user", "-email", "a@example.com", "-password", "x",
		}, expected: &Config{
			DatabaseDSN:   "db",
			AssetVariants: []string{},
		}},
		{name: "bad int panics", args: []string{"cmd", "-n", "many"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
