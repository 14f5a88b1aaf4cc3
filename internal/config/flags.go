package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/jbkit/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-D string   database driver ("postgres" or "sqlite")
//	-d string   database DSN
//	-T string   users table
//	-A string   comma-separated variants with linked assets
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-m string   mailer implementation ("mailgun" or "dummy")
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-n int      number of users to seed
//	-l string   log level
//
// Only the flags listed above are picked out of os.Args, so subcommand
// arguments pass through untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-D", "-d", "-T", "-A", "-s", "-t", "-m", "-u", "-p", "-b", "-g", "-e", "-n", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDriver, "D", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.UsersTable, "T", config.UsersTable, "users table")
	assetVariants := fs.String("A", strings.Join(config.AssetVariants, ","), "variants with linked assets")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.MailerImpl, "m", config.MailerImpl, "mailer implementation")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.IntVar(&config.SeedCount, "n", config.SeedCount, "users to seed")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AssetVariants = splitList(*assetVariants)
	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
