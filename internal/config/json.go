package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/jbkit/internal/flagx"
	"github.com/dmitrijs2005/jbkit/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations use timex.Duration so
// both "15m" and integer nanoseconds are accepted. Fields left out of the
// file keep their current values.
type JsonConfig struct {
	DatabaseDriver              string         `json:"database_driver"`
	DatabaseDSN                 string         `json:"database_dsn"`
	UsersTable                  string         `json:"users_table"`
	AssetVariants               []string       `json:"asset_variants"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	MailerImpl                  string         `json:"mailer"`
	EmailSendingEnabled         *bool          `json:"email_sending_enabled"`
	SupportEmail                string         `json:"support_email"`
	MailgunBaseURL              string         `json:"mailgun_base_url"`
	MailgunAPIKey               string         `json:"mailgun_api_key"`
	MailgunDefaultSender        string         `json:"mailgun_default_sender"`
	S3AccessKey                 string         `json:"s3_access_key"`
	S3SecretKey                 string         `json:"s3_secret_key"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	SeedCount                   int            `json:"seed_count"`
	LogLevel                    string         `json:"log_level"`
	LogFormat                   string         `json:"log_format"`
}

// parseJson loads the file named by -c or -config, if any, over config.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.UsersTable, c.UsersTable)
	if c.AssetVariants != nil {
		config.AssetVariants = c.AssetVariants
	}
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.MailerImpl, c.MailerImpl)
	if c.EmailSendingEnabled != nil {
		config.EmailSendingEnabled = *c.EmailSendingEnabled
	}
	setString(&config.SupportEmail, c.SupportEmail)
	setString(&config.MailgunBaseURL, c.MailgunBaseURL)
	setString(&config.MailgunAPIKey, c.MailgunAPIKey)
	setString(&config.MailgunDefaultSender, c.MailgunDefaultSender)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.SeedCount != 0 {
		config.SeedCount = c.SeedCount
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
}
