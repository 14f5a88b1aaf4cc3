// Package app wires configuration, logging, the database and the services
// built on the identity store.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/jbkit/internal/auth"
	"github.com/dmitrijs2005/jbkit/internal/config"
	"github.com/dmitrijs2005/jbkit/internal/dbx"
	"github.com/dmitrijs2005/jbkit/internal/fixture"
	"github.com/dmitrijs2005/jbkit/internal/logging"
	"github.com/dmitrijs2005/jbkit/internal/mail"
	"github.com/dmitrijs2005/jbkit/internal/models"
	"github.com/dmitrijs2005/jbkit/internal/repositories/repomanager"
	"github.com/dmitrijs2005/jbkit/internal/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	repos   *repomanager.SQLRepositoryManager
	auth    *auth.Service
	mailer  mail.Mailer
	storage *storage.AssetService
}

// NewApp opens the configured database and builds every service. Logs go to
// out.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	logger, err := logging.New(out, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, err
	}

	dialect, err := c.Dialect()
	if err != nil {
		return nil, err
	}
	schema, err := c.Schema()
	if err != nil {
		return nil, err
	}

	impl, mc := c.Mail()
	mailer, err := mail.New(impl, mc)
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	presigner, err := storage.NewPresigner(c.Storage())
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	db, err := sql.Open(dialect.Driver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if dialect.Name == dbx.SQLite.Name {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewRepositoryManager(dialect, schema, logger)

	logger.Info(ctx, "app initialized", "dialect", dialect.Name, "users_table", schema.Table(), "mailer", string(impl))

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		repos:   repos,
		auth:    auth.NewService(repos.Users(), []byte(c.SecretKey), c.AccessTokenValidityDuration, logger),
		mailer:  mailer,
		storage: storage.NewAssetService(presigner, repos.Assets(), schema),
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) Logger() logging.Logger {
	return a.logger
}

func (a *App) Mailer() mail.Mailer {
	return a.mailer
}

func (a *App) DB() *sql.DB {
	return a.db
}

func (a *App) session() *dbx.Session {
	return dbx.NewSession(a.db, nil)
}

// Migrate applies the embedded migrations.
func (a *App) Migrate(ctx context.Context) error {
	if err := a.repos.RunMigrations(ctx, a.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	a.logger.Info(ctx, "migrations applied")
	return nil
}

// Seed writes the configured number of fixture users.
func (a *App) Seed(ctx context.Context) (fixture.Stats, error) {
	s := a.session()
	defer s.Close()
	return fixture.Seed(ctx, s, a.repos, fixture.NewFactory(fixture.DefaultSeed), a.config.SeedCount, a.logger)
}

// CreateUser creates (or refreshes the profile of) the user owning email and
// sends a welcome message.
func (a *App) CreateUser(ctx context.Context, email, password, name string, t models.UserType) (*models.User, error) {
	u := models.NewUser(email)
	u.Name = name
	if err := u.SetType(t); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}

	s := a.session()
	defer s.Close()

	created, err := a.repos.Users().Create(ctx, s, u)
	if err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "user created", "user_id", created.ID, "type", created.Type().String())

	if _, err := a.mailer.Send(ctx, mail.Message{
		To:      []string{created.Email},
		Subject: "Welcome",
		Body:    fmt.Sprintf("Hello %s, your account is ready.", created.Name),
	}); err != nil {
		// the account exists either way
		a.logger.Warn(ctx, "welcome mail failed", "user_id", created.ID, "error", err)
	}
	return created, nil
}

// SetType changes the variant of user id.
func (a *App) SetType(ctx context.Context, id int64, t models.UserType) (*models.User, error) {
	var saved *models.User
	err := dbx.InSession(ctx, a.db, nil, func(ctx context.Context, s *dbx.Session) error {
		conn, err := s.Conn(ctx)
		if err != nil {
			return err
		}
		u, err := a.repos.Users().Get(ctx, conn, id)
		if err != nil {
			return err
		}
		if err := u.SetType(t); err != nil {
			return err
		}
		saved, err = a.repos.Users().Save(ctx, s, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "user type changed", "user_id", id, "type", t.String())
	return saved, nil
}

// DeleteUser soft-deletes user id.
func (a *App) DeleteUser(ctx context.Context, id int64) error {
	err := dbx.InSession(ctx, a.db, nil, func(ctx context.Context, s *dbx.Session) error {
		return a.repos.Users().SoftDelete(ctx, s, id)
	})
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

// ListUsers returns the live users of variant t.
func (a *App) ListUsers(ctx context.Context, t models.UserType) ([]*models.User, error) {
	return a.repos.Users().ListByType(ctx, a.db, t)
}

// Login exchanges credentials for an access token.
func (a *App) Login(ctx context.Context, email, password string) (string, error) {
	return a.auth.Login(ctx, a.db, email, password)
}

// WhoAmI resolves an access token to its live user.
func (a *App) WhoAmI(ctx context.Context, token string) (*models.User, error) {
	return a.auth.Resolve(ctx, a.db, token)
}

// StartUpload records a new asset for the token's user and returns where to
// upload its content.
func (a *App) StartUpload(ctx context.Context, token, mimeType string) (*storage.Upload, error) {
	u, err := a.WhoAmI(ctx, token)
	if err != nil {
		return nil, err
	}
	s := a.session()
	defer s.Close()
	return a.storage.StartUpload(ctx, s, u, mimeType)
}

// DownloadURL returns a presigned GET for an asset. Any authenticated user
// may fetch it.
func (a *App) DownloadURL(ctx context.Context, token string, assetID int64) (string, error) {
	if _, err := a.WhoAmI(ctx, token); err != nil {
		return "", err
	}
	return a.storage.DownloadURL(ctx, a.db, assetID)
}
