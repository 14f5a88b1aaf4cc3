package fixture

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jbkit/internal/logging"
	"github.com/dmitrijs2005/jbkit/internal/models"
	"github.com/dmitrijs2005/jbkit/internal/repositories/repomanager"
	"github.com/dmitrijs2005/jbkit/internal/repositories/users"
	"github.com/dmitrijs2005/jbkit/internal/upsert"
)

var ErrBadCount = errors.New("fixture: seed count must be positive")

// Session is the unit of work Seed writes through.
type Session interface {
	upsert.Session
	Rollback() error
}

// Stats counts what Seed wrote.
type Stats struct {
	Users  int
	Assets int
}

// AdminEvery makes every n-th seeded user an admin.
const AdminEvery = 5

// Seed writes count users, each with one asset, through s. Rows are upserted
// without per-row commits and committed once at the end; on any error the
// session is rolled back. Seeding twice with the same factory seed updates
// the same rows.
func Seed(ctx context.Context, s Session, m repomanager.RepositoryManager, f *Factory, count int, l logging.Logger) (Stats, error) {
	var st Stats
	if count <= 0 {
		return st, ErrBadCount
	}
	if l == nil {
		l = logging.Discard()
	}

	fail := func(err error) (Stats, error) {
		if rbErr := s.Rollback(); rbErr != nil {
			l.Error(ctx, "seed rollback failed", "error", rbErr)
		}
		return Stats{}, err
	}

	for i := 1; i <= count; i++ {
		u, err := f.User()
		if err != nil {
			return fail(err)
		}
		if i%AdminEvery == 0 {
			if err := u.SetType(models.UserTypeAdmin); err != nil {
				return fail(err)
			}
		}

		_, err = m.Users().Upsert(ctx, s, u, users.Options{
			Conflict: users.EmailConflict(),
			Set:      append([]string{models.ColUserType, models.ColPassword}, models.ProfileColumns...),
		})
		if err != nil {
			return fail(fmt.Errorf("seed user %s: %w", u.Email, err))
		}
		st.Users++

		conn, err := s.Conn(ctx)
		if err != nil {
			return fail(err)
		}
		stored, err := m.Users().GetByEmail(ctx, conn, u.Email)
		if err != nil {
			return fail(fmt.Errorf("seed user %s: %w", u.Email, err))
		}

		var owner int64
		if m.Schema().HasAssets(stored.Type()) {
			owner = stored.ID
		}
		if _, err := m.Assets().Upsert(ctx, s, f.Asset(owner), false); err != nil {
			return fail(fmt.Errorf("seed asset: %w", err))
		}
		st.Assets++
	}

	if err := s.Commit(); err != nil {
		return fail(err)
	}
	l.Info(ctx, "database seeded", "users", st.Users, "assets", st.Assets)
	return st, nil
}
