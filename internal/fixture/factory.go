// Package fixture builds deterministic fake users and assets for tests and
// for seeding development databases.
package fixture

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dmitrijs2005/jbkit/internal/cryptox"
	"github.com/dmitrijs2005/jbkit/internal/models"
)

// DefaultSeed makes repeated runs produce the same data.
const DefaultSeed = 420

var (
	firstNames = []string{"Ada", "Alan", "Barbara", "Claude", "Donald", "Edsger", "Frances", "Grace", "Ken", "Radia"}
	lastNames  = []string{"Lovelace", "Turing", "Liskov", "Shannon", "Knuth", "Dijkstra", "Allen", "Hopper", "Thompson", "Perlman"}
	words      = []string{"alpha", "bravo", "delta", "echo", "foxtrot", "kilo", "lima", "oscar", "sierra", "tango"}
	mimeTypes  = []string{"image/png", "image/jpeg", "application/pdf", "text/plain", "video/mp4"}
)

// fastParams are the argon2id settings for fixture credentials.
var fastParams = cryptox.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

// Factory produces sequential fixtures. It is not safe for concurrent use.
type Factory struct {
	rng      *rand.Rand
	hasher   *cryptox.Hasher
	userSeq  int
	assetSeq int
}

func NewFactory(seed int64) *Factory {
	return &Factory{
		rng:    rand.New(rand.NewSource(seed)),
		hasher: cryptox.NewHasher(fastParams),
	}
}

func (f *Factory) pick(list []string) string {
	return list[f.rng.Intn(len(list))]
}

// Password returns the plaintext credential of the n-th user.
func Password(n int) string {
	return fmt.Sprintf("password%d", n)
}

// User returns the next unsaved user: user<n>@example.com with a generated
// name, birth date and credential Password(n).
func (f *Factory) User() (*models.User, error) {
	f.userSeq++
	n := f.userSeq

	u := models.NewUser(fmt.Sprintf("user%d@example.com", n))
	u.Name = f.pick(firstNames) + " " + f.pick(lastNames)
	dob := time.Date(1950+f.rng.Intn(55), time.Month(1+f.rng.Intn(12)), 1+f.rng.Intn(28), 0, 0, 0, 0, time.UTC)
	u.DOB = &dob
	u.PhoneNumber = fmt.Sprintf("+1555%07d", f.rng.Intn(10_000_000))
	if err := u.SetPasswordWith(f.hasher, Password(n)); err != nil {
		return nil, err
	}
	return u, nil
}

// Asset returns the next unsaved asset owned by ownerID (0 for none).
func (f *Factory) Asset(ownerID int64) *models.Asset {
	f.assetSeq++
	n := f.assetSeq
	return &models.Asset{
		S3Bucket:    fmt.Sprintf("%s%d", f.pick(words), n),
		S3Key:       fmt.Sprintf("%s%d", f.pick(words), n),
		MimeType:    f.pick(mimeTypes),
		CreatedByID: ownerID,
	}
}
