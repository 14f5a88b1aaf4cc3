// Package cli implements the jbctl subcommands on top of the application
// services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/jbkit/internal/fixture"
	"github.com/dmitrijs2005/jbkit/internal/models"
	"github.com/dmitrijs2005/jbkit/internal/netx"
	"github.com/dmitrijs2005/jbkit/internal/storage"
	"golang.org/x/term"
)

var (
	ErrNoCommand      = errors.New("no command given")
	ErrUnknownCommand = errors.New("unknown command")
)

// Backend is the set of operations the commands drive. *app.App implements it.
type Backend interface {
	Migrate(ctx context.Context) error
	Seed(ctx context.Context) (fixture.Stats, error)
	CreateUser(ctx context.Context, email, password, name string, t models.UserType) (*models.User, error)
	SetType(ctx context.Context, id int64, t models.UserType) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, t models.UserType) ([]*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	WhoAmI(ctx context.Context, token string) (*models.User, error)
	StartUpload(ctx context.Context, token, mimeType string) (*storage.Upload, error)
	DownloadURL(ctx context.Context, token string, assetID int64) (string, error)
}

// Transfer moves asset content through presigned URLs. *netx.Client
// satisfies it.
type Transfer interface {
	Put(ctx context.Context, url, contentType string, body []byte) error
	Get(ctx context.Context, url string) ([]byte, error)
}

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

type CLI struct {
	backend  Backend
	transfer Transfer
	out      io.Writer
}

func New(b Backend, out io.Writer) *CLI {
	return &CLI{backend: b, transfer: netx.New(0), out: out}
}

// WithTransfer replaces the client used for asset content.
func (c *CLI) WithTransfer(t Transfer) *CLI {
	c.transfer = t
	return c
}

type command struct {
	usage string
	run   func(c *CLI, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"migrate":     {usage: "migrate", run: (*CLI).migrate},
	"seed":        {usage: "seed", run: (*CLI).seed},
	"create-user": {usage: "create-user -email E [-name N] [-type normal|admin] [-password P]", run: (*CLI).createUser},
	"set-type":    {usage: "set-type -id ID -type normal|admin", run: (*CLI).setType},
	"delete-user": {usage: "delete-user -id ID", run: (*CLI).deleteUser},
	"list":        {usage: "list [-type normal|admin]", run: (*CLI).list},
	"token":       {usage: "token -email E [-password P]", run: (*CLI).token},
	"whoami":      {usage: "whoami -token T", run: (*CLI).whoami},
	"upload":      {usage: "upload -token T [-mime TYPE] [-file PATH]", run: (*CLI).upload},
	"download":    {usage: "download -token T -id ID [-out PATH]", run: (*CLI).download},
}

// SplitCommand finds the subcommand in args, skipping the global
// configuration flags and their values in front of it.
func SplitCommand(args []string) (string, []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			if !strings.Contains(arg, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		return arg, args[i+1:]
	}
	return "", nil
}

// Usage writes the command summary to w.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: jbctl [-c config.json] [global flags] <command> [command flags]")
	for _, name := range []string{"migrate", "seed", "create-user", "set-type", "delete-user", "list", "token", "whoami", "upload", "download"} {
		fmt.Fprintln(w, "  "+commands[name].usage)
	}
}

// Run dispatches args, the process arguments after the program name.
func (c *CLI) Run(ctx context.Context, args []string) error {
	name, rest := SplitCommand(args)
	if name == "" {
		return ErrNoCommand
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return cmd.run(c, ctx, rest)
}
