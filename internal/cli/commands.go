package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/jbkit/internal/models"
)

var errMissingFlag = errors.New("missing required flag")

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func required(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: -%s", errMissingFlag, name)
	}
	return nil
}

func (c *CLI) password(value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(c.out, "Password: ")
	pw, err := readPassword()
	fmt.Fprintln(c.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func (c *CLI) printUser(u *models.User) {
	fmt.Fprintf(c.out, "%d\t%s\t%s\t%s\n", u.ID, u.Type(), u.Email, u.Name)
}

func (c *CLI) migrate(ctx context.Context, _ []string) error {
	if err := c.backend.Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "migrations applied")
	return nil
}

func (c *CLI) seed(ctx context.Context, _ []string) error {
	st, err := c.backend.Seed(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "seeded %d users, %d assets\n", st.Users, st.Assets)
	return nil
}

func (c *CLI) createUser(ctx context.Context, args []string) error {
	fs := newFlagSet("create-user")
	email := fs.String("email", "", "email")
	name := fs.String("name", "", "display name")
	typ := fs.String("type", string(models.UserTypeNormal), "user type")
	pw := fs.String("password", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("email", *email); err != nil {
		return err
	}
	t, err := models.ParseUserType(*typ)
	if err != nil {
		return err
	}
	password, err := c.password(*pw)
	if err != nil {
		return err
	}

	u, err := c.backend.CreateUser(ctx, *email, password, *name, t)
	if err != nil {
		return err
	}
	c.printUser(u)
	return nil
}

func (c *CLI) setType(ctx context.Context, args []string) error {
	fs := newFlagSet("set-type")
	id := fs.Int64("id", 0, "user id")
	typ := fs.String("type", "", "user type")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("%w: -id", errMissingFlag)
	}
	t, err := models.ParseUserType(*typ)
	if err != nil {
		return err
	}

	u, err := c.backend.SetType(ctx, *id, t)
	if err != nil {
		return err
	}
	c.printUser(u)
	return nil
}

func (c *CLI) deleteUser(ctx context.Context, args []string) error {
	fs := newFlagSet("delete-user")
	id := fs.Int64("id", 0, "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("%w: -id", errMissingFlag)
	}
	if err := c.backend.DeleteUser(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "user %d deleted\n", *id)
	return nil
}

func (c *CLI) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	typ := fs.String("type", "", "only this user type")
	if err := fs.Parse(args); err != nil {
		return err
	}

	types := models.UserTypes()
	if *typ != "" {
		t, err := models.ParseUserType(*typ)
		if err != nil {
			return err
		}
		types = []models.UserType{t}
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join([]string{"ID", "TYPE", "EMAIL", "NAME"}, "\t"))
	for _, t := range types {
		users, err := c.backend.ListUsers(ctx, t)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Type(), u.Email, u.Name)
		}
	}
	return w.Flush()
}

func (c *CLI) token(ctx context.Context, args []string) error {
	fs := newFlagSet("token")
	email := fs.String("email", "", "email")
	pw := fs.String("password", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("email", *email); err != nil {
		return err
	}
	password, err := c.password(*pw)
	if err != nil {
		return err
	}

	tok, err := c.backend.Login(ctx, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, tok)
	return nil
}

func (c *CLI) whoami(ctx context.Context, args []string) error {
	fs := newFlagSet("whoami")
	tok := fs.String("token", "", "access token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("token", *tok); err != nil {
		return err
	}

	u, err := c.backend.WhoAmI(ctx, *tok)
	if err != nil {
		return err
	}
	c.printUser(u)
	return nil
}

func (c *CLI) upload(ctx context.Context, args []string) error {
	fs := newFlagSet("upload")
	tok := fs.String("token", "", "access token")
	mime := fs.String("mime", "application/octet-stream", "content type")
	file := fs.String("file", "", "file to upload")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("token", *tok); err != nil {
		return err
	}

	var content []byte
	if *file != "" {
		b, err := os.ReadFile(*file)
		if err != nil {
			return err
		}
		content = b
	}

	up, err := c.backend.StartUpload(ctx, *tok, *mime)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "asset %d s3://%s/%s\n", up.Asset.ID, up.Asset.S3Bucket, up.Asset.S3Key)
	if content == nil {
		fmt.Fprintln(c.out, up.URL)
		return nil
	}
	if err := c.transfer.Put(ctx, up.URL, *mime, content); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "uploaded %d bytes\n", len(content))
	return nil
}

func (c *CLI) download(ctx context.Context, args []string) error {
	fs := newFlagSet("download")
	tok := fs.String("token", "", "access token")
	id := fs.Int64("id", 0, "asset id")
	out := fs.String("out", "", "write content to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("token", *tok); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("%w: -id", errMissingFlag)
	}

	url, err := c.backend.DownloadURL(ctx, *tok, *id)
	if err != nil {
		return err
	}
	if *out == "" {
		fmt.Fprintln(c.out, url)
		return nil
	}
	b, err := c.transfer.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, b, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "wrote %d bytes to %s\n", len(b), *out)
	return nil
}
