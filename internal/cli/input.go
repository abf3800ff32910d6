package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	tnio "github.com/timenexus/timenexus/pkg/io"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/session"
)

// sessionPrefix marks inputs read from the session store:
// "session:<id>" or "session:<id>/<collection>".
const sessionPrefix = "session:"

// newSession is the --session value that opens a new session.
const newSession = "new"

// loadCollection reads the network named by input.
func (c *CLI) loadCollection(ctx context.Context, input string) (*mln.Collection, error) {
	if ref, ok := strings.CutPrefix(input, sessionPrefix); ok {
		return c.loadSessionCollection(ctx, ref)
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return tnio.ReadCollection(input)
	}
	switch strings.ToLower(filepath.Ext(input)) {
	case ".toml", ".yaml", ".yml":
		return tnio.BuildFile(input)
	}
	col, err := tnio.ImportGraphFile(input)
	if err != nil {
		return nil, err
	}
	if col.Name == "" {
		col.Name = trimExt(filepath.Base(input))
	}
	return col, nil
}

func (c *CLI) loadSessionCollection(ctx context.Context, ref string) (*mln.Collection, error) {
	id, name, _ := strings.Cut(ref, "/")
	store, err := c.openSessions(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	sess, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s: %w", id, session.ErrNotFound)
	}
	if name == "" {
		name = sess.Name
	}
	col, err := sess.Collection(name)
	if err != nil {
		return nil, fmt.Errorf("session %s, collection %q: %w", id, name, err)
	}
	return col, nil
}

// outputFlags are the flags of commands producing a collection.
type outputFlags struct {
	dir     string // collection directory
	session string // session id, or "new"
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.dir, "output", "o", "", "write the graphs to this directory")
	cmd.Flags().StringVar(&o.session, "session", "", `store the network in this session ("new" opens one)`)
}

// save writes col where the output flags point to. With no flag, the
// collection summary is printed only.
func (c *CLI) save(ctx context.Context, col *mln.Collection, o outputFlags) error {
	printCollection(col)
	if o.dir != "" {
		if err := tnio.WriteCollection(ctx, col, o.dir); err != nil {
			return err
		}
		printFile(o.dir)
	}
	if o.session == "" {
		return nil
	}

	store, err := c.openSessions(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var sess *session.Session
	if o.session == newSession {
		cfg, err := c.loadConfig()
		if err != nil {
			return err
		}
		sess = session.New(col.Name, cfg.Session.TTL)
	} else {
		if sess, err = store.Get(ctx, o.session); err != nil {
			return err
		}
		if sess == nil {
			return fmt.Errorf("session %s: %w", o.session, session.ErrNotFound)
		}
	}
	if err := sess.Put(col); err != nil {
		return err
	}
	if err := store.Set(ctx, sess); err != nil {
		return err
	}
	printSuccess("Stored %s in session %s", StyleHighlight.Render(col.Name), StyleValue.Render(sess.ID))
	printNextStep("Use it as input", sessionPrefix+sess.ID+"/"+col.Name)
	return nil
}
