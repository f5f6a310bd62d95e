// Package admin provides the administrative command line: exports, registry
// imports, document generation and token issuing.
package admin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/scidesk/internal/artifact"
	"github.com/JonMunkholm/scidesk/internal/config"
	"github.com/JonMunkholm/scidesk/internal/core"
	"github.com/JonMunkholm/scidesk/internal/logging"
	"github.com/JonMunkholm/scidesk/internal/mail"
	"github.com/JonMunkholm/scidesk/internal/store"
	"github.com/spf13/cobra"
)

// CommandTimeout is the maximum duration of one command.
const CommandTimeout = 10 * time.Minute

// Options injects collaborators. Zero values are loaded from the environment
// on first use.
type Options struct {
	Config  *config.Config
	Service *core.Service
	Out     io.Writer
}

type app struct {
	opts    Options
	cleanup []func() error
}

// NewRootCommand builds the formsctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "formsctl",
		Short:         "Administer research activity forms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Out)

	root.AddCommand(
		a.exportCommand(),
		a.importStudentsCommand(),
		a.fazCommand(),
		a.verbalProcessCommand(),
		a.tokenCommand(),
	)
	return root
}

func (a *app) config() (*config.Config, error) {
	if a.opts.Config != nil {
		return a.opts.Config, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	a.opts.Config = cfg
	return cfg, nil
}

// service opens the store, mail transport and artifact store on first use.
func (a *app) service(ctx context.Context) (*core.Service, error) {
	if a.opts.Service != nil {
		return a.opts.Service, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.cleanup = append(a.cleanup, st.Close)

	sender, err := mail.Open(cfg.Mail)
	if err != nil {
		return nil, err
	}
	artifacts, err := artifact.Open(ctx, cfg.Artifacts)
	if err != nil {
		return nil, err
	}

	svc, err := core.NewService(core.Options{
		Store:        st,
		Sender:       sender,
		Artifacts:    artifacts,
		BatchTimeout: cfg.Upload.Timeout,
	})
	if err != nil {
		return nil, err
	}
	a.opts.Service = svc
	return svc, nil
}

// run wraps a command body with a timeout and releases whatever the body opened.
func (a *app) run(fn func(ctx context.Context, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, CommandTimeout)
		defer cancel()
		defer func() {
			if cerr := a.close(); err == nil {
				err = cerr
			}
		}()
		return fn(ctx, cmd)
	}
}

func (a *app) close() error {
	if len(a.cleanup) > 0 {
		// The service was opened here and its store is about to close
		a.opts.Service = nil
	}
	var first error
	for _, fn := range a.cleanup {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	a.cleanup = nil
	return first
}

// writeFile stores f in dir and reports the path.
func writeFile(w io.Writer, dir string, f core.File) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, f.Name)
	if err := os.WriteFile(path, f.Data, 0o640); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(w, "wrote %s (%d bytes)\n", path, len(f.Data))
	return nil
}
