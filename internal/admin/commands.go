package admin

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/JonMunkholm/scidesk/internal/auth"
	"github.com/JonMunkholm/scidesk/internal/core"
	"github.com/spf13/cobra"
)

func (a *app) exportCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every form record to data_<date>.xlsx",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&out, "out", ".", "output directory")
	cmd.RunE = a.run(func(ctx context.Context, cmd *cobra.Command) error {
		svc, err := a.service(ctx)
		if err != nil {
			return err
		}
		f, err := svc.ExportForms(ctx)
		if err != nil {
			return err
		}
		return writeFile(cmd.OutOrStdout(), out, f)
	})
	return cmd
}

func (a *app) importStudentsCommand() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "import-students",
		Short: "Import the student registry from an XLSX file",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&in, "in", "", "registry workbook (required)")
	_ = cmd.MarkFlagRequired("in")
	cmd.RunE = a.run(func(ctx context.Context, cmd *cobra.Command) error {
		svc, err := a.service(ctx)
		if err != nil {
			return err
		}
		file, err := os.Open(in)
		if err != nil {
			return err
		}
		defer file.Close()

		n, err := svc.ImportBaseInformation(ctx, file)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d students\n", n)
		return nil
	})
	return cmd
}

func (a *app) fazCommand() *cobra.Command {
	var (
		in, out                string
		ignoreStart, ignoreEnd int
	)
	cmd := &cobra.Command{
		Use:   "faz",
		Short: "Generate one FAZ document per professor from a timetable",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&in, "in", "", "timetable workbook (required)")
	cmd.Flags().StringVar(&out, "out", ".", "output directory")
	cmd.Flags().IntVar(&ignoreStart, "ignore-start", 0, "data rows to skip at the start")
	cmd.Flags().IntVar(&ignoreEnd, "ignore-end", 0, "data rows to skip at the end")
	_ = cmd.MarkFlagRequired("in")
	cmd.RunE = a.run(func(ctx context.Context, cmd *cobra.Command) error {
		if ignoreStart < 0 || ignoreEnd < 0 {
			return fmt.Errorf("--ignore-start and --ignore-end must not be negative")
		}
		return a.document(ctx, cmd, in, out, func(svc *core.Service, file *os.File) (core.File, error) {
			return svc.FAZ(ctx, file, ignoreStart, ignoreEnd)
		})
	})
	return cmd
}

func (a *app) verbalProcessCommand() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "verbal-process",
		Short: "Generate one verbal process per report announcement",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&in, "in", "", "report announcement workbook (required)")
	cmd.Flags().StringVar(&out, "out", ".", "output directory")
	_ = cmd.MarkFlagRequired("in")
	cmd.RunE = a.run(func(ctx context.Context, cmd *cobra.Command) error {
		return a.document(ctx, cmd, in, out, func(svc *core.Service, file *os.File) (core.File, error) {
			return svc.VerbalProcess(ctx, file)
		})
	})
	return cmd
}

func (a *app) document(ctx context.Context, cmd *cobra.Command, in, out string,
	build func(*core.Service, *os.File) (core.File, error)) error {
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}
	file, err := os.Open(in)
	if err != nil {
		return err
	}
	defer file.Close()

	f, err := build(svc, file)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	return writeFile(cmd.OutOrStdout(), out, f)
}

func (a *app) tokenCommand() *cobra.Command {
	var (
		id                int64
		identifier, email string
		role              string
		ttl               time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for testing or service accounts",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().Int64Var(&id, "id", 0, "user id (required)")
	cmd.Flags().StringVar(&identifier, "identifier", "", "student identifier")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", string(core.RoleAdmin), "user, coordinator or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default AUTH_TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("id")
	cmd.RunE = a.run(func(ctx context.Context, cmd *cobra.Command) error {
		switch core.Role(role) {
		case core.RoleUser, core.RoleCoordinator, core.RoleAdmin:
		default:
			return fmt.Errorf("unknown role %q", role)
		}
		cfg, err := a.config()
		if err != nil {
			return err
		}
		if ttl <= 0 {
			ttl = cfg.Auth.TokenTTL
		}

		token, err := auth.Issue(cfg.Auth.JWTSecret, cfg.Auth.Issuer, core.User{
			ID:         id,
			Identifier: identifier,
			Email:      email,
			Role:       core.Role(role),
		}, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	})
	return cmd
}
