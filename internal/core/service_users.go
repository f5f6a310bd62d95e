package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/scidesk/internal/logging"
)

const (
	// KindBaseInformation is the student registry kept by administrators.
	// Its records are owned by the student identifier they describe.
	KindBaseInformation = "baseInformation"

	// BaseInformationIdentifier is the registry field holding the identifier.
	BaseInformationIdentifier = "identifier"
)

// Information is the caller's account together with its registry entry.
type Information struct {
	User            User    `json:"user"`
	BaseInformation *Record `json:"baseInformation"`
}

// Signup registers a new account with role user. The identifier must be in
// the base information registry and neither it nor either email may already
// belong to an account.
func (s *Service) Signup(ctx context.Context, u User) (User, error) {
	u.Identifier = strings.TrimSpace(u.Identifier)
	u.Email = strings.TrimSpace(u.Email)
	u.AlternativeEmail = strings.TrimSpace(u.AlternativeEmail)
	u.Role = RoleUser

	if err := ValidateUser(u); err != nil {
		return User{}, err
	}

	taken, err := s.store.UserExists(ctx, u.Identifier, u.Email, u.AlternativeEmail)
	if err != nil {
		return User{}, fmt.Errorf("signup: %w", err)
	}
	if taken {
		return User{}, ErrConflict
	}

	info, err := s.baseInformationFor(ctx, u.Identifier)
	if err != nil {
		return User{}, fmt.Errorf("signup: %w", err)
	}
	if info == nil {
		return User{}, ErrNotRegistered
	}

	created, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return User{}, fmt.Errorf("signup: %w", err)
	}

	logging.WithFields(ctx, "identifier", created.Identifier).Info("user signed up", slog.Int64("id", created.ID))
	return created, nil
}

// Information returns the caller's account and registry entry. The entry is
// nil when the registry no longer lists the identifier.
func (s *Service) Information(ctx context.Context, caller User) (Information, error) {
	u, err := s.store.GetUser(ctx, caller.ID)
	if err != nil {
		return Information{}, fmt.Errorf("load user %d: %w", caller.ID, err)
	}
	info, err := s.baseInformationFor(ctx, u.Identifier)
	if err != nil {
		return Information{}, err
	}
	return Information{User: u, BaseInformation: info}, nil
}

func (s *Service) baseInformationFor(ctx context.Context, identifier string) (*Record, error) {
	recs, err := s.store.ListRecords(ctx, RecordFilter{Kind: KindBaseInformation, Owner: identifier})
	if err != nil {
		return nil, fmt.Errorf("load base information: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// Users lists every account except the requester, ordered by id.
func (s *Service) Users(ctx context.Context, requester User) ([]User, error) {
	return s.store.ListUsers(ctx, requester.ID)
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	logging.FromContext(ctx).Info("user deleted", slog.Int64("id", id))
	return nil
}

// BaseInformation lists the registry, ordered by id.
func (s *Service) BaseInformation(ctx context.Context) ([]Record, error) {
	return s.store.ListRecords(ctx, RecordFilter{Kind: KindBaseInformation})
}

// DeleteBaseInformation removes one registry entry.
func (s *Service) DeleteBaseInformation(ctx context.Context, id int64) error {
	if err := s.store.DeleteRecord(ctx, KindBaseInformation, "", id); err != nil {
		return fmt.Errorf("delete base information %d: %w", id, err)
	}
	return nil
}

// ImportBaseInformation reads registry rows from the first sheet of an XLSX
// upload. Every row is validated before any is stored; on a validation error
// nothing is written. Returns the number of rows created.
func (s *Service) ImportBaseInformation(ctx context.Context, r io.Reader) (int, error) {
	def, ok := Get(KindBaseInformation)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownForm, KindBaseInformation)
	}

	created := 0
	err := s.runBatch(ctx, func(ctx context.Context) error {
		logger, _ := logging.Batch(ctx, "import_base_information")

		sheet, err := ReadFirstSheet(r)
		if err != nil {
			return err
		}

		records := MapRows(sheet.Rows, def.SheetSpec())
		var problems ValidationErrors
		for i, fields := range records {
			var verrs ValidationErrors
			if err := ValidateFields(def, fields); errors.As(err, &verrs) {
				for _, ve := range verrs {
					ve.Field = fmt.Sprintf("row %d: %s", i+2, ve.Field)
					problems = append(problems, ve)
				}
			}
		}
		if len(problems) > 0 {
			logger.Warn("base information import rejected", "rows", len(records), "problems", len(problems))
			return problems
		}

		for _, fields := range records {
			owner := CellString(fields[BaseInformationIdentifier])
			if _, err := s.store.CreateRecord(ctx, Record{Kind: KindBaseInformation, Owner: owner, Fields: fields}); err != nil {
				return fmt.Errorf("import base information row for %s: %w", owner, err)
			}
			created++
		}

		s.metrics.RowsImported(KindBaseInformation, created)
		logger.Info("base information imported", "rows", created)
		return nil
	})
	return created, err
}
