package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/scidesk/internal/logging"
)

// FormInfos returns the form kinds a role may edit, in catalog order.
func (s *Service) FormInfos(role Role) []FormInfo {
	defs := ByAudience(role.Audience())
	infos := make([]FormInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// requireOwner rejects callers that cannot own form records. An empty owner
// matches every owner in the store.
func requireOwner(u User) error {
	if u.Identifier == "" {
		return fmt.Errorf("%w: user %d has no identifier", ErrUnauthorized, u.ID)
	}
	return nil
}

// definitionFor resolves kind and checks that u may edit it.
func definitionFor(kind string, u User) (FormDefinition, error) {
	if err := requireOwner(u); err != nil {
		return FormDefinition{}, err
	}
	def, ok := Get(kind)
	if !ok {
		return FormDefinition{}, fmt.Errorf("%w: %s", ErrUnknownForm, kind)
	}
	if def.Info.Audience != u.Role.Audience() {
		return FormDefinition{}, fmt.Errorf("%w: %s", ErrFormNotAllowed, kind)
	}
	return def, nil
}

// ListForms returns the caller's records of one kind, ordered by id.
func (s *Service) ListForms(ctx context.Context, u User, kind string) ([]Record, error) {
	def, err := definitionFor(kind, u)
	if err != nil {
		return nil, err
	}
	return s.store.ListRecords(ctx, RecordFilter{Kind: def.Info.Key, Owner: u.Identifier})
}

// AllForms returns the caller's records of every kind its role edits,
// keyed by kind. Kinds without records map to an empty list.
func (s *Service) AllForms(ctx context.Context, u User) (map[string][]Record, error) {
	if err := requireOwner(u); err != nil {
		return nil, err
	}
	result := make(map[string][]Record)
	for _, def := range ByAudience(u.Role.Audience()) {
		recs, err := s.store.ListRecords(ctx, RecordFilter{Kind: def.Info.Key, Owner: u.Identifier})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", def.Info.Key, err)
		}
		if recs == nil {
			recs = []Record{}
		}
		result[def.Info.Key] = recs
	}
	return result, nil
}

// CreateForm validates fields and stores a new record owned by the caller.
func (s *Service) CreateForm(ctx context.Context, u User, kind string, fields Fields) (Record, error) {
	def, err := definitionFor(kind, u)
	if err != nil {
		return Record{}, err
	}

	fields = SanitizeFields(def, fields)
	if err := ValidateFields(def, fields); err != nil {
		return Record{}, err
	}

	rec, err := s.store.CreateRecord(ctx, Record{Kind: def.Info.Key, Owner: u.Identifier, Fields: fields})
	if err != nil {
		return Record{}, fmt.Errorf("create %s: %w", kind, err)
	}

	logging.WithFields(ctx, "kind", kind, "owner", u.Identifier).Info("form created", slog.Int64("id", rec.ID))
	return rec, nil
}

// UpdateForm replaces the fields of one of the caller's records.
// A record of another owner is reported as ErrNotFound.
func (s *Service) UpdateForm(ctx context.Context, u User, kind string, id int64, fields Fields) (Record, error) {
	def, err := definitionFor(kind, u)
	if err != nil {
		return Record{}, err
	}

	fields = SanitizeFields(def, fields)
	if err := ValidateFields(def, fields); err != nil {
		return Record{}, err
	}

	rec, err := s.store.UpdateRecord(ctx, Record{ID: id, Kind: def.Info.Key, Owner: u.Identifier, Fields: fields})
	if err != nil {
		return Record{}, fmt.Errorf("update %s %d: %w", kind, id, err)
	}

	logging.WithFields(ctx, "kind", kind, "owner", u.Identifier).Info("form updated", slog.Int64("id", id))
	return rec, nil
}

// DeleteForm removes one of the caller's records.
func (s *Service) DeleteForm(ctx context.Context, u User, kind string, id int64) error {
	def, err := definitionFor(kind, u)
	if err != nil {
		return err
	}

	if err := s.store.DeleteRecord(ctx, def.Info.Key, u.Identifier, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}

	logging.WithFields(ctx, "kind", kind, "owner", u.Identifier).Info("form deleted", slog.Int64("id", id))
	return nil
}
