package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/scidesk/internal/logging"
)

// ExportForms builds one workbook with a sheet per catalog kind, in catalog
// order, holding every stored record of that kind. The file is named
// data_<YYYY-MM-DD>.xlsx.
func (s *Service) ExportForms(ctx context.Context) (File, error) {
	var file File
	err := s.runBatch(ctx, func(ctx context.Context) error {
		logger, _ := logging.Batch(ctx, "export_forms")

		wb := NewWorkbook()
		defer wb.Close()

		total := 0
		for _, def := range All() {
			sw, err := wb.AddSheet(def.SheetSpec())
			if err != nil {
				return err
			}
			recs, err := s.store.ListRecords(ctx, RecordFilter{Kind: def.Info.Key})
			if err != nil {
				return fmt.Errorf("export %s: %w", def.Info.Key, err)
			}
			for _, rec := range recs {
				if err := sw.Append(rec.Fields); err != nil {
					return err
				}
			}
			total += len(recs)
		}

		data, err := wb.Bytes()
		if err != nil {
			return err
		}
		file = File{
			Name:        fmt.Sprintf("data_%s.xlsx", s.today()),
			ContentType: ContentTypeXLSX,
			Data:        data,
		}

		s.metrics.FileExported("forms")
		logger.Info("forms exported", "records", total, "bytes", len(data))
		return nil
	})
	if err != nil {
		return File{}, err
	}

	s.archive(ctx, "exports", file)
	return file, nil
}

// FormTemplate returns a header-only workbook for one kind, for users who
// fill records offline.
func (s *Service) FormTemplate(kind string) (File, error) {
	def, ok := Get(kind)
	if !ok {
		return File{}, fmt.Errorf("%w: %s", ErrUnknownForm, kind)
	}

	data, err := BuildWorkbook([]SheetData{{Spec: def.SheetSpec()}})
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        fmt.Sprintf("template_%s.xlsx", def.Info.Key),
		ContentType: ContentTypeXLSX,
		Data:        data,
	}, nil
}
