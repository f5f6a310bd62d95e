package core

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/scidesk/internal/logging"
)

// FAZ builds one daily activity sheet per professor from an uploaded
// timetable and returns them as a ZIP archive. ignoreStart leading and
// ignoreEnd trailing data rows are skipped (title and total rows).
func (s *Service) FAZ(ctx context.Context, r io.Reader, ignoreStart, ignoreEnd int) (File, error) {
	return s.documents(ctx, r, LayoutFAZ, "faz", func(layout Layout, rows []RawRow) []DocumentItem {
		return FAZDocuments(layout, TrimRows(rows, ignoreStart, ignoreEnd))
	})
}

// VerbalProcess builds one verbal process per report announcement row and
// returns them as a ZIP archive.
func (s *Service) VerbalProcess(ctx context.Context, r io.Reader) (File, error) {
	return s.documents(ctx, r, LayoutReportAnnouncement, "proces_verbal", VerbalProcessDocuments)
}

func (s *Service) documents(ctx context.Context, r io.Reader, layoutName, prefix string,
	build func(Layout, []RawRow) []DocumentItem) (File, error) {
	if r == nil {
		return File{}, ErrNoFile
	}
	layout, err := requireLayout(layoutName)
	if err != nil {
		return File{}, err
	}

	var file File
	err = s.runBatch(ctx, func(ctx context.Context) error {
		logger, _ := logging.Batch(ctx, prefix)

		sheet, err := ReadFirstSheet(r)
		if err != nil {
			return err
		}
		s.metrics.RowsImported(layoutName, len(sheet.Rows))

		items := build(layout, sheet.Rows)
		data, err := AssembleArchive(items)
		if err != nil {
			return err
		}

		file = File{
			Name:        fmt.Sprintf("%s_%s.zip", prefix, s.today()),
			ContentType: ContentTypeZIP,
			Data:        data,
		}
		s.metrics.FileExported(prefix)
		logger.Info("documents generated", "rows", len(sheet.Rows), "documents", len(items), "bytes", len(data))
		return nil
	})
	if err != nil {
		return File{}, err
	}

	s.archive(ctx, "documents", file)
	return file, nil
}
