package core

// service_notify.go turns uploaded sheets into notification batches.
//
// Each use-case reads the first sheet of the upload, groups or walks its rows
// according to the catalog layout, builds one Recipient per addressee and
// hands the batch to the Dispatcher. Cell text placed into HTML fragments is
// escaped by the fragment builders; the template itself is filled verbatim.

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/scidesk/internal/mail"
)

// NotificationRequest is the administrator input shared by every notification use-case.
type NotificationRequest struct {
	Template string
	Subject  string
	From     string
	Exclude  []string
	File     io.Reader
}

func (req NotificationRequest) notification(kind string) Notification {
	return Notification{
		Kind:     kind,
		Template: req.Template,
		Subject:  req.Subject,
		From:     req.From,
		Exclude:  req.Exclude,
	}
}

// notify reads the upload, builds recipients with build and dispatches them.
func (s *Service) notify(ctx context.Context, req NotificationRequest, layoutName string,
	build func(ctx context.Context, layout Layout, sheet *Sheet) ([]Recipient, error)) ([]EmailOutcome, error) {
	if req.File == nil {
		return nil, ErrNoFile
	}
	layout, err := requireLayout(layoutName)
	if err != nil {
		return nil, err
	}

	var outcomes []EmailOutcome
	err = s.runBatch(ctx, func(ctx context.Context) error {
		sheet, err := ReadFirstSheet(req.File)
		if err != nil {
			return err
		}
		s.metrics.RowsImported(layoutName, len(sheet.Rows))

		recipients, err := build(ctx, layout, sheet)
		if err != nil {
			return err
		}
		outcomes = s.dispatcher.Dispatch(ctx, req.notification(layoutName), recipients)
		return nil
	})
	return outcomes, err
}

// NotifySemesterActivity sends each professor the list of their timetable
// activities. Rows are grouped by the email column; the {{activity}} token
// receives one "<activity> <hours> ore/saptamana <br>" line per row.
func (s *Service) NotifySemesterActivity(ctx context.Context, req NotificationRequest) ([]EmailOutcome, error) {
	return s.notify(ctx, req, LayoutSemesterActivity, semesterActivityRecipients)
}

func semesterActivityRecipients(ctx context.Context, layout Layout, sheet *Sheet) ([]Recipient, error) {
	groups := GroupRows(sheet.Rows, layout.Column(ColEmail))
	recipients := make([]Recipient, 0, len(groups))

	for _, g := range groups {
		lines := make([]mail.ActivityLine, len(g.Rows))
		for i, row := range g.Rows {
			lines[i] = mail.ActivityLine{
				Activity: layout.Value(row, ColActivity),
				Hours:    layout.Value(row, ColHours),
			}
		}
		html, err := mail.RenderFragment(ctx, mail.ActivityList(lines))
		if err != nil {
			return nil, fmt.Errorf("render activity list: %w", err)
		}
		recipients = append(recipients, Recipient{
			Email:  g.Key,
			Values: map[string]string{layout.Token(ColActivity): html},
		})
	}
	return recipients, nil
}

// NotifyThesis sends one report announcement per row to the student, with
// the coordinator in cc.
func (s *Service) NotifyThesis(ctx context.Context, req NotificationRequest) ([]EmailOutcome, error) {
	return s.notify(ctx, req, LayoutReportAnnouncement, thesisRecipients)
}

func thesisRecipients(ctx context.Context, layout Layout, sheet *Sheet) ([]Recipient, error) {
	recipients := make([]Recipient, 0, len(sheet.Rows))

	for _, row := range sheet.Rows {
		commission, err := mail.RenderFragment(ctx, mail.NameList(layout.Values(row, ColCommission)))
		if err != nil {
			return nil, fmt.Errorf("render commission: %w", err)
		}

		var cc []string
		if addr := layout.Value(row, ColCoordinatorEmail); addr != "" {
			cc = []string{addr}
		}

		recipients = append(recipients, Recipient{
			Email: layout.Value(row, ColEmail),
			Cc:    cc,
			Values: map[string]string{
				layout.Token(ColPresentationDate): DisplayDate(row[layout.Column(ColPresentationDate)]),
				layout.Token(ColReportTitle):      layout.Value(row, ColReportTitle),
				layout.Token(ColCoordinator):      layout.Value(row, ColCoordinator),
				layout.Token(ColCommission):       commission,
			},
		})
	}
	return recipients, nil
}

// NotifyOrganization sends every recipient the template unchanged plus a
// workbook holding their own rows under the uploaded headers.
func (s *Service) NotifyOrganization(ctx context.Context, req NotificationRequest) ([]EmailOutcome, error) {
	name := fmt.Sprintf("organizare_%s.xlsx", s.today())
	return s.notify(ctx, req, LayoutOrganization, func(ctx context.Context, layout Layout, sheet *Sheet) ([]Recipient, error) {
		return organizationRecipients(layout, sheet, name)
	})
}

func organizationRecipients(layout Layout, sheet *Sheet, attachmentName string) ([]Recipient, error) {
	spec := SheetSpec{
		Name:    sheet.Name,
		Headers: sheet.Headers,
		Fields:  make(map[string]string, len(sheet.Headers)),
	}
	for _, h := range sheet.Headers {
		spec.Fields[h] = h
	}

	groups := GroupRows(sheet.Rows, layout.Column(ColEmail))
	recipients := make([]Recipient, 0, len(groups))

	for _, g := range groups {
		records := make([]Fields, len(g.Rows))
		for i, row := range g.Rows {
			records[i] = Fields(row)
		}
		data, err := BuildWorkbook([]SheetData{{Spec: spec, Records: records}})
		if err != nil {
			return nil, fmt.Errorf("build attachment for %q: %w", g.Key, err)
		}
		recipients = append(recipients, Recipient{
			Email: g.Key,
			Attachments: []mail.Attachment{{
				Filename:    attachmentName,
				ContentType: ContentTypeXLSX,
				Content:     data,
			}},
		})
	}
	return recipients, nil
}
