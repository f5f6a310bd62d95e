package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/scidesk/internal/auth"
	"github.com/JonMunkholm/scidesk/internal/config"
	"github.com/JonMunkholm/scidesk/internal/core"
	_ "github.com/JonMunkholm/scidesk/internal/core/tables"
	"github.com/JonMunkholm/scidesk/internal/mail"
	"github.com/JonMunkholm/scidesk/internal/metrics"
	"github.com/JonMunkholm/scidesk/internal/store/sqlite"
	"github.com/xuri/excelize/v2"
)

const testSecret = "web-test-secret"

type testEnv struct {
	server *Server
	store  *sqlite.Store
	sender *mail.ConsoleSender
}

func newTestEnv(t *testing.T, configure ...func(*config.Config)) *testEnv {
	t.Helper()
	st, err := sqlite.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("sqlite.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	sender := mail.NewConsoleSender(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc, err := core.NewService(core.Options{Store: st, Sender: sender})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	cfg := &config.Config{}
	cfg.Upload.MaxFileSize = 1 << 20
	cfg.Security.EnableCSP = true
	for _, fn := range configure {
		fn(cfg)
	}

	srv := NewServer(svc, cfg, auth.NewVerifier(testSecret, "scidesk"), metrics.New().Handler())
	return &testEnv{server: srv, store: st, sender: sender}
}

func (e *testEnv) do(t *testing.T, req *http.Request, u *core.User) *httptest.ResponseRecorder {
	t.Helper()
	if u != nil {
		token, err := auth.Issue(testSecret, "scidesk", *u, time.Hour)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a multipart upload; a nil file omits the file part.
func multipartRequest(t *testing.T, path string, file []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if file != nil {
		part, err := mw.CreateFormFile("file", "upload.xlsx")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = part.Write(file)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

var (
	student = &core.User{ID: 10, Identifier: "S1", Email: "s1@uni.ro", Role: core.RoleUser}
	admin   = &core.User{ID: 1, Identifier: "A1", Email: "admin@uni.ro", Role: core.RoleAdmin}
)

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	var health healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	want := batchStats{Active: 0, Available: core.DefaultMaxConcurrentUploads, Max: core.DefaultMaxConcurrentUploads}
	if health.Status != "ok" || health.Batches != want {
		t.Errorf("health = %+v, want ok with %+v", health, want)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /metrics = %d, want 200", rec.Code)
	}
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		path     string
		user     *core.User
		wantCode int
		wantErr  string
	}{
		{"no token", "/api/forms", nil, http.StatusUnauthorized, "AUTH001"},
		{"admin on own forms", "/api/forms", admin, http.StatusForbidden, "AUTH002"},
		{"student on admin", "/api/admin/users", student, http.StatusForbidden, "AUTH002"},
		{"student on forms", "/api/forms", student, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, httptest.NewRequest(http.MethodGet, tt.path, nil), tt.user)
			if rec.Code != tt.wantCode {
				t.Fatalf("GET %s = %d, want %d (%s)", tt.path, rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr != "" {
				if got := decodeError(t, rec).Code; got != tt.wantErr {
					t.Errorf("error code = %q, want %q", got, tt.wantErr)
				}
			}
		})
	}
}

func TestFormCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, jsonRequest(http.MethodPost, "/api/forms/patent", map[string]any{
		"title": "Pompa", "authors": "Pop I.", "patentNumber": "RO123", "unknown": "dropped",
	}), student)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	var created core.Record
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	if created.Owner != "S1" || created.Fields["unknown"] != nil {
		t.Errorf("created = %+v", created)
	}

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/forms/patent", map[string]any{"title": "x"}), student)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("create without required fields = %d, want 400", rec.Code)
	}

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/forms/nope", map[string]any{}), student)
	if rec.Code != http.StatusNotFound || decodeError(t, rec).Code != "FORM001" {
		t.Errorf("create unknown kind = %d %s", rec.Code, rec.Body.String())
	}

	other := &core.User{ID: 11, Identifier: "S2", Role: core.RoleUser}
	path := "/api/forms/patent/" + strconv.FormatInt(created.ID, 10)
	rec = env.do(t, jsonRequest(http.MethodPut, path, map[string]any{
		"title": "Hijack", "authors": "X", "patentNumber": "1",
	}), other)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update by other owner = %d, want 404", rec.Code)
	}

	rec = env.do(t, jsonRequest(http.MethodPut, path, map[string]any{
		"title": "Pompa 2", "authors": "Pop I.", "patentNumber": "RO123",
	}), student)
	if rec.Code != http.StatusOK {
		t.Errorf("update = %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/forms/patent", nil), student)
	var list []core.Record
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 1 || list[0].Fields["title"] != "Pompa 2" {
		t.Errorf("list = %+v", list)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, path, nil), student)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", rec.Code)
	}
	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/forms/patent/abc", nil), student)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete with bad id = %d, want 404", rec.Code)
	}
}

func TestForms_TokenWithoutIdentifier(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, jsonRequest(http.MethodPost, "/api/forms/patent", map[string]any{
		"title": "Pompa", "authors": "Pop I.", "patentNumber": "RO123",
	}), student)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	var created core.Record
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	path := "/api/forms/patent/" + strconv.FormatInt(created.ID, 10)

	anonymous := &core.User{ID: 2, Role: core.RoleUser}
	tests := []struct {
		name string
		req  *http.Request
	}{
		{"list", httptest.NewRequest(http.MethodGet, "/api/forms/patent", nil)},
		{"all", httptest.NewRequest(http.MethodGet, "/api/forms", nil)},
		{"create", jsonRequest(http.MethodPost, "/api/forms/patent", map[string]any{
			"title": "X", "authors": "Y", "patentNumber": "Z",
		})},
		{"delete", httptest.NewRequest(http.MethodDelete, path, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.req, anonymous)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("%s %s = %d, want 401 (%s)", tt.req.Method, tt.req.URL.Path, rec.Code, rec.Body.String())
			}
		})
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/forms/patent", nil), student)
	var list []core.Record
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 1 || list[0].Owner != "S1" {
		t.Errorf("owner's records = %+v, want the created patent", list)
	}
}

func TestSignupAndMe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.store.CreateRecord(ctx, core.Record{
		Kind:   core.KindBaseInformation,
		Owner:  "S1",
		Fields: core.Fields{"identifier": "S1", "lastName": "Pop", "firstName": "Ion"},
	}); err != nil {
		t.Fatalf("seed base information: %v", err)
	}

	body := map[string]string{"identifier": "S1", "email": "s1@uni.ro", "alternativeEmail": "s1@mail.com"}
	rec := env.do(t, jsonRequest(http.MethodPost, "/api/signup", body), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup = %d: %s", rec.Code, rec.Body.String())
	}
	var u core.User
	_ = json.Unmarshal(rec.Body.Bytes(), &u)
	if u.Role != core.RoleUser || u.ID == 0 {
		t.Errorf("signed up user = %+v", u)
	}

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/signup", body), nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second signup = %d, want 409", rec.Code)
	}

	rec = env.do(t, jsonRequest(http.MethodPost, "/api/signup", map[string]string{
		"identifier": "S9", "email": "s9@uni.ro", "alternativeEmail": "s9@mail.com",
	}), nil)
	if rec.Code != http.StatusNotAcceptable {
		t.Errorf("unregistered signup = %d, want 406", rec.Code)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/me", nil), &u)
	if rec.Code != http.StatusOK {
		t.Fatalf("me = %d: %s", rec.Code, rec.Body.String())
	}
	var info core.Information
	_ = json.Unmarshal(rec.Body.Bytes(), &info)
	if info.User.Identifier != "S1" || info.BaseInformation == nil {
		t.Errorf("me = %+v", info)
	}
}

func TestNotifySemesterActivity(t *testing.T) {
	env := newTestEnv(t)

	file := workbook(t,
		[]any{"Email", "Activitate", "Ore/Saptamana"},
		[]any{"a@uni.ro", "Curs Algebra", "2"},
		[]any{"b@uni.ro", "Seminar", "1"},
		[]any{"a@uni.ro", "Laborator", "1"},
	)
	req := multipartRequest(t, "/api/admin/notifications/semester-activity", file, map[string]string{
		"template": "Activitati: {{activity}}",
		"subject":  "Activitate semestru",
		"from":     "secretariat@uni.ro",
		"except":   `["b@uni.ro"]`,
	})
	rec := env.do(t, req, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("notify = %d: %s", rec.Code, rec.Body.String())
	}

	var outcomes []core.EmailOutcome
	_ = json.Unmarshal(rec.Body.Bytes(), &outcomes)
	if len(outcomes) != 1 || outcomes[0] != (core.EmailOutcome{Email: "a@uni.ro", Success: true}) {
		t.Errorf("outcomes = %+v", outcomes)
	}
	sent := env.sender.Sent()
	if len(sent) != 1 || sent[0].To != "a@uni.ro" || !strings.Contains(sent[0].HTML, "Laborator") {
		t.Errorf("sent = %+v", sent)
	}
}

func TestNotify_OutlivesRequestTimeout(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Server.RequestTimeout = time.Nanosecond
	})
	if got := env.server.bulkTimeout(); got < core.DefaultBatchTimeout {
		t.Errorf("bulkTimeout() = %v, want at least %v", got, core.DefaultBatchTimeout)
	}

	file := workbook(t,
		[]any{"Email", "Activitate", "Ore/Saptamana"},
		[]any{"a@uni.ro", "Curs Algebra", "2"},
		[]any{"b@uni.ro", "Seminar", "1"},
	)
	req := multipartRequest(t, "/api/admin/notifications/semester-activity", file, map[string]string{
		"template": "{{activity}}",
		"subject":  "Activitate semestru",
		"from":     "secretariat@uni.ro",
	})
	rec := env.do(t, req, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("notify = %d: %s", rec.Code, rec.Body.String())
	}

	var outcomes []core.EmailOutcome
	_ = json.Unmarshal(rec.Body.Bytes(), &outcomes)
	want := []core.EmailOutcome{{Email: "a@uni.ro", Success: true}, {Email: "b@uni.ro", Success: true}}
	if len(outcomes) != len(want) || outcomes[0] != want[0] || outcomes[1] != want[1] {
		t.Errorf("outcomes = %+v, want %+v", outcomes, want)
	}
}

func TestServerTimeouts(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Server.RequestTimeout = 5 * time.Minute
		cfg.Server.WriteTimeout = 5 * time.Minute
	})
	want := core.DefaultBatchTimeout + bulkResponseSlack
	if got := env.server.bulkTimeout(); got != want {
		t.Errorf("bulkTimeout() = %v, want %v", got, want)
	}
	if got := env.server.writeTimeout(); got != want {
		t.Errorf("writeTimeout() = %v, want %v", got, want)
	}

	env = newTestEnv(t, func(cfg *config.Config) {
		cfg.Server.RequestTimeout = time.Hour
		cfg.Server.WriteTimeout = 2 * time.Hour
	})
	if got := env.server.bulkTimeout(); got != time.Hour {
		t.Errorf("bulkTimeout() = %v, want 1h", got)
	}
	if got := env.server.writeTimeout(); got != 2*time.Hour {
		t.Errorf("writeTimeout() = %v, want 2h", got)
	}
}

func TestNotify_MissingFile(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, "/api/admin/notifications/thesis", nil, map[string]string{"template": "x"})
	rec := env.do(t, req, admin)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("notify without file = %d, want 400", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "FILE001" {
		t.Errorf("error code = %q, want FILE001", got)
	}
}

func TestExportDownload(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/forms/export", nil), admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != core.ContentTypeXLSX {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(got, "attachment; filename=data_") {
		t.Errorf("Content-Disposition = %q", got)
	}
	if _, err := excelize.OpenReader(rec.Body); err != nil {
		t.Errorf("export body is not a workbook: %v", err)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/forms/patent/template", nil), admin)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Disposition"), "template_patent.xlsx") {
		t.Errorf("template = %d %q", rec.Code, rec.Header().Get("Content-Disposition"))
	}
}

func TestDocuments_VerbalProcess(t *testing.T) {
	env := newTestEnv(t)

	file := workbook(t,
		[]any{"Email", "Nume Student", "Tip Raport", "Titlul Raportului", "Data Prezentarii", "Coordonator"},
		[]any{"s@uni.ro", "Ion Pop", "Raport 1", "Retele", "2026-11-02", "Prof. X"},
	)
	rec := env.do(t, multipartRequest(t, "/api/admin/documents/verbal-process", file, nil), admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("verbal process = %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != core.ContentTypeZIP {
		t.Errorf("Content-Type = %q", got)
	}

	rec = env.do(t, multipartRequest(t, "/api/admin/documents/faz", file, map[string]string{"ignoreStart": "-1"}), admin)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("faz with negative ignoreStart = %d, want 400", rec.Code)
	}
}

func TestParseExclusions(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{`["a@x.ro", " b@x.ro "]`, []string{"a@x.ro", "b@x.ro"}},
		{"a@x.ro, b@x.ro;c@x.ro\nd@x.ro", []string{"a@x.ro", "b@x.ro", "c@x.ro", "d@x.ro"}},
		{"[not json", []string{"[not json"}},
	}
	for _, tt := range tests {
		got := parseExclusions(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("parseExclusions(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ValidationErrors{{Field: "title", Message: "required field"}}, http.StatusBadRequest},
		{core.ErrNoFile, http.StatusBadRequest},
		{core.ErrUnauthorized, http.StatusUnauthorized},
		{core.ErrFormNotAllowed, http.StatusForbidden},
		{core.ErrNotFound, http.StatusNotFound},
		{core.ErrNotRegistered, http.StatusNotAcceptable},
		{core.ErrConflict, http.StatusConflict},
		{core.ErrTooManyUploads, http.StatusTooManyRequests},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
