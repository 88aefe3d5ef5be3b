package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/performance-signup/internal/model"
	"github.com/iliyamo/performance-signup/internal/repository"
	"github.com/iliyamo/performance-signup/internal/schedule"
	"github.com/iliyamo/performance-signup/internal/service"
	"github.com/iliyamo/performance-signup/internal/utils"
)

// downTable fails every read.
type downTable struct{ *repository.MemoryTable }

func (downTable) ReadTable(context.Context) ([]model.Row, error) {
	return nil, errors.New("connection refused")
}

func row(date, guest, name string) model.Row {
	r := model.Row{Date: model.TextCell(date), GuestArtist: model.TextCell(guest), Name: name}
	if name != "" {
		r.Instrument, r.Piece, r.Duration = "Viola", "Hindemith", "7'"
	}
	return r
}

func booking(tbl service.Table) *service.BookingService {
	return service.NewBookingService(service.Options{
		Table:  tbl,
		Parser: schedule.DateParser{Year: 2025, Location: time.UTC},
		Logger: zap.NewNop(),
		Now:    func() time.Time { return time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func do(e *echo.Echo, method, target, body, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func signupServer(tbl service.Table, onClaimed func(context.Context)) *echo.Echo {
	h := &SignupHandler{Booking: booking(tbl), Log: zap.NewNop(), OnClaimed: onClaimed}
	e := echo.New()
	e.GET("/v1/dates", h.ListDates)
	e.POST("/v1/signup", h.Submit)
	return e
}

func TestListDates(t *testing.T) {
	tbl := repository.NewMemoryTable(
		row("Sept 13", "Thies-Thompson", ""),
		row("", "", "Ana"),
		row("Aug 2", "HOST", ""),
	)
	rec := do(signupServer(tbl, nil), http.MethodGet, "/v1/dates", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp datesResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || len(resp.Dates) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	d := resp.Dates[0]
	if d.Date != "Sept 13" || d.RawDate != "Sept 13" || d.Label != "September 13, 2025 - Viola Masterclass" {
		t.Errorf("unexpected date option %+v", d)
	}
	if d.TotalSlots != 2 || d.OccupiedSlots != 1 || d.AvailableSlots != 1 || !d.Available || d.ISODate != "2025-09-13" {
		t.Errorf("unexpected counts %+v", d)
	}
}

func TestListDates_StoreDown(t *testing.T) {
	rec := do(signupServer(downTable{repository.NewMemoryTable()}, nil), http.MethodGet, "/v1/dates", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"success":true,"dates":[]}` {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestListDates_JSONP(t *testing.T) {
	e := signupServer(repository.NewMemoryTable(), nil)
	rec := do(e, http.MethodGet, "/v1/dates?callback=app.onDates", "", "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "app.onDates(") {
		t.Errorf("unexpected JSONP response %d %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.Contains(ct, "javascript") {
		t.Errorf("unexpected content type %q", ct)
	}
	rec = do(e, http.MethodGet, "/v1/dates?callback=alert(1)", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsafe callback, got %d", rec.Code)
	}
}

func TestSubmit(t *testing.T) {
	cases := []struct {
		name    string
		rows    []model.Row
		body    string
		status  int
		message string
	}{
		{
			name:    "success",
			rows:    []model.Row{row("Oct 4", "HOST", ""), row("", "", "Bob")},
			body:    `{"date":"Oct 4","name":"Clara","instrument":"Cello","piece":"Elgar","duration":"8'"}`,
			status:  http.StatusOK,
			message: "Registration submitted successfully!",
		},
		{
			name:    "missing fields",
			rows:    []model.Row{row("Oct 4", "HOST", "")},
			body:    `{"date":"Oct 4","name":"Clara","instrument":"","piece":"Elgar","duration":"8'"}`,
			status:  http.StatusBadRequest,
			message: "Missing required fields",
		},
		{
			name:    "full",
			rows:    []model.Row{row("Oct 4", "HOST", "Bob")},
			body:    `{"date":"Oct 4","name":"Clara","instrument":"Cello","piece":"Elgar","duration":"8'"}`,
			status:  http.StatusConflict,
			message: "No available slots for the selected date. Please choose a different date.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(signupServer(repository.NewMemoryTable(tc.rows...), nil), http.MethodPost, "/v1/signup", tc.body, echo.MIMEApplicationJSON)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, rec.Code, rec.Body.String())
			}
			var resp struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp.Message != tc.message || resp.Success != (tc.status == http.StatusOK) {
				t.Errorf("unexpected response %+v", resp)
			}
		})
	}
}

func TestSubmit_FormAndPurge(t *testing.T) {
	tbl := repository.NewMemoryTable(row("Oct 4", "HOST", ""))
	purged := 0
	e := signupServer(tbl, func(context.Context) { purged++ })
	form := url.Values{"date": {"Oct 4"}, "name": {"Clara"}, "instrument": {"Cello"}, "piece": {"Elgar"}, "duration": {"8'"}}
	rec := do(e, http.MethodPost, "/v1/signup", form.Encode(), echo.MIMEApplicationForm)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if purged != 1 {
		t.Errorf("expected cache purge after claim, got %d", purged)
	}
	rows, _ := tbl.ReadTable(context.Background())
	if rows[0].Name != "Clara" {
		t.Errorf("row not written: %+v", rows[0])
	}
}

func TestSubmit_StoreDown(t *testing.T) {
	body := `{"date":"Oct 4","name":"Clara","instrument":"Cello","piece":"Elgar","duration":"8'"}`
	rec := do(signupServer(downTable{repository.NewMemoryTable()}, nil), http.MethodPost, "/v1/signup", body, echo.MIMEApplicationJSON)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Error finding available slot") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestCalendarFeed(t *testing.T) {
	h := &CalendarHandler{Booking: booking(repository.NewMemoryTable(row("Oct 4", "HOST", "Ana"))), Log: zap.NewNop()}
	e := echo.New()
	e.GET("/v1/calendar.ics", h.Feed)
	rec := do(e, http.MethodGet, "/v1/calendar.ics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/calendar") {
		t.Errorf("unexpected content type %q", rec.Header().Get(echo.HeaderContentType))
	}
	if !strings.Contains(rec.Body.String(), "Performance Class") {
		t.Errorf("feed missing session summary:\n%s", rec.Body.String())
	}
}

func TestAdmin(t *testing.T) {
	hash, err := utils.HashPassword("letmein", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	h := &AdminHandler{
		Booking:      booking(repository.NewMemoryTable(row("Aug 2", "HOST", "Ana"), row("Oct 4", "Mercer", ""))),
		Log:          zap.NewNop(),
		PasswordHash: hash,
		JWTSecret:    "secret",
		AccessTTLMin: 5,
	}
	e := echo.New()
	e.POST("/login", h.Login)
	e.GET("/sessions", h.Sessions)
	e.POST("/setup", h.Setup)

	if rec := do(e, http.MethodPost, "/login", `{"password":"nope"}`, echo.MIMEApplicationJSON); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/login", `{}`, echo.MIMEApplicationJSON); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty password, got %d", rec.Code)
	}
	rec := do(e, http.MethodPost, "/login", `{"password":"letmein"}`, echo.MIMEApplicationJSON)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"token"`) {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/sessions", "", "")
	var resp struct {
		Sessions []sessionResp `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(resp.Sessions))
	}
	if !resp.Sessions[0].Past || len(resp.Sessions[0].Performers) != 1 || resp.Sessions[0].Category != "performance-class" {
		t.Errorf("unexpected past session %+v", resp.Sessions[0])
	}
	if resp.Sessions[1].Label != "October 4, 2025 - Cello Masterclass" || resp.Sessions[1].Date != "2025-10-04" {
		t.Errorf("unexpected session %+v", resp.Sessions[1])
	}

	if rec := do(e, http.MethodPost, "/setup", "", ""); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 from setup, got %d", rec.Code)
	}
}
