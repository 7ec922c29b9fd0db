package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/export"
	"github.com/haclabs/haccare/internal/label"
	"github.com/haclabs/haccare/internal/models"
	"github.com/haclabs/haccare/internal/services"
	"github.com/haclabs/haccare/internal/session"
	"github.com/labstack/echo/v4"
)

// blankRows is how many empty MAR rows the edit form offers for new entries.
const blankRows = 2

type loginData struct {
	Username string
}

func (s *Server) loginPage(c echo.Context) error {
	if s.loadState(c).Authenticated {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Render(http.StatusOK, "login", page{Title: "Login", Screen: session.ScreenLogin, Data: loginData{}})
}

func (s *Server) login(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	user, err := s.users.Authenticate(username, password)
	if err != nil {
		if !errors.Is(err, common.ErrorUnauthorized) {
			return err
		}
		s.log.Warn().Err(err).Str("remote_ip", c.RealIP()).Msg("login failed")
		return c.Render(http.StatusUnauthorized, "login", page{
			Title:  "Login",
			Screen: session.ScreenLogin,
			Error:  "Invalid credentials.",
			Data:   loginData{Username: username},
		})
	}

	st := session.New()
	if err := st.Login(user); err != nil {
		return err
	}
	if err := s.storeState(c, st); err != nil {
		return err
	}
	s.log.Info().Str("user", st.CurrentUser).Msg("login")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) logout(c echo.Context) error {
	st := s.loadState(c)
	if st.Authenticated {
		user := st.CurrentUser
		if err := st.Logout(); err != nil {
			return err
		}
		s.log.Info().Str("user", user).Msg("logout")
	}
	if err := s.storeState(c, st); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

type homeData struct {
	ID       string
	Record   *models.PatientRecord
	Vitals   []models.Vital
	NotFound bool
}

func (s *Server) home(c echo.Context) error {
	st, err := navigate(c, session.ScreenHome)
	if err != nil {
		return err
	}

	data := homeData{ID: strings.TrimSpace(c.QueryParam("rec"))}
	if data.ID != "" {
		rec, err := s.patients.Get(c.Request().Context(), data.ID)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			data.NotFound = true
		case err != nil:
			return err
		default:
			data.Record = rec
			data.Vitals = rec.RecentVitals(models.VitalsShown)
		}
	}
	return c.Render(http.StatusOK, "home", s.page(c, st, "View Patient Record", data))
}

type editData struct {
	ID         string
	Form       services.PatientForm
	Scheduled  []models.MedicationRow
	PRN        []models.MedicationRow
	IV         []models.IVRow
	Genders    []string
	Physicians []string
}

func (s *Server) newEditData(id string, f services.PatientForm) editData {
	return editData{
		ID:         id,
		Form:       f,
		Scheduled:  withBlanks(f.MAR.Scheduled),
		PRN:        withBlanks(f.MAR.PRN),
		IV:         withBlanks(f.MAR.IV),
		Genders:    models.Genders,
		Physicians: models.Physicians,
	}
}

func withBlanks[T any](rows []T) []T {
	out := make([]T, len(rows), len(rows)+blankRows)
	copy(out, rows)
	var zero T
	for i := 0; i < blankRows; i++ {
		out = append(out, zero)
	}
	return out
}

func (s *Server) editPage(c echo.Context) error {
	st, err := navigate(c, session.ScreenEdit)
	if err != nil {
		return err
	}

	id := strings.TrimSpace(c.QueryParam("rec"))
	if pending := st.TakeOpenRecord(); id == "" {
		id = pending
	}
	if err := s.storeState(c, st); err != nil {
		return err
	}

	form := services.NewPatientForm(s.now())
	if id != "" {
		rec, err := s.patients.Get(c.Request().Context(), id)
		switch {
		case errors.Is(err, common.ErrorNotFound):
		case err != nil:
			return err
		default:
			form = services.FormFor(rec, s.now())
		}
	}
	return c.Render(http.StatusOK, "edit", s.page(c, st, "Add / Edit Patient Record", s.newEditData(id, form)))
}

func (s *Server) save(c echo.Context) error {
	st, err := navigate(c, session.ScreenEdit)
	if err != nil {
		return err
	}

	id := strings.TrimSpace(c.FormValue("rec"))
	form, err := parseForm(c)
	saved := ""
	if err == nil {
		saved, err = s.patients.Save(c.Request().Context(), id, form)
	}
	if errors.Is(err, common.ErrInvalidInput) {
		p := s.page(c, st, "Add / Edit Patient Record", s.newEditData(id, form))
		p.Error = err.Error()
		return c.Render(http.StatusBadRequest, "edit", p)
	}
	if err != nil {
		return err
	}
	id = saved

	if err := st.Open(id); err != nil {
		return err
	}
	if err := s.storeState(c, st); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/edit?flash="+url.QueryEscape("Saved record "+id))
}

// parseForm reads the edit form. MAR tables arrive as parallel arrays of
// column values, one entry per row.
func parseForm(c echo.Context) (services.PatientForm, error) {
	values, err := c.FormParams()
	if err != nil {
		return services.PatientForm{}, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}

	f := services.PatientForm{
		PatientName:        strings.TrimSpace(values.Get("patient_name")),
		DateOfBirth:        values.Get("dob"),
		AdmissionDate:      values.Get("admission_date"),
		Gender:             values.Get("gender"),
		AttendingPhysician: values.Get("physician"),
		Diagnosis:          strings.TrimSpace(values.Get("diagnosis")),
		Allergies:          strings.TrimSpace(values.Get("allergies")),
		Notes:              values.Get("notes"),
	}

	f.MAR.Scheduled = medicationRows(values, "sched")
	f.MAR.PRN = medicationRows(values, "prn")
	types, rates, times, given := values["iv_type"], values["iv_rate"], values["iv_time"], values["iv_given"]
	for i := range types {
		f.MAR.IV = append(f.MAR.IV, models.IVRow{
			Type:  strings.TrimSpace(types[i]),
			Rate:  strings.TrimSpace(at(rates, i)),
			Time:  strings.TrimSpace(at(times, i)),
			Given: strings.TrimSpace(at(given, i)),
		})
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"systolic", &f.Vitals.Systolic},
		{"diastolic", &f.Vitals.Diastolic},
		{"pulse", &f.Vitals.Pulse},
	}
	for _, in := range ints {
		n, err := strconv.Atoi(strings.TrimSpace(values.Get(in.key)))
		if err != nil {
			return f, fmt.Errorf("%w: %s must be a whole number", common.ErrInvalidInput, in.key)
		}
		*in.dst = n
	}
	temp, err := strconv.ParseFloat(strings.TrimSpace(values.Get("temperature")), 64)
	if err != nil {
		return f, fmt.Errorf("%w: temperature must be a number", common.ErrInvalidInput)
	}
	f.Vitals.Temperature = temp
	return f, nil
}

func medicationRows(values url.Values, prefix string) []models.MedicationRow {
	meds, times, given := values[prefix+"_med"], values[prefix+"_time"], values[prefix+"_given"]
	rows := make([]models.MedicationRow, 0, len(meds))
	for i := range meds {
		rows = append(rows, models.MedicationRow{
			Medication: strings.TrimSpace(meds[i]),
			Time:       strings.TrimSpace(at(times, i)),
			Given:      strings.TrimSpace(at(given, i)),
		})
	}
	return rows
}

func at(vs []string, i int) string {
	if i < len(vs) {
		return vs[i]
	}
	return ""
}

type recordsData struct {
	Records []services.RecordSummary
}

func (s *Server) list(c echo.Context) error {
	st, err := navigate(c, session.ScreenList)
	if err != nil {
		return err
	}
	recs, err := s.patients.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "records", s.page(c, st, "All Patient Records", recordsData{Records: recs}))
}

func (s *Server) open(c echo.Context) error {
	st := stateFrom(c)
	if err := st.Open(c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.storeState(c, st); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/edit")
}

func (s *Server) remove(c echo.Context) error {
	id := c.Param("id")
	if err := s.patients.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	s.log.Info().Str("user", stateFrom(c).CurrentUser).Str("id", id).Msg("record deleted")
	return c.Redirect(http.StatusSeeOther, "/records?flash="+url.QueryEscape("Deleted record "+id))
}

func (s *Server) label(c echo.Context) error {
	png, err := label.Code128PNG(c.Param("id"), label.DefaultWidth, label.DefaultHeight)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (s *Server) chart(c echo.Context) error {
	id := c.Param("id")
	rec, err := s.patients.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.RecordPDF(&buf, id, rec, s.now()); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", "record_"+id+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (s *Server) docs(c echo.Context) error {
	st, err := navigate(c, session.ScreenDocs)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "docs", s.page(c, st, "Documentation", nil))
}

type changelogData struct {
	Entries []string
}

// releaseNotes lists the changelog, newest first.
var releaseNotes = []string{
	"v1.6: Printable PDF charts",
	"v1.5: MAR & Vitals editing fixed",
	"v1.4: Vitals last 5 logic",
	"v1.3: Add/Edit redesign",
	"v1.2: Barcode labels",
	"v1.1: Login/Logout",
}

func (s *Server) changelog(c echo.Context) error {
	st, err := navigate(c, session.ScreenChangelog)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "changelog", s.page(c, st, "Changelog", changelogData{Entries: releaseNotes}))
}
