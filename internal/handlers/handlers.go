package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"sorteo-ig/internal/middleware"
	"sorteo-ig/internal/models"
	"sorteo-ig/internal/services"
	"sorteo-ig/web"
)

// Handler serves the giveaway page and its form actions.
type Handler struct {
	giveaway  *services.Giveaway
	templates *template.Template
}

// New creates a Handler.
func New(giveaway *services.Giveaway, templates *template.Template) *Handler {
	return &Handler{giveaway: giveaway, templates: templates}
}

// ParseTemplates loads the embedded page templates.
func ParseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		// bar width as a percentage of the largest bar
		"pct": func(n, max int) int {
			if max <= 0 {
				return 0
			}
			return n * 100 / max
		},
	}
	return template.New("layout.html").Funcs(funcMap).ParseFS(web.FS, "templates/*.html")
}

// Notice is the message shown at the top of the page after an action.
type Notice struct {
	Level string // success, warning, error, info
	Text  string
}

type registerForm struct {
	FirstName string
	LastName  string
	Phone     string
	Handle    string
	Region    string
}

// PageData feeds the index template.
type PageData struct {
	Title        string
	Regions      []string
	Drawn        bool
	Count        int
	Participants []models.Participant
	Bars         []models.RegionCount
	MaxBar       int
	Winner       *models.Participant
	Notice       *Notice
	Registration *services.Registration
	Form         registerForm
}

// Home renders the giveaway page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	data := PageData{Drawn: middleware.DrawStateFrom(r.Context()).Drawn}
	h.renderPage(w, r, http.StatusOK, &data)
}

// PostRegister handles the registration form.
func (h *Handler) PostRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
		return
	}

	form := registerForm{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Phone:     r.PostFormValue("phone"),
		Handle:    r.PostFormValue("handle"),
		Region:    r.PostFormValue("region"),
	}

	data := PageData{Drawn: middleware.DrawStateFrom(r.Context()).Drawn}
	reg, err := h.giveaway.Register(r.Context(), form.FirstName, form.LastName, form.Phone, form.Handle, form.Region)
	if err != nil {
		// Keep what the user typed so they can fix it.
		data.Form = form
		if errors.Is(err, services.ErrRegistrationClosed) {
			data.Drawn = true
		}
		status, notice := describe(err)
		data.Notice = notice
		h.renderPage(w, r, status, &data)
		return
	}

	data.Registration = reg
	data.Notice = &Notice{Level: "success", Text: "✅ Registro exitoso"}
	h.renderPage(w, r, http.StatusOK, &data)
}

// ExportXLSX downloads all participants as a spreadsheet.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	body, err := h.giveaway.ExportXLSX(r.Context())
	if err != nil {
		slog.Error("export failed", "error", err)
		http.Error(w, "No se pudo generar el Excel", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="participantes_sorteo.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Warn("export write failed", "error", err)
	}
}

// Stats returns the participant total and per-region tally as JSON.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	participants, err := h.giveaway.Participants(r.Context())
	if err != nil {
		slog.Error("stats failed", "error", err)
		http.Error(w, "Error de base de datos", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(models.Stats{
		Total:   len(participants),
		Regions: services.CountByRegion(participants),
	})
	if err != nil {
		slog.Warn("stats write failed", "error", err)
	}
}

// renderPage fills the read-only parts of data from the store and executes
// the page. Store failures while reading degrade to an error notice.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, data *PageData) {
	ctx := r.Context()
	data.Title = "Sorteo Instagram"
	data.Regions = models.Regions
	if data.Form.Region == "" {
		data.Form.Region = models.Regions[0]
	}

	var loadErr error
	participants, err := h.giveaway.Participants(ctx)
	if err != nil {
		loadErr = err
	} else {
		data.Participants = participants
		data.Count = len(participants)
		data.Bars = services.RegionBars(services.CountByRegion(participants))
		for _, b := range data.Bars {
			data.MaxBar = max(data.MaxBar, b.Count)
		}
	}

	winner, err := h.giveaway.CurrentWinner(ctx)
	if err != nil {
		loadErr = err
	} else {
		data.Winner = winner
	}

	if state := middleware.DrawStateFrom(ctx); state.Err != nil {
		loadErr = state.Err
	}
	if loadErr != nil {
		slog.Error("page data load failed", "error", loadErr)
		if data.Notice == nil {
			_, data.Notice = describe(loadErr)
		}
	}

	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		slog.Error("template execute failed", "error", err)
		http.Error(w, "Error de plantilla", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
