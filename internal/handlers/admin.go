package handlers

import (
	"errors"
	"net/http"

	"sorteo-ig/internal/middleware"
	"sorteo-ig/internal/services"
)

// PostDraw runs the draw with the submitted admin password.
func (h *Handler) PostDraw(w http.ResponseWriter, r *http.Request) {
	data := PageData{Drawn: middleware.DrawStateFrom(r.Context()).Drawn}

	winner, err := h.giveaway.Draw(r.Context(), middleware.Credential(r.Context()))
	if err != nil {
		if errors.Is(err, services.ErrAlreadyDrawn) {
			data.Drawn = true
		}
		status, notice := describe(err)
		data.Notice = notice
		h.renderPage(w, r, status, &data)
		return
	}

	data.Drawn = true
	data.Notice = &Notice{Level: "success", Text: "🏆 ¡Sorteo realizado! Ganador/a: @" + winner.Handle}
	h.renderPage(w, r, http.StatusOK, &data)
}

// PostReset deletes every winner and participant.
func (h *Handler) PostReset(w http.ResponseWriter, r *http.Request) {
	data := PageData{Drawn: middleware.DrawStateFrom(r.Context()).Drawn}

	if err := h.giveaway.Reset(r.Context(), middleware.Credential(r.Context())); err != nil {
		status, notice := describe(err)
		data.Notice = notice
		h.renderPage(w, r, status, &data)
		return
	}

	data.Drawn = false
	data.Notice = &Notice{Level: "success", Text: "Base de datos reiniciada"}
	h.renderPage(w, r, http.StatusOK, &data)
}

// describe maps a workflow error to the response status and the message
// shown to the user. Raw error text never reaches the page.
func describe(err error) (int, *Notice) {
	if errors.Is(err, services.ErrNotAttempted) {
		return http.StatusOK, nil
	}

	var serr *services.Error
	if !errors.As(err, &serr) {
		return http.StatusInternalServerError, &Notice{Level: "error", Text: "❌ Error inesperado"}
	}

	switch serr.Kind {
	case services.KindValidation:
		switch serr.Code {
		case services.ErrBadPhone.Code:
			return http.StatusUnprocessableEntity, &Notice{Level: "error", Text: "❌ Teléfono inválido. Ejemplo: 5491123456789"}
		case services.ErrBadRegion.Code:
			return http.StatusUnprocessableEntity, &Notice{Level: "error", Text: "❌ Provincia inválida"}
		default:
			return http.StatusUnprocessableEntity, &Notice{Level: "error", Text: "⚠️ Todos los campos son obligatorios"}
		}
	case services.KindConflict:
		switch serr.Code {
		case services.ErrPhoneTaken.Code:
			return http.StatusConflict, &Notice{Level: "error", Text: "❌ Teléfono ya registrado"}
		case services.ErrHandleTaken.Code:
			return http.StatusConflict, &Notice{Level: "error", Text: "❌ Instagram ya registrado"}
		default:
			return http.StatusConflict, &Notice{Level: "error", Text: "❌ Error al registrar participante"}
		}
	case services.KindAuth:
		return http.StatusUnauthorized, &Notice{Level: "error", Text: "❌ Contraseña incorrecta"}
	case services.KindState:
		if serr.Code == services.ErrRegistrationClosed.Code {
			return http.StatusConflict, &Notice{Level: "warning", Text: "⛔ El sorteo ya fue realizado. Registro cerrado."}
		}
		return http.StatusOK, &Notice{Level: "warning", Text: "⛔ El sorteo ya fue realizado"}
	case services.KindPrecheck:
		return http.StatusOK, &Notice{Level: "warning", Text: "Se necesitan al menos 2 participantes"}
	default:
		return http.StatusServiceUnavailable, &Notice{Level: "error", Text: "❌ No se pudo acceder a la base de datos. Intentá de nuevo."}
	}
}
