package http

import (
	"net/http"

	"expensetracker/internal/log"
)

// handleForm renders the draft form (GET) or applies posted fields to it (POST).
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}

	if r.Method == http.MethodPost {
		parser := NewRequestBodyParser(r)
		if resp := ParseBodyOrFail(parser); resp != nil {
			resp.Write(w)
			return
		}
		form := s.tracker.UpdateForm(r.Context(), parser.FormUpdate())
		log.FromContext(r.Context()).DebugContext(r.Context(), "Form updated",
			log.FieldOperation, log.OpUpdate,
			log.FieldTransactionType, form.Type.String())
	}

	s.writeForm(w, r, NewHTMXResponse())
}

// writeForm renders the current draft into resp and sends it.
func (s *Server) writeForm(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder) {
	view := newFormView(s.tracker.Form(), s.tracker.Registry(), s.tracker.LastTranscript())
	body, ok := s.render(r.Context(), "form.html", view)
	if !ok {
		InternalServerError("Form unavailable").Write(w)
		return
	}
	resp.Body(body).Header("Content-Type", "text/html; charset=utf-8").Write(w)
}
