package http

import (
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/voice"
)

// handleVoiceSegment feeds one speech segment posted by the browser into the
// tracker and answers with the updated form. The HX-Trigger header tells the
// page whether a transaction was created or the draft was cancelled.
func (s *Server) handleVoiceSegment(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentVoice)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil || !parser.IsJSON() {
		BadRequestError("Expected a JSON speech segment").Write(w)
		return
	}
	seg, err := voice.DecodeSegment(parser.GetRaw())
	if err != nil {
		logger.WarnContext(ctx, "Segment rejected",
			log.FieldOperation, log.OpParse,
			log.FieldError, err.Error())
		UnprocessableEntityError("Malformed speech segment").Write(w)
		return
	}
	s.appMetrics.voiceSegments.Add(1)

	res, err := s.tracker.HandleSegment(ctx, seg)
	if err != nil {
		logger.ErrorContext(ctx, "Segment handling failed",
			log.FieldSegmentID, seg.ID,
			log.FieldContextID, seg.ContextID,
			log.FieldError, err.Error())
		InternalServerError("Could not save the transaction").Write(w)
		return
	}

	resp := NewHTMXResponse().TriggerFormUpdated(res.Action.String())
	switch {
	case res.Created != nil:
		s.appMetrics.created.Add(1)
		resp.TriggerTransactionCreated(*res.Created).
			TriggerFormReset().
			TriggerSuccessNotification(res.Created.Type.String() + " of " + core.FormatAmount(res.Created.Amount) + " added")
	case res.Action == voice.ActionCreate:
		s.appMetrics.rejected.Add(1)
		resp.TriggerWarningNotification(rejectedDraftMessage)
	case res.Action == voice.ActionReset:
		resp.TriggerFormReset().TriggerInfoNotification("Draft cleared")
	}
	s.writeForm(w, r, resp)
}
