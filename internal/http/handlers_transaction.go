package http

import (
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

const rejectedDraftMessage = "Enter a numeric amount and a valid date"

// handleCreateTransaction applies the posted fields to the draft and creates
// a transaction from it. A draft the guard rejects is answered with the kept
// form and a warning notification, never an HTTP error.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	logger := log.FromContext(ctx)

	parser := NewRequestBodyParser(r)
	if resp := ParseBodyOrFail(parser); resp != nil {
		resp.Write(w)
		return
	}

	tx, created, err := s.tracker.Submit(ctx, parser.FormUpdate())
	if err != nil {
		logger.ErrorContext(ctx, "Transaction create failed",
			log.FieldOperation, log.OpCreate,
			log.FieldError, err.Error())
		InternalServerError("Could not save the transaction").Write(w)
		return
	}

	resp := NewHTMXResponse()
	if !created {
		s.appMetrics.rejected.Add(1)
		resp.TriggerWarningNotification(rejectedDraftMessage)
	} else {
		s.appMetrics.created.Add(1)
		resp.TriggerTransactionCreated(tx).
			TriggerFormReset().
			TriggerSuccessNotification(tx.Type.String() + " of " + core.FormatAmount(tx.Amount) + " added")
	}
	s.writeForm(w, r, resp)
}

// handleDeleteTransaction removes a transaction by id and answers with the
// refreshed list.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()

	parser := NewRequestBodyParser(r)
	if resp := ParseBodyOrFail(parser); resp != nil {
		resp.Write(w)
		return
	}
	id := parser.Get("id")
	if id == "" {
		id = sanitizeInput(r.URL.Query().Get("id"))
	}
	if id == "" {
		BadRequestError("Missing transaction id").Write(w)
		return
	}

	if err := s.tracker.DeleteTransaction(ctx, id); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Transaction delete failed",
			log.FieldTransactionID, id,
			log.FieldOperation, log.OpDelete,
			log.FieldError, err.Error())
		InternalServerError("Could not delete the transaction").Write(w)
		return
	}
	s.appMetrics.deleted.Add(1)

	s.writeTransactions(w, r, NewHTMXResponse().
		TriggerTransactionDeleted(id).
		TriggerInfoNotification("Transaction deleted"))
}

func (s *Server) handleTransactionsPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	s.writeTransactions(w, r, NewHTMXResponse())
}

func (s *Server) writeTransactions(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder) {
	ctx := r.Context()
	txs, err := s.tracker.Transactions(ctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Transaction list failed",
			log.FieldOperation, log.OpList,
			log.FieldError, err.Error())
		InternalServerError("Could not load transactions").Write(w)
		return
	}
	body, ok := s.render(ctx, "transactions.html", newTransactionRows(txs))
	if !ok {
		InternalServerError("Transaction list unavailable").Write(w)
		return
	}
	resp.Body(body).Header("Content-Type", "text/html; charset=utf-8").Write(w)
}

// handleAPITransactions returns the stored transactions as JSON, newest first.
func (s *Server) handleAPITransactions(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	txs, err := s.tracker.Transactions(ctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Transaction list failed",
			log.FieldOperation, log.OpList,
			log.FieldError, err.Error())
		NewHTMXResponse().Status(http.StatusInternalServerError).
			BodyJSON(map[string]string{"error": "could not load transactions"}).
			Write(w)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	NewHTMXResponse().BodyJSON(txs).Write(w)
}
