package http

import (
	"errors"
	"net/http"
	"strconv"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
)

const (
	msgFillAllFields = "Please fill all fields."
	msgUploadFailed  = "Photo upload failed."
	msgExpenseFailed = "Failed to add expense."
	msgPhotoNotFound = "Photo not found."
)

// handleCreateExpense runs the submission pipeline for one expense form.
//
// The response mirrors the pipeline: a notification with the fixed message,
// form:reset whenever the form was cleared, and the refreshed history on
// success.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentExpense)

	form, err := ParseExpenseForm(w, r, s.maxPhotoBytes)
	if err != nil {
		if errors.Is(err, core.ErrPhotoTooLarge) || errors.Is(err, core.ErrInvalidPhoto) {
			NewHTMXResponse().
				Status(http.StatusUnprocessableEntity).
				TriggerErrorNotification(validationMessage(err)).
				Write(w)
			return
		}
		logger.WarnContext(r.Context(), "Malformed expense form", applog.FieldError, err)
		BadRequestError("Invalid request.").Write(w)
		return
	}

	sess, state, ledger := s.workspace(r)
	// Submit's own refresh marks the state loaded, so decide up front.
	needCategories := !state.Loaded()
	hasPhoto := !form.Photo.IsEmpty()
	submitter := services.NewSubmitter(ledger,
		services.WithLogger(logger.Slog()),
		services.WithStateObserver(func(st services.SubmissionState) {
			logger.DebugContext(r.Context(), "Submission state", applog.FieldState, st.String())
		}))

	out, err := submitter.Submit(r.Context(), form)

	resp := NewHTMXResponse()
	if form.IsEmpty() {
		resp.TriggerFormReset()
	}

	switch {
	case errors.Is(err, core.ErrUpload):
		resp.Status(http.StatusInternalServerError).TriggerErrorNotification(msgUploadFailed).Write(w)
		return
	case errors.Is(err, core.ErrWrite):
		resp.Status(http.StatusInternalServerError).TriggerErrorNotification(msgExpenseFailed).Write(w)
		return
	case errors.Is(err, core.ErrValidation):
		resp.Status(http.StatusUnprocessableEntity).TriggerErrorNotification(msgFillAllFields).Write(w)
		return
	case err != nil:
		resp.Status(http.StatusInternalServerError).TriggerErrorNotification(msgExpenseFailed).Write(w)
		return
	}

	if out.RefreshErr != nil {
		logger.WarnContext(r.Context(), "Expense saved but list refresh failed", applog.FieldError, out.RefreshErr)
	}
	if needCategories {
		if err := ledger.RefreshCategories(r.Context()); err != nil {
			logger.WarnContext(r.Context(), "Category names unavailable", applog.FieldError, err)
		}
	}
	logger.LogExpenseCreated(r.Context(), sess.User.ID,
		out.Entry.Description,
		out.Entry.Amount.StringFixed(2),
		out.Entry.CategoryID,
		state.CategoryName(out.Entry.CategoryID),
		hasPhoto)

	resp = resp.TriggerSuccessNotification(out.Message()).TriggerExpensesChanged()
	s.renderFragment(r, resp, "expense_list", expenseList{
		Expenses: expenseRows(state.Expenses(), state.Categories()),
	}).Write(w)
}

// handlePhoto serves photos kept by the self-hosted backends.
func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	if s.photos == nil {
		NotFoundError(msgPhotoNotFound).Write(w)
		return
	}
	sess, _ := sessionFrom(r.Context())
	photo, err := s.photos.ReadPhoto(r.Context(), sess.User.ID, r.PathValue("id"))
	if errors.Is(err, core.ErrPhotoNotFound) {
		NotFoundError(msgPhotoNotFound).Write(w)
		return
	}
	if err != nil {
		applog.FromContext(r.Context()).LogError(r.Context(), "Failed to read photo", err, applog.OpRead,
			applog.NewFields().WithUser(sess.User.ID))
		s.internalError(w, r)
		return
	}

	w.Header().Set("Content-Type", photo.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(photo.Data)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(photo.Data)
}
