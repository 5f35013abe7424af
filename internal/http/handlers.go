package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
)

const (
	msgCategoryAdded  = "Category added!"
	msgCategoryFailed = "Failed to add category."
)

type indexPage struct {
	Email      string
	Flash      string
	Categories []core.Category
	Expenses   []expenseRow
	HasChart   bool
}

type categoryPanel struct {
	Categories []core.Category
}

type expenseList struct {
	Expenses []expenseRow
}

// workspace assembles the per-request view of the signed-in user: their held
// lists and a ledger writing through the backend on their behalf.
func (s *Server) workspace(r *http.Request) (core.Session, *session.State, *services.Ledger) {
	sess, _ := sessionFrom(r.Context())
	state := s.sessions.Get(sess.User.ID)
	data := services.NewPublishingDataService(s.backend.DataFor(sess), s.publisher, sess.User, state.CategoryName)
	ledger := services.NewLedger(data, state, applog.FromContext(r.Context()).Slog())
	return sess, state, ledger
}

// handleIndex loads both lists and renders the main screen. Lists that fail
// to load are shown as last held; the failure is only logged.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, state, ledger := s.workspace(r)

	page := indexPage{Email: sess.User.Email, Flash: s.popFlash(w, r)}
	if err := ledger.Load(r.Context()); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Ledger load incomplete", applog.FieldError, err)
	}

	categories := state.Categories()
	expenses := state.Expenses()
	page.Categories = categories
	page.Expenses = expenseRows(expenses, categories)
	page.HasChart = len(expenses) > 0

	s.render(w, r, "index.html", http.StatusOK, page)
}

// handleCreateCategory adds a category. A blank name is ignored like an
// unpressed button; the form is cleared whatever the backend answers.
func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	name, color, err := ParseCategoryForm(r)
	if err != nil {
		BadRequestError("Invalid request.").Write(w)
		return
	}
	if name == "" {
		NewHTMXResponse().Status(http.StatusNoContent).Write(w)
		return
	}

	_, state, ledger := s.workspace(r)
	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentCategory)

	resp := NewHTMXResponse().TriggerCategoryReset()
	c, err := ledger.AddCategory(r.Context(), name, color)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrValidation) && !errors.Is(err, core.ErrWrite) {
			status = http.StatusUnprocessableEntity
		}
		logger.LogError(r.Context(), "Failed to add category", err, applog.OpCreate, nil)
		resp.Status(status).TriggerErrorNotification(msgCategoryFailed).Write(w)
		return
	}

	logger.InfoContext(r.Context(), "Category created", applog.FieldCategory, c.Name)
	resp = resp.TriggerSuccessNotification(msgCategoryAdded).TriggerCategoriesChanged()
	s.renderFragment(r, resp, "category_panel", categoryPanel{Categories: state.Categories()}).Write(w)
}

// handleExpenseList re-reads the expenses and renders the history partial.
func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	_, state, ledger := s.workspace(r)

	var err error
	if state.Loaded() {
		err = ledger.RefreshExpenses(r.Context())
	} else {
		err = ledger.Load(r.Context())
	}
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Showing stale expense list", applog.FieldError, err)
	}

	s.render(w, r, "expense_list", http.StatusOK, expenseList{
		Expenses: expenseRows(state.Expenses(), state.Categories()),
	})
}
