package http

import (
	"net/http"

	"moneta/internal/core"
	"moneta/internal/export"
	"moneta/internal/log"
	"moneta/internal/period"
)

// periodView describes the resolved period echoed back on view responses.
type periodView struct {
	Granularity period.Granularity `json:"granularity"`
	Anchor      core.Date          `json:"anchor"`
	Start       core.Date          `json:"start"`
	End         core.Date          `json:"end"`
	Label       string             `json:"label"`
}

func describePeriod(g period.Granularity, anchor core.Date) periodView {
	start, end := period.Range(g, anchor)
	return periodView{
		Granularity: g,
		Anchor:      start,
		Start:       start,
		End:         end,
		Label:       period.Label(g, anchor),
	}
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	state, err := viewState(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	records, err := s.ledger.RecordsInPeriod(r.Context(), state)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Period  periodView    `json:"period"`
		Records []core.Record `json:"records"`
	}{describePeriod(state.Granularity, state.Anchor), records})
}

func (s *Server) handleUpsertRecord(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var rec core.Record
	if err := decodeJSON(r, &rec); err != nil {
		respondError(w, r, err)
		return
	}
	saved, err := s.ledger.UpsertRecord(r.Context(), id, rec)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateUser(id)
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.ledger.DeleteRecord(r.Context(), id, r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateUser(id)
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	st, err := s.ledger.Ledger(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st.Categories())
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var cat core.Category
	if err := decodeJSON(r, &cat); err != nil {
		respondError(w, r, err)
		return
	}
	saved, err := s.ledger.AddCategory(r.Context(), id, cat)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateUser(id)
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.ledger.DeleteCategory(r.Context(), id, r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateUser(id)
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	st, err := s.ledger.Ledger(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st.Accounts())
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var acc core.Account
	if err := decodeJSON(r, &acc); err != nil {
		respondError(w, r, err)
		return
	}
	saved, err := s.ledger.AddAccount(r.Context(), id, acc)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateUser(id)
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.ledger.DeleteAccount(r.Context(), id, r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateUser(id)
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	state, err := viewState(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	key := cacheKey(state)
	if statuses, ok := s.budgetsCache.Get(key); ok {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Budgets cache hit", log.FieldUserID, state.UserID)
		respondJSON(w, http.StatusOK, statuses)
		return
	}
	statuses, err := s.ledger.Budgets(r.Context(), state)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.budgetsCache.Set(key, statuses)
	respondJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var body struct {
		Amount core.Money `json:"amount"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	saved, err := s.ledger.SetBudget(r.Context(), id, r.PathValue("categoryId"), body.Amount)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateUser(id)
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleRemoveBudget(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.ledger.RemoveBudget(r.Context(), id, r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateUser(id)
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	state, err := viewState(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	key := cacheKey(state)
	if analysis, ok := s.analysisCache.Get(key); ok {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Analysis cache hit", log.FieldUserID, state.UserID)
		respondJSON(w, http.StatusOK, struct {
			Period periodView `json:"period"`
			Data   any        `json:"data"`
		}{describePeriod(state.Granularity, state.Anchor), analysis})
		return
	}
	analysis, err := s.ledger.Analyze(r.Context(), state)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.analysisCache.Set(key, analysis)
	respondJSON(w, http.StatusOK, struct {
		Period periodView `json:"period"`
		Data   any        `json:"data"`
	}{describePeriod(state.Granularity, state.Anchor), analysis})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	added, err := s.ledger.Import(r.Context(), id, body)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateUser(id)
	respondJSON(w, http.StatusOK, struct {
		Added int `json:"added"`
	}{added})
}

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	backup, err := s.ledger.Backup(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(backup)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	st, err := s.ledger.Ledger(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	data, err := export.CSV(st)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.ledger.Restore(r.Context(), id, body); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateUser(id)
	respondJSON(w, http.StatusNoContent, nil)
}
