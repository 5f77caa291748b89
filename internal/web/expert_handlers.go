package web

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/bfcwefc/msme-desk/internal/apperr"
	"github.com/bfcwefc/msme-desk/internal/dates"
	"github.com/bfcwefc/msme-desk/internal/expert"
)

func (s *Server) handleListExperts(w http.ResponseWriter, r *http.Request) {
	experts, err := s.experts.Repository().List(r.Context())
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, experts, http.StatusOK)
}

func (s *Server) handleCreateExpert(w http.ResponseWriter, r *http.Request) {
	var e expert.Expert
	if err := decodeJSON(r, &e); err != nil {
		apiFail(w, err)
		return
	}
	e.ID = ""
	e.CreatedAt, e.UpdatedAt = time.Time{}, time.Time{}

	created, err := s.experts.Repository().Create(r.Context(), &e)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, created, http.StatusCreated)
}

func (s *Server) handleGetExpert(w http.ResponseWriter, r *http.Request) {
	e, err := s.experts.Repository().GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, e, http.StatusOK)
}

func (s *Server) handleUpdateExpert(w http.ResponseWriter, r *http.Request) {
	var p expert.Patch
	if err := decodeJSON(r, &p); err != nil {
		apiFail(w, err)
		return
	}

	e, err := s.experts.Repository().Update(r.Context(), mux.Vars(r)["id"], p)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, e, http.StatusOK)
}

func (s *Server) handleDeleteExpert(w http.ResponseWriter, r *http.Request) {
	if err := s.experts.Repository().Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, map[string]string{"message": "Expert deleted successfully"}, http.StatusOK)
}

func (s *Server) handleAddMonth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month"`
		Year  int    `json:"year"`
	}
	if err := decodeJSON(r, &req); err != nil {
		apiFail(w, err)
		return
	}

	e, err := s.experts.AddMonth(r.Context(), mux.Vars(r)["id"], req.Month, req.Year)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, e, http.StatusCreated)
}

func (s *Server) handleSetCurrentMonth(w http.ResponseWriter, r *http.Request) {
	plan, err := indexVar(r, "plan")
	if err != nil {
		apiFail(w, err)
		return
	}

	e, err := s.experts.SetCurrentMonth(r.Context(), mux.Vars(r)["id"], plan)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, e, http.StatusOK)
}

func (s *Server) handleAddWeek(w http.ResponseWriter, r *http.Request) {
	s.saveWeek(w, r, false)
}

func (s *Server) handleEditWeek(w http.ResponseWriter, r *http.Request) {
	s.saveWeek(w, r, true)
}

func (s *Server) saveWeek(w http.ResponseWriter, r *http.Request, edit bool) {
	plan, err := indexVar(r, "plan")
	if err != nil {
		apiFail(w, err)
		return
	}
	var week *int
	if edit {
		i, err := indexVar(r, "week")
		if err != nil {
			apiFail(w, err)
			return
		}
		week = &i
	}

	var in expert.WeekInput
	if err := decodeJSON(r, &in); err != nil {
		apiFail(w, err)
		return
	}

	e, err := s.experts.SaveWeek(r.Context(), mux.Vars(r)["id"], plan, week, in)
	if err != nil {
		apiFail(w, err)
		return
	}

	code := http.StatusCreated
	if edit {
		code = http.StatusOK
	}
	apiJSON(w, e, code)
}

func (s *Server) handleDeleteWeek(w http.ResponseWriter, r *http.Request) {
	plan, err := indexVar(r, "plan")
	if err != nil {
		apiFail(w, err)
		return
	}
	week, err := indexVar(r, "week")
	if err != nil {
		apiFail(w, err)
		return
	}

	e, err := s.experts.DeleteWeek(r.Context(), mux.Vars(r)["id"], plan, week)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, e, http.StatusOK)
}

// handleActiveWeek reports the current plan's week containing ?date=
// (default today). week is null when no week covers the day.
func (s *Server) handleActiveWeek(w http.ResponseWriter, r *http.Request) {
	day := dates.Today()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := dates.Parse(d)
		if err != nil {
			apiFail(w, apperr.Validation("date: %v", err))
			return
		}
		day = parsed
	}

	aw, err := s.experts.ActiveWeek(r.Context(), mux.Vars(r)["id"], day)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, aw, http.StatusOK)
}
