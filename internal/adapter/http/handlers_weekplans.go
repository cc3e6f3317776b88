package adapthttp

import (
	"net/http"

	"weekplanner/internal/app"
)

func (s *Server) handleWeekplans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := currentUserID(r)

	switch r.Method {
	case http.MethodGet:
		items, err := s.weekplans.List(ctx, userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPost:
		var body app.SavePlanInput
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		body.ID = ""
		view, _, err := s.weekplans.Save(ctx, userID, body)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, view)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleWeekplan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := currentUserID(r)
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		view, err := s.weekplans.Get(ctx, userID, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	case http.MethodPut:
		var body app.SavePlanInput
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		body.ID = id
		view, _, err := s.weekplans.Save(ctx, userID, body)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	case http.MethodDelete:
		if err := s.weekplans.Delete(ctx, userID, id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
