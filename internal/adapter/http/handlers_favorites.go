package adapthttp

import "net/http"

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, _ := currentUserID(r)
	items, err := s.recipes.Favorites(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := currentUserID(r)
	id := r.PathValue("id")

	var err error
	switch r.Method {
	case http.MethodPut:
		err = s.recipes.Favorite(ctx, userID, id)
	case http.MethodDelete:
		err = s.recipes.Unfavorite(ctx, userID, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
