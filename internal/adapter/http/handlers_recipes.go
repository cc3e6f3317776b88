package adapthttp

import (
	"net/http"

	"weekplanner/internal/domain"
)

func (s *Server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		c, err := criteriaFromQuery(r)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		items, err := s.recipes.Search(ctx, c)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPost:
		userID, _ := currentUserID(r)
		var body domain.Recipe
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := s.recipes.Create(ctx, userID, body)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		recipe, err := s.recipes.Get(ctx, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recipe)

	case http.MethodDelete:
		userID, _ := currentUserID(r)
		if err := s.recipes.Delete(ctx, userID, id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCuisines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	items, err := s.recipes.Cuisines(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func criteriaFromQuery(r *http.Request) (domain.FilterCriteria, error) {
	q := r.URL.Query()
	c := domain.DefaultFilterCriteria()
	c.Query = q.Get("q")
	if v := q.Get("cuisine"); v != "" {
		c.Cuisine = v
	}
	if v := q.Get("difficulty"); v != "" {
		c.Difficulty = v
	}
	c.Vegetarian = domain.ParseVegetarianMode(q.Get("vegetarian"))
	maxPrep, err := intQuery(r, "maxPrep")
	if err != nil {
		return c, err
	}
	c.MaxPrepTime = maxPrep
	return c, nil
}
