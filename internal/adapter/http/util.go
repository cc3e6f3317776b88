package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"strconv"

	"weekplanner/internal/app"
	"weekplanner/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeServiceError maps application errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var missing *domain.MissingRecipesError
	switch {
	case domain.IsValidation(err), errors.Is(err, domain.ErrInvalidSlot):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, domain.ErrNotFound)
	case errors.Is(err, app.ErrSaveInProgress):
		writeError(w, http.StatusConflict, app.ErrSaveInProgress)
	case errors.As(err, &missing):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "missingRecipes": missing.RecipeIDs})
	case errors.Is(err, app.ErrNotEditing), errors.Is(err, app.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, app.ErrSaveFailed):
		// The cause has already been logged by the editor.
		writeError(w, http.StatusBadGateway, errors.New("could not save weekplan, please retry"))
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// intQuery returns the non-negative integer query value, nil when the key is
// absent.
func intQuery(r *http.Request, key string) (*int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil, domain.Invalid(key, "must be a non-negative integer")
	}
	return &n, nil
}

func currentUserID(r *http.Request) (string, bool) {
	return domain.UserIDFromContext(r.Context())
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func spaFromDisk(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := path.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := path.Clean(r.URL.Path)
		if reqPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		staticPath := path.Join(dir, reqPath)
		if _, err := os.Stat(staticPath); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, indexPath)
	})
}
