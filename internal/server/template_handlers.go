package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gregcorwin/Email/internal/db/models"
	"github.com/gregcorwin/Email/internal/repository"
)

// mountTemplateRoutes registers the template CRUD surface. This is the app's
// out-of-scope "CRUD glue": thin handlers over the repositories, with
// row-level protection living in the database policies themselves.
func mountTemplateRoutes(r chi.Router, templates repository.TemplateRepository, variables repository.TemplateVariableRepository) {
	r.Route("/api/templates", func(r chi.Router) {
		r.Get("/", handleListTemplates(templates))
		r.Post("/", handleCreateTemplate(templates))
		r.Get("/{id}", handleGetTemplate(templates))
		r.Put("/{id}", handleUpdateTemplate(templates))
		r.Delete("/{id}", handleDeleteTemplate(templates))
		if variables != nil {
			r.Get("/{id}/variables", handleListTemplateVariables(variables))
		}
	})
}

func handleListTemplates(templates repository.TemplateRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := templates.List(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to list templates", err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleCreateTemplate(templates repository.TemplateRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tmpl models.Template
		if err := json.NewDecoder(r.Body).Decode(&tmpl); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid json", err)
			return
		}
		if tmpl.Name == "" {
			writeJSONError(w, http.StatusBadRequest, "name is required", nil)
			return
		}

		if err := templates.Create(r.Context(), &tmpl); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to create template", err)
			return
		}
		writeJSON(w, http.StatusCreated, tmpl)
	}
}

func handleGetTemplate(templates repository.TemplateRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		tmpl, err := templates.GetByID(r.Context(), id)
		if err != nil {
			if isNotFound(err) {
				writeJSONError(w, http.StatusNotFound, "template not found", nil)
				return
			}
			writeJSONError(w, http.StatusInternalServerError, "failed to get template", err)
			return
		}
		writeJSON(w, http.StatusOK, tmpl)
	}
}

func handleUpdateTemplate(templates repository.TemplateRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tmpl models.Template
		if err := json.NewDecoder(r.Body).Decode(&tmpl); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid json", err)
			return
		}
		tmpl.ID = chi.URLParam(r, "id")

		if err := templates.Update(r.Context(), &tmpl); err != nil {
			if isNotFound(err) {
				writeJSONError(w, http.StatusNotFound, "template not found", nil)
				return
			}
			writeJSONError(w, http.StatusInternalServerError, "failed to update template", err)
			return
		}
		writeJSON(w, http.StatusOK, tmpl)
	}
}

func handleDeleteTemplate(templates repository.TemplateRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := templates.Delete(r.Context(), id); err != nil {
			if isNotFound(err) {
				writeJSONError(w, http.StatusNotFound, "template not found", nil)
				return
			}
			writeJSONError(w, http.StatusInternalServerError, "failed to delete template", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListTemplateVariables(variables repository.TemplateVariableRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		list, err := variables.ListByTemplateID(r.Context(), id)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to list template variables", err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Printf("http %d: %s: %v", status, message, err)
	}
	writeJSON(w, status, map[string]string{"error": message})
}
