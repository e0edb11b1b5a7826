// Package api exposes the conversation client over HTTP for a browser
// front end, and over MCP for local assistants.
//
// The handlers own no state of their own: every operation delegates to a
// session's conversation log, its staging area, or its match history, so
// the invariants live in one place.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Joszi2006/pillinfo/internal/conversation"
	"github.com/Joszi2006/pillinfo/internal/imaging"
	"github.com/Joszi2006/pillinfo/internal/staging"
)

// maxUploadSize bounds one multipart upload request. Individual files are
// still validated against the per-image ceiling.
const maxUploadSize = 64 << 20

// Deps holds what the HTTP surface needs.
type Deps struct {
	Sessions *conversation.Manager
}

// NewHandler returns the client REST API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", handleCreateSession(deps))
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", handleDeleteSession(deps))
			r.Get("/messages", handleGetMessages(deps))
			r.Post("/messages", handleSubmitText(deps))
			r.Post("/images", handleStageImages(deps))
			r.Delete("/images/{index}", handleRemoveImage(deps))
			r.Post("/send", handleSubmitImages(deps))
			r.Get("/history", handleGetHistory(deps))
			r.Get("/previews/{token}", handleGetPreview(deps))
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleCreateSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, log := deps.Sessions.Create()
		slog.Info("session created", "session", id)
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":       id,
			"messages": log.Messages(),
		})
	}
}

func handleDeleteSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		deps.Sessions.Delete(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetMessages(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, ok := session(deps, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": log.Messages()})
	}
}

func handleSubmitText(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, ok := session(deps, w, r)
		if !ok {
			return
		}

		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request", "invalid request body: %v", err)
			return
		}
		if req.Text == "" {
			httpError(w, http.StatusBadRequest, "invalid_request", "text is required")
			return
		}

		id, res := log.SubmitText(r.Context(), req.Text)
		writeJSON(w, http.StatusOK, map[string]any{
			"message_id": id,
			"result":     res,
		})
	}
}

func handleStageImages(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, ok := session(deps, w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request", "invalid multipart body: %v", err)
			return
		}

		var files []imaging.CandidateFile
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request", "reading upload %q: %v", fh.Filename, err)
				return
			}
			data := make([]byte, fh.Size)
			if _, err := io.ReadFull(f, data); err != nil {
				f.Close()
				httpError(w, http.StatusBadRequest, "invalid_request", "reading upload %q: %v", fh.Filename, err)
				return
			}
			f.Close()
			files = append(files, imaging.CandidateFile{
				Name:      fh.Filename,
				MediaType: fh.Header.Get("Content-Type"),
				Data:      data,
			})
		}

		added, err := log.Staging().Add(files)
		switch {
		case err == staging.ErrNoValidImages:
			httpError(w, http.StatusUnprocessableEntity, "no_valid_images", "no valid images selected (jpeg, png, or webp up to 10 MiB)")
			return
		case err == staging.ErrTooManyImages:
			httpError(w, http.StatusUnprocessableEntity, "too_many_images", "at most %d images may be staged", staging.MaxImages)
			return
		case err != nil:
			httpError(w, http.StatusInternalServerError, "staging_error", "%v", err)
			return
		}

		writeJSON(w, http.StatusOK, stagedState(log, map[string]any{"added": added}))
	}
}

func handleRemoveImage(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, ok := session(deps, w, r)
		if !ok {
			return
		}

		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request", "invalid index")
			return
		}
		if err := log.Staging().RemoveAt(index); err != nil {
			httpError(w, http.StatusNotFound, "not_found", "no staged image at index %d", index)
			return
		}
		writeJSON(w, http.StatusOK, stagedState(log, nil))
	}
}

func handleSubmitImages(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, ok := session(deps, w, r)
		if !ok {
			return
		}

		var req struct {
			AdditionalText string `json:"additional_text"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request", "invalid request body: %v", err)
				return
			}
		}

		id, res, err := log.SubmitImages(r.Context(), req.AdditionalText)
		if err == conversation.ErrNoStagedImages {
			httpError(w, http.StatusUnprocessableEntity, "no_staged_images", "stage at least one image before sending")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "send_error", "%v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message_id": id,
			"result":     res,
		})
	}
}

func handleGetHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, ok := session(deps, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"recent": log.History().Recent()})
	}
}

func handleGetPreview(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, ok := session(deps, w, r)
		if !ok {
			return
		}

		data, found := log.Staging().Preview(chi.URLParam(r, "token"))
		if !found {
			// Revoked and unknown tokens look the same to callers.
			httpError(w, http.StatusNotFound, "not_found", "no such preview")
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(data)
	}
}

// session resolves the session from the URL, writing a 404 on miss.
func session(deps Deps, w http.ResponseWriter, r *http.Request) (*conversation.Log, bool) {
	id := chi.URLParam(r, "id")
	log, ok := deps.Sessions.Get(id)
	if !ok {
		httpError(w, http.StatusNotFound, "not_found", "no such session")
		return nil, false
	}
	return log, true
}

// stagedState reports the staged sequence and its preview tokens,
// parallel and in insertion order.
func stagedState(log *conversation.Log, extra map[string]any) map[string]any {
	files := log.Staging().Files()
	previews := log.Staging().Previews()

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	tokens := make([]string, len(previews))
	for i, h := range previews {
		tokens[i] = h.Token()
	}

	out := map[string]any{
		"staged":   names,
		"previews": tokens,
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
