package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Joszi2006/pillinfo/internal/lookup"
)

const maxUploadSize = 64 << 20

// NewHandler builds the HTTP surface of the stand-in lookup service. The
// routes and payloads mirror the real backend so the client's gateway
// works against either.
func NewHandler(store *Store) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/lookup/text", handleLookupText(store))
		r.Post("/lookup/image", handleLookupImage(store))
	})

	return r
}

func handleLookupText(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text           string `json:"text"`
			UseNER         bool   `json:"use_ner"`
			LookupAllDrugs bool   `json:"lookup_all_drugs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		res, err := evaluate(store, req.Text)
		if err != nil {
			slog.Error("text lookup failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		slog.Info("text lookup", "match_type", res.MatchType, "brand", res.BrandName)
		writeJSON(w, http.StatusOK, res)
	}
}

// handleLookupImage accepts the multipart image upload. The stand-in has
// no OCR, so drug recognition runs over the additional_text field; the
// image parts are only checked for presence.
func handleLookupImage(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			http.Error(w, "invalid multipart body", http.StatusBadRequest)
			return
		}

		if len(r.MultipartForm.File["files"]) == 0 {
			writeJSON(w, http.StatusOK, lookup.Result{
				Success:   false,
				Error:     "No image uploaded.",
				MatchType: lookup.MatchNone,
			})
			return
		}

		additional := r.FormValue("additional_text")
		res, err := evaluate(store, additional)
		if err != nil {
			slog.Error("image lookup failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !res.Success && res.MatchType == lookup.MatchNone && res.Error == "No drug name detected." {
			res.Error = "No drug name detected in image."
		}

		if res.ExactMatch() {
			res.DosageInfo = dosageForRequest(store, res, r.FormValue("patient_weight_kg"), r.FormValue("patient_age"), additional)
		}

		slog.Info("image lookup", "files", len(r.MultipartForm.File["files"]), "match_type", res.MatchType)
		writeJSON(w, http.StatusOK, res)
	}
}

// dosageForRequest resolves patient attributes from explicit form fields,
// falling back to parsing the free text, and computes the pediatric dose
// for the matched product.
func dosageForRequest(store *Store, res lookup.Result, weightField, ageField, additional string) *lookup.DosageInfo {
	params := parsePatientParams(additional)
	if weightField != "" {
		if v, err := strconv.ParseFloat(weightField, 64); err == nil {
			params.WeightKg = v
		}
	}
	if ageField != "" {
		if v, err := strconv.Atoi(ageField); err == nil {
			params.AgeYears = &v
		}
	}

	products, err := store.ProductsFor(res.BrandName)
	if err != nil || res.BestMatch == nil {
		return nil
	}
	for _, p := range products {
		if p.Name == res.BestMatch.Name {
			return calculateDosage(p.AdultDoseMg, params)
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
