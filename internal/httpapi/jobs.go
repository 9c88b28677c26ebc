package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spigell/skillbridge-assistant/internal/jobs"
	"github.com/spigell/skillbridge-assistant/internal/storage"
)

const maxJobBodySize = 64 << 10

func handleListJobs(svc JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list jobs: %v", err)
			return
		}
		if list == nil {
			list = []jobs.Record{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleGetJob(svc JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := jobID(w, r)
		if !ok {
			return
		}
		rec, err := svc.Get(r.Context(), id)
		if err != nil {
			writeJobError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleCreateJob(svc JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := decodeJob(w, r)
		if !ok {
			return
		}
		created, err := svc.Create(r.Context(), rec)
		if err != nil {
			writeJobError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func handleUpdateJob(svc JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := jobID(w, r)
		if !ok {
			return
		}
		rec, ok := decodeJob(w, r)
		if !ok {
			return
		}
		updated, err := svc.Update(r.Context(), id, rec)
		if err != nil {
			writeJobError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func handleDeleteJob(svc JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := jobID(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeJobError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func jobID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid job id %q", chi.URLParam(r, "id"))
		return 0, false
	}
	return id, true
}

func decodeJob(w http.ResponseWriter, r *http.Request) (jobs.Record, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJobBodySize)
	defer r.Body.Close()

	var rec jobs.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return jobs.Record{}, false
	}
	return rec, true
}

func writeJobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jobs.ErrInvalidRecord):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	case errors.Is(err, storage.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found_error", "job not found")
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
	}
}
