package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"orderplanner/src/model"
	"orderplanner/src/repository"
)

type eventSearcher interface {
	Search(ctx context.Context, options repository.EventSearchOptions) ([]model.DecisionEvent, error)
}

type eventFinder interface {
	FindByID(ctx context.Context, id uint) (*model.DecisionEvent, error)
}

// SearchEventsHandler lists journal events, newest first. Supports symbol and
// stage filters plus pagination.
func SearchEventsHandler(repo eventSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options := repository.EventSearchOptions{
			Symbol: r.URL.Query().Get("symbol"),
			Stage:  r.URL.Query().Get("stage"),
		}

		page := 1
		if pageParam := r.URL.Query().Get("page"); pageParam != "" {
			parsedPage, err := strconv.Atoi(pageParam)
			if err != nil || parsedPage <= 0 {
				http.Error(w, "invalid page", http.StatusBadRequest)
				return
			}
			page = parsedPage
		}

		pageSize := 50
		if sizeParam := r.URL.Query().Get("pageSize"); sizeParam != "" {
			parsedSize, err := strconv.Atoi(sizeParam)
			if err != nil || parsedSize <= 0 {
				http.Error(w, "invalid pageSize", http.StatusBadRequest)
				return
			}
			pageSize = parsedSize
		}

		options.Limit = pageSize
		options.Offset = (page - 1) * pageSize

		events, err := repo.Search(r.Context(), options)
		if err != nil {
			logger.WithError(err).Error("failed to search decision events")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(events); err != nil {
			logger.WithError(err).Error("failed to encode events response")
		}
	}
}

// GetEventHandler returns one journal event by ID.
func GetEventHandler(repo eventFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := chi.URLParam(r, "id")
		id, err := strconv.ParseUint(idParam, 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		event, err := repo.FindByID(r.Context(), uint(id))
		if err != nil {
			logger.WithError(err).Error("failed to fetch decision event")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if event == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(event); err != nil {
			logger.WithError(err).Error("failed to encode event response")
		}
	}
}
