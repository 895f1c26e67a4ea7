package helpers

import (
	"net/http"
	"strconv"
	"time"

	"eventregistry/internal/domain"
)

// filterDateLayout is the accepted format for the date query parameter.
const filterDateLayout = "2006-01-02"

// ParseEventFilter reads category and date query parameters into an
// EventFilter. An unknown category or malformed date returns false after
// writing a 400 response.
func ParseEventFilter(w http.ResponseWriter, r *http.Request) (domain.EventFilter, bool) {
	var filter domain.EventFilter
	if s := r.URL.Query().Get("category"); s != "" {
		category := domain.EventCategory(s)
		if !category.Valid() {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "unknown category")
			return filter, false
		}
		filter.Category = &category
	}
	if s := r.URL.Query().Get("date"); s != "" {
		date, err := time.Parse(filterDateLayout, s)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
			return filter, false
		}
		filter.Date = &date
	}
	return filter, true
}

// ParseID parses a path value as a positive int64 identifier. On failure it
// writes a 400 response and returns false.
func ParseID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	s := r.PathValue(name)
	if s == "" {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "missing "+name)
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
