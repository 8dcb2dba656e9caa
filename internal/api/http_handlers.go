package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"venuebook/internal/export"
	"venuebook/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(s.deps.Checks))
	ready := true
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			ready = false
			continue
		}
		results[name] = "ok"
	}

	code := http.StatusOK
	state := "ready"
	if !ready {
		code = http.StatusServiceUnavailable
		state = "not_ready"
	}
	writeJSON(w, code, map[string]any{"status": state, "checks": results})
}

func (s *HTTPServer) handleListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := s.deps.Venues.ListVenues(r.Context(), strings.TrimSpace(r.URL.Query().Get("type")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if venues == nil {
		venues = []*models.Venue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"venues": venues})
}

func (s *HTTPServer) handleGetVenue(w http.ResponseWriter, r *http.Request) {
	venue, err := s.deps.Venues.GetVenue(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, venue)
}

func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	monthStr := strings.TrimSpace(r.URL.Query().Get("month"))
	if monthStr == "" {
		monthStr = time.Now().UTC().Format("2006-01")
	}
	month, err := time.Parse("2006-01", monthStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month format; expected YYYY-MM")
		return
	}

	cal, err := s.deps.Venues.MonthCalendar(r.Context(), r.PathValue("id"), month.Year(), month.Month())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

// decodeBooking reads a BookingDetails-shaped body.
func decodeBooking(w http.ResponseWriter, r *http.Request) (models.BookingDetails, models.BookingRequest, error) {
	var body models.BookingDetails
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := decoder.Decode(&body); err != nil {
		return body, models.BookingRequest{}, err
	}
	req, err := body.Request()
	return body, req, err
}

func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	_, req, err := decodeBooking(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking body: "+err.Error())
		return
	}

	q, err := s.deps.Bookings.Quote(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *HTTPServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, req, err := decodeBooking(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking body: "+err.Error())
		return
	}

	details, err := s.deps.Bookings.Submit(r.Context(), r.PathValue("id"), body.UserID, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, details)
}

func (s *HTTPServer) handleContact(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID  int64  `json:"user_id"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	venue, err := s.deps.Bookings.ContactHost(r.Context(), r.PathValue("id"), body.UserID, strings.TrimSpace(body.Message))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":   "requested",
		"venue_id": venue.ID,
		"host_id":  venue.HostID,
	})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseOptionalDate(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
		return
	}
	to, err := parseOptionalDate(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		writeError(w, http.StatusBadRequest, "to is before from")
		return
	}

	ctx := r.Context()
	bookings, err := s.deps.Bookings.ListBookings(ctx, strings.TrimSpace(q.Get("venue_id")), from, to)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	names := map[string]string{}
	if venues, err := s.deps.Venues.ListVenues(ctx, ""); err == nil {
		for _, v := range venues {
			names[v.ID] = v.Name
		}
	}

	data, err := export.Workbook(bookings, names, from, to)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	name := export.FileName(from, to)
	if s.deps.ExportsPath != "" {
		if path, err := export.Save(s.deps.ExportsPath, name, data); err != nil {
			s.logger.Warn().Err(err).Msg("failed to keep export copy")
		} else {
			s.logger.Info().Str("file_path", path).Int("rows", len(bookings)).Msg("export created")
		}
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseOptionalDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return models.ParseDate(s)
}
