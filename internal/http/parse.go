package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"laplata/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

var errEmptyBody = errors.New("empty request body")

// decodeJSON reads a size-capped JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

// monthParam returns the requested YYYY-MM month, defaulting to the
// current one. The second return is false when the value is malformed.
func monthParam(r *http.Request) (string, bool) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		return time.Now().Format("2006-01"), true
	}
	if !core.IsYearMonth(month) {
		return "", false
	}
	return month, true
}

// periodParams returns the inclusive start/end date bounds for product
// queries, defaulting to an unbounded range.
func periodParams(r *http.Request) (start, end string, ok bool) {
	start = strings.TrimSpace(r.URL.Query().Get("start"))
	end = strings.TrimSpace(r.URL.Query().Get("end"))

	if start == "" {
		start = "0000-01-01"
	} else if !core.IsISODate(start) {
		return "", "", false
	}
	if end == "" {
		end = "9999-12-31"
	} else if !core.IsISODate(end) {
		return "", "", false
	}
	return start, end, true
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
