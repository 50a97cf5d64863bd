package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
)

const defaultMaxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// parseBool returns nil for an empty or unparsable value.
func parseBool(s string) *bool {
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}

// readBodyJSON decodes the request body into out. An empty body leaves out
// untouched; malformed JSON is an invalid argument.
func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return err
	}
	if int64(len(body)) > maxBytes {
		return domain.NewValidationError("body", "request body too large")
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.NewValidationError(typeErr.Field, "invalid type")
		}
		return fmt.Errorf("malformed JSON: %v: %w", err, domain.ErrInvalidArgument)
	}
	return nil
}

// attachment sets the download headers; non-ASCII names go in filename*.
func attachment(w http.ResponseWriter, contentType, fileName string) {
	w.Header().Set("Content-Type", contentType)
	disp := mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
	if disp == "" {
		disp = "attachment; filename*=UTF-8''" + url.PathEscape(fileName)
	}
	w.Header().Set("Content-Disposition", disp)
}

func queryTrim(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}
