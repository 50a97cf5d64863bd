package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Base is embedded by every handler: logging plus body decoding.
type Base struct {
	logger  *zap.Logger
	maxBody int64
}

// NewBase maxBody caps JSON request bodies; <= 0 uses 1 MiB.
func NewBase(logger *zap.Logger, maxBody int64) Base {
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return Base{logger: logger, maxBody: maxBody}
}

// decode reads the JSON body into out and writes the error response itself.
func (b Base) decode(w http.ResponseWriter, r *http.Request, op string, out any) bool {
	if err := readBodyJSON(r, b.maxBody, out); err != nil {
		b.fail(w, r, op, err)
		return false
	}
	return true
}

func (b Base) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	writeError(w, r, b.logger, op, err)
}

func (b Base) ok(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, Ok(v))
}

func (b Base) created(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusCreated, Ok(v))
}

func (b Base) noContent(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

type pageParams struct {
	page int
	size int
}

func readPage(r *http.Request) pageParams {
	q := r.URL.Query()
	return pageParams{page: parseInt(q.Get("page"), 1), size: parseInt(q.Get("size"), 0)}
}
