package security

import (
	"mime"
	"net/http"

	"github.com/noah-isme/backend-logistik/internal/common"
)

// BodyLimit caps request payloads and, when RequireJSON is set, rejects
// POST, PUT and PATCH bodies that are not application/json.
type BodyLimit struct {
	Max         int64
	RequireJSON bool
}

// Middleware rejects declared oversize payloads with 413 and caps streamed
// bodies with http.MaxBytesReader; common.DecodeJSON maps that read error to 413.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}
		if b.RequireJSON && hasBodyMethod(r.Method) && r.ContentLength != 0 {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				common.JSONError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "request body must be application/json", nil)
				return
			}
		}
		if b.Max > 0 {
			if r.ContentLength > b.Max {
				common.JSONError(w, http.StatusRequestEntityTooLarge, common.CodePayloadTooLarge, "request body too large", nil)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, b.Max)
		}
		next.ServeHTTP(w, r)
	})
}

func hasBodyMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
