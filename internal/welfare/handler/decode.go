package handler

import (
	"net/http"

	"github.com/mesias/mswdo-backend/pkg/httputil"
)

// decodeOptional accepts an empty body for endpoints whose fields are all
// optional, such as approve or claim.
func decodeOptional(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return httputil.Validate(v)
	}
	return httputil.DecodeAndValidate(r, v)
}
