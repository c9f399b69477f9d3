package httputil

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
)

const maxBodyBytes = 1 << 20

// ReadFields decodes a JSON object or urlencoded form body into fields. Form
// values are strings; JSON values keep their decoded type. Any other content
// type, or a body that does not parse, yields no fields.
func ReadFields(r *http.Request) map[string]any {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var fields map[string]any
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&fields); err != nil {
			return map[string]any{}
		}
		if fields == nil {
			return map[string]any{}
		}
		return fields
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return map[string]any{}
		}
		fields := make(map[string]any, len(r.PostForm))
		for k := range r.PostForm {
			fields[k] = r.PostForm.Get(k)
		}
		return fields
	default:
		return map[string]any{}
	}
}

// StringField returns fields[name] when it is a non-empty string.
func StringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}
