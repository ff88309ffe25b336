package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// responseBuffer holds the status and body a handler writes so they can be
// checked, and possibly replaced, before reaching the client. Headers go
// straight to the wrapped writer's header map.
type responseBuffer struct {
	gin.ResponseWriter
	body   bytes.Buffer
	status int
	wrote  bool
}

func newResponseBuffer(w gin.ResponseWriter) *responseBuffer {
	return &responseBuffer{ResponseWriter: w, status: http.StatusOK}
}

func (b *responseBuffer) WriteHeader(code int) {
	if b.wrote {
		return
	}
	b.status = code
	b.wrote = true
}

func (b *responseBuffer) WriteHeaderNow() { b.wrote = true }

func (b *responseBuffer) Write(data []byte) (int, error) {
	b.wrote = true
	return b.body.Write(data)
}

func (b *responseBuffer) WriteString(s string) (int, error) { return b.Write([]byte(s)) }

func (b *responseBuffer) Status() int   { return b.status }
func (b *responseBuffer) Size() int     { return b.body.Len() }
func (b *responseBuffer) Written() bool { return b.wrote }

func (b *responseBuffer) replaceJSON(status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(`{"code":"` + CodeOpenAPIResponse + `"}`)
	}
	b.status = status
	b.wrote = true
	b.body.Reset()
	b.body.Write(data)
	b.Header().Set("Content-Type", "application/json; charset=utf-8")
}

// flush sends the buffered status and body to the wrapped writer.
func (b *responseBuffer) flush() error {
	b.ResponseWriter.WriteHeader(b.status)
	if b.body.Len() == 0 {
		b.ResponseWriter.WriteHeaderNow()
		return nil
	}
	_, err := b.ResponseWriter.Write(b.body.Bytes())
	return err
}
