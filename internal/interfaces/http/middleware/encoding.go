package middleware

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// EnsureUTF8Body re-encodes JSON request bodies that are not valid UTF-8.
// Clients on legacy Windows consoles send Latin-1 (code page 1252) text.
// Multipart uploads are left untouched so document bytes hash unchanged.
func EnsureUTF8Body() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.ContentLength == 0 || c.ContentType() != gin.MIMEJSON {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}
		c.Request.Body.Close()

		if len(bodyBytes) == 0 || utf8.Valid(bodyBytes) {
			c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			c.Next()
			return
		}

		converted, err := decodeWindows1252(bodyBytes)
		if err != nil || !utf8.Valid(converted) {
			c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			c.Next()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(converted))
		c.Request.ContentLength = int64(len(converted))
		c.Next()
	}
}

func decodeWindows1252(raw []byte) ([]byte, error) {
	reader := transform.NewReader(bytes.NewReader(raw), charmap.Windows1252.NewDecoder())
	return io.ReadAll(reader)
}
