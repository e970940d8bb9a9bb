package httpgin

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// writeJSONWithCache writes a JSON response with a content ETag and
// Cache-Control. A matching If-None-Match gets 304.
func writeJSONWithCache(
	c *gin.Context,
	status int,
	v any,
	cacheControl string,
) {
	b, err := json.Marshal(v)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	sum := sha256.Sum256(b)
	tag := `W/"` + hex.EncodeToString(sum[:16]) + `"`

	c.Header("ETag", tag)
	if cacheControl != "" {
		c.Header("Cache-Control", cacheControl)
	}
	if c.GetHeader("If-None-Match") == tag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(status, "application/json; charset=utf-8", b)
}

// versionETag is the strong ETag of a booking version.
func versionETag(version int64) string {
	return `"v` + strconv.FormatInt(version, 10) + `"`
}

// parseIfMatch reads a version from If-Match. An absent header or "*"
// yields 0, meaning no precondition.
func parseIfMatch(h string) (int64, bool) {
	h = strings.TrimSpace(h)
	if h == "" || h == "*" {
		return 0, true
	}
	h = strings.TrimPrefix(h, "W/")
	h = strings.Trim(h, `"`)
	h = strings.TrimPrefix(h, "v")

	v, err := strconv.ParseInt(h, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
