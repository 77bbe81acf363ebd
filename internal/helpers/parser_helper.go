package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// QueryInt reads an integer query parameter, falling back to def when absent.
func QueryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return StringToInt(raw)
}
