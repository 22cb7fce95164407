package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParseDefaults(t *testing.T) {
	p := paramsFor(t, "")
	require.Equal(t, DefaultPage, p.Page)
	require.Equal(t, DefaultLimit, p.Limit)
	require.Equal(t, 0, p.Offset)
}

func TestParseClampsLimit(t *testing.T) {
	p := paramsFor(t, "page=3&limit=1000")
	require.Equal(t, 3, p.Page)
	require.Equal(t, MaxLimit, p.Limit)
	require.Equal(t, 2*MaxLimit, p.Offset)
}

func TestParseRejectsGarbage(t *testing.T) {
	p := paramsFor(t, "page=-1&limit=abc")
	require.Equal(t, DefaultPage, p.Page)
	require.Equal(t, DefaultLimit, p.Limit)
}
