package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whitelistStatus(entries []string, ip string) int {
	r := gin.New()
	r.Use(IPWhitelist(entries))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Real-IP", ip)
	return serve(r, req).Code
}

func TestIPWhitelist(t *testing.T) {
	cases := []struct {
		name    string
		entries []string
		ip      string
		want    int
	}{
		{"empty allows all", nil, "1.2.3.4", http.StatusOK},
		{"exact match", []string{"192.168.1.1"}, "192.168.1.1", http.StatusOK},
		{"blocked", []string{"10.0.0.1"}, "1.2.3.4", http.StatusForbidden},
		{"second entry", []string{"10.0.0.1", "10.0.0.2"}, "10.0.0.2", http.StatusOK},
		{"cidr", []string{"10.0.0.0/8"}, "10.20.30.40", http.StatusOK},
		{"outside cidr", []string{"10.0.0.0/8"}, "11.0.0.1", http.StatusForbidden},
		{"ipv6", []string{"::1"}, "::1", http.StatusOK},
		{"only garbage", []string{"not-an-ip"}, "1.2.3.4", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, whitelistStatus(tc.entries, tc.ip))
		})
	}
}
