package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, 20},
		{"explicit", "page=3&limit=50", 3, 50},
		{"limit capped", "limit=500", 1, 100},
		{"negative page", "page=-1", 1, 20},
		{"zero limit", "limit=0", 1, 20},
		{"garbage", "page=abc&limit=xyz", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)

			params := ParsePaginationParams(c, 20, 100)
			if params.Page != tt.wantPage || params.Limit != tt.wantLimit {
				t.Errorf("got page=%d limit=%d, want page=%d limit=%d",
					params.Page, params.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestCalculateTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 20, 1},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 20, 5},
	}
	for _, tt := range tests {
		if got := CalculateTotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("CalculateTotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestCalculateOffset(t *testing.T) {
	if got := CalculateOffset(1, 20); got != 0 {
		t.Errorf("first page offset = %d, want 0", got)
	}
	if got := CalculateOffset(3, 20); got != 40 {
		t.Errorf("third page offset = %d, want 40", got)
	}
}
