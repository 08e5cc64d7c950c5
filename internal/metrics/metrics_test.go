package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler(t *testing.T) {
	Rooms.Set(2)
	Rounds.WithLabelValues("show").Inc()
	RejectedActions.WithLabelValues("bet").Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(w.Body)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, string(body), "teenpatti_rooms 2")
	assert.Contains(t, string(body), `teenpatti_rounds_total{reason="show"} 1`)
	assert.Contains(t, string(body), `teenpatti_rejected_actions_total{action="bet"} 1`)
}
