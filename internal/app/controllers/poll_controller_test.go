package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/services"
)

// stubPolls implements only what the tests call; anything else panics.
type stubPolls struct {
	services.PollService

	gotFilters url.Values
	activeID   int64
	active     bool
}

func (s *stubPolls) ListPolls(_ context.Context, filters url.Values) (dto.ListResult[dto.EventPollDTO], error) {
	s.gotFilters = filters
	return dto.ListResult[dto.EventPollDTO]{Data: []dto.EventPollDTO{{Title: "Best dish"}}, TotalCount: 11}, nil
}

func (s *stubPolls) SetPollActive(_ context.Context, id int64, active bool) (*dto.EventPollDTO, error) {
	s.activeID, s.active = id, active
	return &dto.EventPollDTO{ID: &id, IsActive: &active}, nil
}

func pollRouter(polls services.PollService) *gin.Engine {
	pc := NewPollController(polls, nil)
	r := gin.New()
	r.GET("/polls", pc.ListPolls)
	r.POST("/polls/:id/activate", pc.ActivatePoll)
	r.POST("/polls/:id/deactivate", pc.DeactivatePoll)
	r.GET("/poll-scheduler/status", pc.SchedulerStatus)
	r.POST("/poll-scheduler/run", pc.RunScheduler)
	return r
}

func TestListPollsForwardsPagingAndDefaultSort(t *testing.T) {
	polls := &stubPolls{}
	w := httptest.NewRecorder()
	pollRouter(polls).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/polls?page=1&size=5&eventId.equals=3", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %s", w.Code, w.Body.String())
	}
	if polls.gotFilters.Get("sort") != "createdAt,desc" || polls.gotFilters.Get("page") != "1" || polls.gotFilters.Get("size") != "5" {
		t.Errorf("filters = %v", polls.gotFilters)
	}
	if polls.gotFilters.Get("eventId.equals") != "3" {
		t.Error("caller filters must be kept")
	}
	if w.Header().Get("X-Total-Count") != "11" {
		t.Errorf("X-Total-Count = %q", w.Header().Get("X-Total-Count"))
	}
}

func TestActivateWithoutSchedulerUpdatesPoll(t *testing.T) {
	polls := &stubPolls{}
	r := pollRouter(polls)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/polls/7/activate", nil))
	if w.Code != http.StatusOK || polls.activeID != 7 || !polls.active {
		t.Errorf("activate: %d id=%d active=%v", w.Code, polls.activeID, polls.active)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/polls/7/deactivate", nil))
	if polls.active {
		t.Error("deactivate left the poll active")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/polls/abc/activate", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", w.Code)
	}
}

func TestSchedulerEndpointsUnavailableWhenDisabled(t *testing.T) {
	r := pollRouter(&stubPolls{})
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/poll-scheduler/status"},
		{http.MethodPost, "/poll-scheduler/run"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: status = %d, want 503", tc.method, tc.path, w.Code)
		}
	}
}
