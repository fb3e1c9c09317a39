package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/mosc/eventadmin/internal/app/models"
	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/app/repositories"
	"github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/middleware"
)

type nopWatcher struct{}

func (nopWatcher) Watch(*models.Campaign) {}
func (nopWatcher) Stop(string)            {}

func campaignRouter() *gin.Engine {
	store := repositories.NewMemoryRepositories().Campaigns
	svc := services.NewCampaignService(store, nil, nopWatcher{}, "t1", services.DefaultMessagingConfig(), zerolog.Nop())
	cc := NewCampaignController(svc)

	r := gin.New()
	g := r.Group("/campaigns", func(c *gin.Context) {
		c.Set(middleware.EmailKey, "admin@example.org")
		c.Next()
	})
	g.GET("", cc.ListCampaigns)
	g.POST("", cc.CreateCampaign)
	g.GET("/:id", cc.GetCampaign)
	g.DELETE("/:id", cc.DeleteCampaign)
	g.PUT("/:id/compose", cc.SaveCompose)
	g.PUT("/:id/recipients", cc.SaveRecipients)
	g.POST("/:id/step", cc.GoToStep)
	g.POST("/:id/back", cc.PreviousStep)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) dto.CampaignView {
	t.Helper()
	var resp struct {
		Success bool             `json:"success"`
		Data    dto.CampaignView `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp.Data
}

func TestCampaignWizardFlow(t *testing.T) {
	r := campaignRouter()

	w := doJSON(r, http.MethodPost, "/campaigns", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	draft := decodeView(t, w)
	if draft.Step != string(models.StepCompose) || draft.Status != string(models.CampaignStatusDraft) {
		t.Fatalf("new draft = %+v", draft)
	}
	base := "/campaigns/" + draft.ID

	w = doJSON(r, http.MethodPost, base+"/step", `{"step":"schedule"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("skipping ahead: status = %d, want 409", w.Code)
	}

	w = doJSON(r, http.MethodPut, base+"/compose", `{"messageBody":"Hi {{name}}"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing message type: status = %d, want 400", w.Code)
	}

	w = doJSON(r, http.MethodPut, base+"/compose", `{"messageBody":"Hi {{name}}","messageType":"TRANSACTIONAL"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("compose: %d %s", w.Code, w.Body.String())
	}
	if v := decodeView(t, w); v.Step != string(models.StepRecipients) {
		t.Errorf("step after compose = %s", v.Step)
	}

	w = doJSON(r, http.MethodPut, base+"/recipients", `{"recipients":[{"phone":"12"}]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid phone: status = %d, want 400", w.Code)
	}

	w = doJSON(r, http.MethodPost, base+"/back", "")
	if w.Code != http.StatusOK {
		t.Fatalf("back: %d %s", w.Code, w.Body.String())
	}
	if v := decodeView(t, w); v.Step != string(models.StepCompose) {
		t.Errorf("step after back = %s", v.Step)
	}
	if v := decodeView(t, w); v.MessageBody != "Hi {{name}}" {
		t.Errorf("going back must keep saved data, got %q", v.MessageBody)
	}
}

func TestCampaignListAndDelete(t *testing.T) {
	r := campaignRouter()
	id := decodeView(t, doJSON(r, http.MethodPost, "/campaigns", "")).ID
	doJSON(r, http.MethodPost, "/campaigns", "")

	w := doJSON(r, http.MethodGet, "/campaigns?status=draft,sending", "")
	if w.Code != http.StatusOK || w.Header().Get("X-Total-Count") != "2" {
		t.Fatalf("list: %d total %q", w.Code, w.Header().Get("X-Total-Count"))
	}
	w = doJSON(r, http.MethodGet, "/campaigns?status=COMPLETED", "")
	if w.Header().Get("X-Total-Count") != "0" {
		t.Errorf("filtered total = %q, want 0", w.Header().Get("X-Total-Count"))
	}

	if w = doJSON(r, http.MethodDelete, "/campaigns/"+id, ""); w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	if w = doJSON(r, http.MethodGet, "/campaigns/"+id, ""); w.Code != http.StatusNotFound {
		t.Errorf("get deleted: status = %d, want 404", w.Code)
	}
}
