package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"autopost/internal/models"
	"autopost/internal/service"
)

func TestGetConfig(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	settings := &mockSettings{cfg: models.ScheduleConfig{
		ID:            1,
		FixedTimes:    []string{"09:00", "18:00"},
		ActiveDays:    []int{1, 3},
		JitterMinutes: 15,
		PostToX:       true,
	}}
	s := &service.Service{Authorization: auth, Settings: settings}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/config/", nil, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var cfg models.ScheduleConfig
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.ID != 1 || len(cfg.FixedTimes) != 2 || !cfg.PostToX {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestUpdateConfig_PassesPayload(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	settings := &mockSettings{}
	s := &service.Service{Authorization: auth, Settings: settings}
	r := newTestRouter(s)

	body := `{"fixed_times":["08:30"],"active_days":[2,4],"jitter_minutes":5,"post_to_threads":true,"type_ratios":{"a":1,"b":1,"c":1},"persona":"a cat"}`
	w := doRequest(r, http.MethodPut, "/api/v1/config/", &body, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	got := settings.lastUpdate
	if len(got.FixedTimes) != 1 || got.FixedTimes[0] != "08:30" {
		t.Fatalf("times = %v", got.FixedTimes)
	}
	if !got.PostToThreads || got.JitterMinutes != 5 || got.Persona != "a cat" {
		t.Fatalf("payload not passed through: %+v", got)
	}
}

func TestUpdateConfig_ValidationErrorIs400(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	settings := &mockSettings{updateErr: service.ErrInvalidSlotTime}
	s := &service.Service{Authorization: auth, Settings: settings}
	r := newTestRouter(s)

	body := `{"fixed_times":["9am"]}`
	w := doRequest(r, http.MethodPut, "/api/v1/config/", &body, "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400, body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateConfig_StorageErrorIs500(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	settings := &mockSettings{updateErr: errBoom}
	s := &service.Service{Authorization: auth, Settings: settings}
	r := newTestRouter(s)

	body := `{"fixed_times":["09:00"]}`
	w := doRequest(r, http.MethodPut, "/api/v1/config/", &body, "valid")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", w.Code)
	}
}
