package service

import (
	"encoding/json"
	"testing"
	"time"

	"FunRadar/internal/model"

	"gorm.io/datatypes"
)

func TestNewEventPayloadCounts(t *testing.T) {
	now := time.Now()
	event := &model.Event{
		ID:         7,
		Title:      "Picnic",
		Status:     model.EventCollecting,
		ShareToken: "share-1",
	}
	organizer := &model.User{ID: 1, Name: "Ann"}
	invitations := []model.Invitation{
		{ID: 10, InviteeName: "Ann", Role: model.RoleOrganizer, Status: model.InvitationSubmitted, RespondedAt: &now},
		{ID: 11, InviteeName: "Bob", Role: model.RoleParticipant, Status: model.InvitationSubmitted, RespondedAt: &now},
		{ID: 12, InviteeName: "Cara", Role: model.RoleParticipant, Status: model.InvitationPending},
	}

	p := NewEventPayload(event, organizer, invitations, nil)

	// 组织者不计入参与者进度统计
	if p.ParticipantCount != 2 {
		t.Errorf("participant_count = %d, want 2", p.ParticipantCount)
	}
	if p.SubmittedCount != 1 {
		t.Errorf("submitted_count = %d, want 1", p.SubmittedCount)
	}
	if len(p.Progress) != 3 {
		t.Errorf("progress应包含全部邀请, got %d", len(p.Progress))
	}
	if p.Organizer.Name != "Ann" {
		t.Errorf("organizer = %+v", p.Organizer)
	}
	if p.Matches == nil || len(p.Matches) != 0 {
		t.Errorf("未生成推荐时matches应为空列表, got %v", p.Matches)
	}
	if string(p.FinalMatch) != "{}" {
		t.Errorf("未定案时final_match应为空对象, got %s", p.FinalMatch)
	}
}

func TestNewEventPayloadFinalMatch(t *testing.T) {
	event := &model.Event{
		ID:         8,
		Status:     model.EventCompleted,
		FinalMatch: datatypes.JSON(`{"id":"2","title":"Rooftop Dinner"}`),
	}
	p := NewEventPayload(event, nil, nil, nil)

	var final map[string]interface{}
	if err := json.Unmarshal(p.FinalMatch, &final); err != nil {
		t.Fatalf("final_match应为合法JSON: %v", err)
	}
	if final["title"] != "Rooftop Dinner" {
		t.Errorf("final_match透传错误: %v", final)
	}
}

func TestNewUserPayloadLocation(t *testing.T) {
	lat, lng := 40.7128, -74.0060

	withPermission := &model.User{ID: 1, Name: "Ann", LocationPermission: true, LocationLatitude: &lat, LocationLongitude: &lng}
	if p := NewUserPayload(withPermission); p.Location == nil || p.Location.Latitude != lat {
		t.Errorf("已授权用户应带坐标: %+v", p.Location)
	}

	// 未授权时即使有坐标也不外泄
	withoutPermission := &model.User{ID: 2, Name: "Bob", LocationPermission: false, LocationLatitude: &lat, LocationLongitude: &lng}
	if p := NewUserPayload(withoutPermission); p.Location != nil {
		t.Errorf("未授权用户不应带坐标: %+v", p.Location)
	}
}

func TestNewPreferencePayload(t *testing.T) {
	if NewPreferencePayload(nil) != nil {
		t.Error("nil偏好应返回nil")
	}

	now := time.Now()
	lat, lng := 1.5, 2.5
	min, max := 10, 50
	pref := &model.Preference{
		AvailableTimes:    model.JSONStrings([]string{"saturday_evening"}),
		Activities:        model.JSONStrings([]string{"food"}),
		BudgetMin:         &min,
		BudgetMax:         &max,
		LocationLatitude:  &lat,
		LocationLongitude: &lng,
		Ideas:             "rooftop",
		SubmittedAt:       &now,
	}
	p := NewPreferencePayload(pref)
	if len(p.AvailableTimes) != 1 || p.AvailableTimes[0] != "saturday_evening" {
		t.Errorf("available_times解码错误: %v", p.AvailableTimes)
	}
	if p.Location == nil || p.Location.Latitude != lat {
		t.Errorf("坐标缺失: %+v", p.Location)
	}
	if p.BudgetMin == nil || *p.BudgetMin != 10 {
		t.Errorf("预算缺失: %+v", p.BudgetMin)
	}
}
