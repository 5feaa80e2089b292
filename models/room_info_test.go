package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRoomInfoJSONID(t *testing.T) {
	data, err := json.Marshal(RoomInfo{Title: "Sala"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"id":null`) || !strings.Contains(string(data), `"title":"Sala"`) {
		t.Fatalf("unsaved = %s", data)
	}

	data, _ = json.Marshal(RoomInfo{ID: 7, Title: "Sala"})
	if !strings.Contains(string(data), `"id":7`) {
		t.Fatalf("saved = %s", data)
	}

	var back RoomInfo
	if err := json.Unmarshal(data, &back); err != nil || back.ID != 7 || back.Title != "Sala" {
		t.Fatalf("round trip = %+v, %v", back, err)
	}
}
