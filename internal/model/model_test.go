package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDateLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-01", "2024-01-01"},
		{"Mon, 01 Jan 2024 00:00:00 GMT", "2024-01-01"},
		{"2024-03-05T10:00:00Z", "2024-03-05"},
		{"  2024-12-31 ", "2024-12-31"},
	}
	for _, tt := range tests {
		d, err := ParseDate(tt.in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tt.in, err)
		}
		if d.String() != tt.want {
			t.Errorf("ParseDate(%q) = %q, want %q", tt.in, d.String(), tt.want)
		}
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, err := ParseDate("yesterday"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestTaskDecodeServerShape(t *testing.T) {
	body := `{"id":5,"task":"Buy milk","date":"Mon, 01 Jan 2024 00:00:00 GMT","time":"10:00",
		"is_complete":false,"category":{"id":1,"name":"Home"},"category_id":1,"user_id":3}`

	var task Task
	if err := json.Unmarshal([]byte(body), &task); err != nil {
		t.Fatal(err)
	}
	if task.ID != 5 || task.Task != "Buy milk" || task.Time != "10:00" {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.Date.String() != "2024-01-01" {
		t.Fatalf("date = %q", task.Date.String())
	}
	if task.Category != (CategoryRef{ID: 1, Name: "Home"}) {
		t.Fatalf("category = %+v", task.Category)
	}
}

func TestDateEncodesPlainDay(t *testing.T) {
	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{NewDate(2024, time.February, 29)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"d":"2024-02-29"}` {
		t.Fatalf("got %s", b)
	}
}

func TestDateNullAndEmpty(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`null`), &d); err != nil || !d.IsZero() {
		t.Fatalf("null: %v %v", err, d)
	}
	if err := json.Unmarshal([]byte(`""`), &d); err != nil || !d.IsZero() {
		t.Fatalf("empty: %v %v", err, d)
	}
}

func TestTaskDue(t *testing.T) {
	task := Task{Date: NewDate(2024, time.January, 1), Time: "10:30"}
	due, ok := task.Due(time.UTC)
	if !ok {
		t.Fatal("expected due time")
	}
	want := time.Date(2024, time.January, 1, 10, 30, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Fatalf("due = %v, want %v", due, want)
	}

	task.Time = "later"
	due, _ = task.Due(time.UTC)
	if due.Hour() != 0 || due.Minute() != 0 {
		t.Fatalf("unparseable time should fall back to midnight, got %v", due)
	}

	if _, ok := (Task{}).Due(time.UTC); ok {
		t.Fatal("task without date has no due time")
	}
}
