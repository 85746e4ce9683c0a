package locale

import (
	"strings"
	"testing"
)

func TestLoad_Default(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "en" {
		t.Errorf("expected en, got %q", c.Name)
	}

	want := []string{"Task Name", "Task Note", "Due Date", "Related Person", "Status"}
	got := c.Schema().HeaderRow()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected headers %v, got %v", want, got)
	}
	if c.Status.Pending != "Pending" || c.Status.Done != "Done" {
		t.Errorf("unexpected status labels: %+v", c.Status)
	}
}

func TestLoad_Turkish(t *testing.T) {
	c, err := Load("TR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	schema := c.Schema()
	if schema.Headers[0] != "Görev Adı" || schema.Headers[4] != "Durum" {
		t.Errorf("unexpected headers: %v", schema.Headers)
	}
	if schema.Pending != "Bekliyor" || schema.Done != "Tamamlandı" {
		t.Errorf("unexpected status labels: %q %q", schema.Pending, schema.Done)
	}
	if c.DateLayout != "02.01.2006" {
		t.Errorf("unexpected date layout %q", c.DateLayout)
	}
}

func TestLoad_Unknown(t *testing.T) {
	_, err := Load("xx")
	if err == nil {
		t.Fatal("expected error for unknown locale")
	}
	if !strings.Contains(err.Error(), "available: en, tr") {
		t.Errorf("expected available locales in error, got %v", err)
	}
}

func TestAvailable(t *testing.T) {
	got := strings.Join(Available(), ",")
	if got != "en,tr" {
		t.Errorf("expected en,tr, got %q", got)
	}
}

func TestParse_MissingKeys(t *testing.T) {
	_, err := parse("broken", []byte("headers:\n  name: Name\n"))
	if err == nil {
		t.Fatal("expected error for incomplete catalog")
	}
	if !strings.Contains(err.Error(), "messages.help") {
		t.Errorf("expected missing key in error, got %v", err)
	}
}

func TestParse_SameStatusLabels(t *testing.T) {
	c, err := Load("en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Status.Done = c.Status.Pending
	if err := c.validate(); err == nil {
		t.Error("expected error when status labels collide")
	}
}

func TestMessages_FormatVerbs(t *testing.T) {
	for _, name := range Available() {
		c, err := Load(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		for key, msg := range map[string]string{
			"completed":   c.Messages.Completed,
			"not_found":   c.Messages.NotFound,
			"today_title": c.Messages.TodayTitle,
		} {
			if strings.Count(msg, "%s") != 1 {
				t.Errorf("%s: %s should take exactly one %%s, got %q", name, key, msg)
			}
		}
	}
}
