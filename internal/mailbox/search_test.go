package mailbox

import (
	"testing"
	"time"
)

func TestBuildCriteriaCount(t *testing.T) {
	builder := NewBuilder(
		[]string{"notificaciones@bac.net", "alerts@bank.com"},
		[]string{"transacción", "purchase", "compra"},
	)

	since := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	criteria := builder.Build(since, nil)

	if got, want := len(criteria), 5; got != want {
		t.Fatalf("Build() returned %d criteria, want %d", got, want)
	}

	// Sender queries come first, one Header From each.
	for i := 0; i < 2; i++ {
		c := criteria[i]
		if len(c.Header) != 1 || c.Header[0].Key != "From" {
			t.Errorf("criteria[%d]: want single From header, got %+v", i, c.Header)
		}
		if len(c.Text) != 0 {
			t.Errorf("criteria[%d]: sender query should carry no text terms", i)
		}
	}

	// Keyword queries follow, one Text term each.
	for i := 2; i < 5; i++ {
		c := criteria[i]
		if len(c.Text) != 1 {
			t.Errorf("criteria[%d]: want single text term, got %v", i, c.Text)
		}
		if len(c.Header) != 0 {
			t.Errorf("criteria[%d]: keyword query should carry no header terms", i)
		}
	}
}

func TestBuildDateWindow(t *testing.T) {
	builder := NewBuilder([]string{"alerts@bank.com"}, nil)

	since := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

	criteria := builder.Build(since, &until)
	if len(criteria) != 1 {
		t.Fatalf("Build() returned %d criteria, want 1", len(criteria))
	}

	c := criteria[0]
	if !c.Since.Equal(since) {
		t.Errorf("Since = %v, want %v", c.Since, since)
	}
	// BEFORE is exclusive, so an inclusive until becomes until+1day.
	wantBefore := time.Date(2025, 8, 16, 0, 0, 0, 0, time.UTC)
	if !c.Before.Equal(wantBefore) {
		t.Errorf("Before = %v, want %v", c.Before, wantBefore)
	}
}

func TestBuildNoUntil(t *testing.T) {
	builder := NewBuilder([]string{"alerts@bank.com"}, nil)

	since := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	criteria := builder.Build(since, nil)

	if !criteria[0].Before.IsZero() {
		t.Errorf("Before = %v, want zero when no until bound", criteria[0].Before)
	}
}
