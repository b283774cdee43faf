package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewJobDefaults(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	itemID := uuid.New()
	job := NewJob(JobTypeDispatch, userID, &itemID)

	if job.Type != JobTypeDispatch {
		t.Errorf("Type = %s, want dispatch", job.Type)
	}
	if job.UserID != userID {
		t.Errorf("UserID = %s, want %s", job.UserID, userID)
	}
	if job.ItemID == nil || *job.ItemID != itemID {
		t.Errorf("ItemID = %v, want %s", job.ItemID, itemID)
	}
	if job.RetryCount != 0 || job.MaxRetries != 3 {
		t.Errorf("retry counters = %d/%d, want 0/3", job.RetryCount, job.MaxRetries)
	}
	if !job.ShouldProcess() {
		t.Error("new job should be processable immediately")
	}
}

func TestJobShouldProcess(t *testing.T) {
	t.Parallel()

	future := time.Now().Add(1 * time.Hour)
	past := time.Now().Add(-1 * time.Hour)

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{name: "no bounds", want: true},
		{name: "not before future", notBefore: &future, want: false},
		{name: "not before past", notBefore: &past, want: true},
		{name: "not after past", notAfter: &past, want: false},
		{name: "not after future", notAfter: &future, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJob(JobTypeDispatch, uuid.New(), nil)
			job.NotBefore = tt.notBefore
			job.NotAfter = tt.notAfter
			if got := job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobRetry(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeDispatch, uuid.New(), nil)
	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("CanRetry() = false at retry %d, want true", i)
		}
		job.IncrementRetry()
	}
	if job.CanRetry() {
		t.Error("CanRetry() = true after max retries, want false")
	}
}
