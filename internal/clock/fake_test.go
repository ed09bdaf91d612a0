package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFakeAfter(t *testing.T) {
	t.Run("fires only once deadline is reached", func(t *testing.T) {
		f := NewFake(epoch)
		ch := f.After(3 * time.Second)

		f.Advance(2 * time.Second)
		select {
		case <-ch:
			t.Fatal("timer fired early")
		default:
		}

		f.Advance(time.Second)
		select {
		case got := <-ch:
			if !got.Equal(epoch.Add(3 * time.Second)) {
				t.Errorf("expected deadline time, got %v", got)
			}
		default:
			t.Fatal("timer did not fire")
		}
		if f.Pending() != 0 {
			t.Errorf("expected no pending timers, got %d", f.Pending())
		}
	})

	t.Run("non-positive duration fires immediately", func(t *testing.T) {
		f := NewFake(epoch)
		select {
		case <-f.After(0):
		default:
			t.Fatal("expected immediate fire")
		}
	})
}

func TestFakeTicker(t *testing.T) {
	t.Run("ticks each period", func(t *testing.T) {
		f := NewFake(epoch)
		tk := f.NewTicker(30 * time.Second)
		defer tk.Stop()

		for i := 0; i < 3; i++ {
			f.Advance(30 * time.Second)
			select {
			case <-tk.C():
			default:
				t.Fatalf("missing tick %d", i)
			}
		}
	})

	t.Run("drops ticks nobody reads", func(t *testing.T) {
		f := NewFake(epoch)
		tk := f.NewTicker(time.Second)
		defer tk.Stop()

		f.Advance(5 * time.Second)
		<-tk.C()
		select {
		case <-tk.C():
			t.Fatal("expected extra ticks to be dropped")
		default:
		}
	})

	t.Run("reset changes period", func(t *testing.T) {
		f := NewFake(epoch)
		tk := f.NewTicker(30 * time.Second)
		defer tk.Stop()

		tk.Reset(10 * time.Second)
		f.Advance(10 * time.Second)
		select {
		case <-tk.C():
		default:
			t.Fatal("expected tick after reset period")
		}
	})

	t.Run("stop removes ticker", func(t *testing.T) {
		f := NewFake(epoch)
		tk := f.NewTicker(time.Second)
		tk.Stop()
		tk.Stop()

		if f.Pending() != 0 {
			t.Errorf("expected no pending timers, got %d", f.Pending())
		}
		f.Advance(time.Second)
		select {
		case <-tk.C():
			t.Fatal("stopped ticker fired")
		default:
		}
	})
}

func TestFakeBlockUntil(t *testing.T) {
	f := NewFake(epoch)
	done := make(chan error, 1)

	go func() {
		done <- Sleep(context.Background(), f, time.Minute)
	}()

	f.BlockUntil(1)
	f.Advance(time.Minute)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("sleep did not return")
	}
}

func TestSleepCancelled(t *testing.T) {
	f := NewFake(epoch)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, f, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
