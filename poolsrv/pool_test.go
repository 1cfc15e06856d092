package poolsrv

import (
	"context"
	"errors"
	"testing"
	"time"

	ttcore "github.com/usgs/traveltime"
)

func TestNewBuildsRequestedSize(t *testing.T) {
	p := New(&ttcore.TableSet{}, 2)
	defer p.Close()

	if got := len(p.free); got != 2 {
		t.Fatalf("len(p.free) = %d, want 2", got)
	}
}

func TestBorrowAndReturn(t *testing.T) {
	p := New(&ttcore.TableSet{}, 1)
	defer p.Close()

	ctx := context.Background()
	v, err := p.Borrow(ctx)
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if v == nil {
		t.Fatal("Borrow returned a nil Volume")
	}

	select {
	case <-p.free:
		t.Fatal("pool should be empty after borrowing its only volume")
	default:
	}

	p.Return(v)
	select {
	case <-p.free:
	default:
		t.Fatal("Return should make the volume available again")
	}
}

func TestBorrowRespectsContextCancellation(t *testing.T) {
	p := New(&ttcore.TableSet{}, 1)
	defer p.Close()

	ctx := context.Background()
	if _, err := p.Borrow(ctx); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	// Pool is now empty; a cancelled context should return promptly.
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Borrow(cancelled); err == nil {
		t.Fatal("expected Borrow to report the cancelled context")
	}
}

func TestSubmitRunsWithBorrowedVolume(t *testing.T) {
	p := New(&ttcore.TableSet{}, 1)
	defer p.Close()

	ran := make(chan *ttcore.Volume, 1)
	errCh := p.Submit(context.Background(), func(v *ttcore.Volume) error {
		ran <- v
		return nil
	})

	select {
	case v := <-ran:
		if v == nil {
			t.Fatal("Submit's fn received a nil Volume")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Submit's fn never ran")
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Submit returned error %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Submit's result channel never received a value")
	}

	// The volume should have been returned to the pool after fn completed.
	select {
	case <-p.free:
	case <-time.After(2 * time.Second):
		t.Fatal("volume was not returned to the pool after Submit's fn completed")
	}
}

func TestSubmitPropagatesError(t *testing.T) {
	p := New(&ttcore.TableSet{}, 1)
	defer p.Close()

	wantErr := errors.New("boom")
	errCh := p.Submit(context.Background(), func(v *ttcore.Volume) error {
		return wantErr
	})

	select {
	case err := <-errCh:
		if err != wantErr {
			t.Fatalf("Submit returned %v, want %v", err, wantErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Submit's result channel never received a value")
	}
}
