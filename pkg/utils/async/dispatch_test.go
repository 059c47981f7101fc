package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cottus/pkg/utils/async"
)

func TestDispatch(t *testing.T) {
	t.Run("runs handler in background", func(t *testing.T) {
		done := make(chan struct{})
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			close(done)
			return nil
		})

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("handler was not executed")
		}
	})

	t.Run("survives errors and panics", func(t *testing.T) {
		done := make(chan struct{}, 2)
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			done <- struct{}{}
			return errors.New("failure")
		})
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			done <- struct{}{}
			panic("boom")
		})

		for i := 0; i < 2; i++ {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("handler was not executed")
			}
		}
		gt.Number(t, len(done)).Equal(0)
	})

	t.Run("handler context outlives the caller", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		errCh := make(chan error, 1)
		async.Dispatch(ctx, func(ctx context.Context) error {
			errCh <- ctx.Err()
			return nil
		})

		select {
		case err := <-errCh:
			gt.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("handler was not executed")
		}
	})
}
