package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func TestDispatcher_RoutesByPathAndName(t *testing.T) {
	t.Parallel()

	var got []string
	d := NewDispatcher(map[string]usecase.JobHandler{
		"run-bots": func(_ context.Context, payload []byte) error {
			got = append(got, string(payload))
			return nil
		},
		"ignored": nil,
	}, logging.NewNop())

	if err := d.Dispatch(context.Background(), usecase.JobPath("run-bots"), []byte(`{"a":1}`)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(got) != 1 || got[0] != `{"a":1}` {
		t.Fatalf("unexpected payloads %v", got)
	}
	if d.Has("ignored") {
		t.Fatalf("nil handlers must not be registered")
	}
	if jobs := d.Jobs(); len(jobs) != 1 || jobs[0] != "run-bots" {
		t.Fatalf("unexpected jobs %v", jobs)
	}

	err := d.Dispatch(context.Background(), "/v1/other/run-bots", nil)
	if !errors.Is(err, ErrUnknownJob) || !IsPermanent(err) {
		t.Fatalf("expected permanent unknown job error, got %v", err)
	}
}

func TestIsPermanent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput), true},
		{usecase.ErrMatchNotFound, true},
		{usecase.ErrMatchNotFinalized, false},
		{errors.New("db down"), false},
	}
	for _, tc := range cases {
		if got := IsPermanent(tc.err); got != tc.want {
			t.Fatalf("IsPermanent(%v)=%v, want %v", tc.err, got, tc.want)
		}
	}
}
