package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hrhelper/recruiter-service/internal/events"
)

type published struct {
	channel string
	payload []byte
}

type fakeClient struct {
	msgs []published
	err  error
}

func (f *fakeClient) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.msgs = append(f.msgs, published{channel: channel, payload: message.([]byte)})
	cmd.SetVal(1)
	return cmd
}

func TestRedisPublisher_CVStatusChanged(t *testing.T) {
	fc := &fakeClient{}
	p := events.NewRedisPublisher(fc, zap.NewNop())

	p.CVStatusChanged(context.Background(), events.CVStatusChanged{
		CVID: 3, JobOfferID: 9, UserID: "u-1", From: "new", To: "accepted",
	})

	if len(fc.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(fc.msgs))
	}
	if fc.msgs[0].channel != events.TypeCVStatusChanged {
		t.Errorf("channel = %q", fc.msgs[0].channel)
	}
	var got map[string]string
	if err := json.Unmarshal(fc.msgs[0].payload, &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	want := map[string]string{
		"type": events.TypeCVStatusChanged, "cvId": "3", "jobOfferId": "9",
		"userId": "u-1", "from": "new", "to": "accepted",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("payload[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestRedisPublisher_OfferKeywordsUpdated(t *testing.T) {
	fc := &fakeClient{}
	p := events.NewRedisPublisher(fc, zap.NewNop())

	p.OfferKeywordsUpdated(context.Background(), events.OfferKeywordsUpdated{
		JobOfferID: 4, UserID: "u-2", Rescored: 2,
	})

	if len(fc.msgs) != 1 || fc.msgs[0].channel != events.TypeOfferKeywordsUpdated {
		t.Fatalf("unexpected messages: %+v", fc.msgs)
	}
	var got struct {
		Keywords []string `json:"keywords"`
		Rescored int      `json:"rescored"`
	}
	if err := json.Unmarshal(fc.msgs[0].payload, &got); err != nil {
		t.Fatal(err)
	}
	if got.Keywords == nil || len(got.Keywords) != 0 {
		t.Errorf("keywords = %#v, want empty array", got.Keywords)
	}
	if got.Rescored != 2 {
		t.Errorf("rescored = %d, want 2", got.Rescored)
	}
}

// A broken Redis must not panic or surface to the caller.
func TestRedisPublisher_FailureIsSwallowed(t *testing.T) {
	fc := &fakeClient{err: errors.New("connection refused")}
	p := events.NewRedisPublisher(fc, zap.NewNop())
	p.CVStatusChanged(context.Background(), events.CVStatusChanged{CVID: 1})
	if len(fc.msgs) != 0 {
		t.Errorf("unexpected messages: %+v", fc.msgs)
	}
}
