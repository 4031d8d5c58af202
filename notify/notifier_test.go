package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDiscordNotify(t *testing.T) {
	var got discordMessage
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	if err := NewDiscord(ts.URL).Notify(context.Background(), "Sent 0.5 ETH"); err != nil {
		t.Fatal(err)
	}
	if got.Content != "Sent 0.5 ETH" {
		t.Errorf("content = %q", got.Content)
	}
}

func TestDiscordNotifyStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	if err := NewDiscord(ts.URL).Notify(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewWithoutWebhook(t *testing.T) {
	n, err := New(Options{Driver: DriverDiscord})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(Nop); !ok {
		t.Fatalf("expected Nop, got %T", n)
	}
	if _, err := New(Options{Driver: DriverAMQP}); err == nil {
		t.Fatal("expected error without amqp url")
	}
	if _, err := New(Options{Driver: "sms"}); err == nil {
		t.Fatal("expected unknown driver error")
	}
}
