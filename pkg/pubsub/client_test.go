package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/surplusmarket-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		project, name, want string
	}{
		{"proj", "orders", "projects/proj/topics/orders"},
		{"proj", " projects/other/topics/x ", "projects/other/topics/x"},
		{"", "orders", ""},
		{"proj", "", ""},
	}
	for _, tc := range cases {
		if got := topicResourceName(tc.project, tc.name); got != tc.want {
			t.Fatalf("topicResourceName(%q, %q) = %q, want %q", tc.project, tc.name, got, tc.want)
		}
	}
}

func TestTopicNamesSkipsBlank(t *testing.T) {
	names := topicNames(config.PubSubConfig{NotificationTopic: "notify", DomainTopic: "  "})
	if len(names) != 1 || names[0] != "notify" {
		t.Fatalf("unexpected topics %v", names)
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	if _, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.Publisher("x") != nil {
		t.Fatal("nil client should not build publishers")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error on nil client")
	}
}

func TestWrapPublisherNil(t *testing.T) {
	if WrapPublisher(nil) != nil {
		t.Fatal("expected nil wrapper for nil publisher")
	}
	id, err := ResultOf("msg-1", nil).Get(context.Background())
	if err != nil || id != "msg-1" {
		t.Fatalf("unexpected static result %q %v", id, err)
	}
}
