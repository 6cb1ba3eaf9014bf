package publishers

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubPublisherPublishes(t *testing.T) {
	// In-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()
	if _, err := client.CreateTopic(ctx, "refresh"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	pub, err := newPubSubPublisher(ctx, PublisherConfig{
		ID:     "ps",
		Type:   TypePubSub,
		PubSub: &PubSubPublisherConfig{ProjectID: "test-project", Topic: "refresh"},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubPublisher: %v", err)
	}
	defer pub.(*pubsubPublisher).Close()

	if err := pub.Publish(ctx, Event{Type: EventCategoryRefreshed, Category: "kultura", ArticleCount: 3}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes["category"] != "kultura" || msgs[0].Attributes["event_type"] != EventCategoryRefreshed {
		t.Fatalf("unexpected attributes %v", msgs[0].Attributes)
	}
	var evt Event
	if err := json.Unmarshal(msgs[0].Data, &evt); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if evt.ArticleCount != 3 {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestPubSubPublisherMissingTopic(t *testing.T) {
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	pub, err := newPubSubPublisher(ctx, PublisherConfig{
		ID:     "ps",
		Type:   TypePubSub,
		PubSub: &PubSubPublisherConfig{ProjectID: "test-project", Topic: "absent"},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubPublisher: %v", err)
	}
	defer pub.(*pubsubPublisher).Close()

	if err := pub.Publish(ctx, Event{Category: "ai"}); err == nil {
		t.Fatalf("expected error publishing to a missing topic")
	}
}
