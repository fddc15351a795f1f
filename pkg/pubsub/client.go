// Package pubsub owns the Pub/Sub v2 client used by the outbox publisher.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	"github.com/angelmondragon/vendorkyc-backend/pkg/gcp"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errTopicRequired     = errors.New("pubsub topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

type Client struct {
	client    *pubsub.Client
	projectID string
	// healthTopic is re-read by Ping.
	healthTopic string
}

// NewClient connects to Pub/Sub and fails fast when the vendor events topic
// is missing; topics are provisioned outside this service.
func NewClient(ctx context.Context, gcpCfg config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcpCfg.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}

	ps, err := pubsub.NewClient(ctx, projectID, gcp.ClientOptions(gcpCfg)...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{client: ps, projectID: projectID, healthTopic: cfg.VendorEventsTopic}
	if err := c.checkTopic(ctx, c.healthTopic); err != nil {
		_ = ps.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topic", c.healthTopic), "pubsub client initialized")
	}
	return c, nil
}

func (c *Client) checkTopic(ctx context.Context, name string) error {
	topic, err := topicResourceName(c.projectID, name)
	if err != nil {
		return err
	}
	if _, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: topic}); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("topic %q does not exist", topic)
		}
		return fmt.Errorf("checking topic %q: %w", topic, err)
	}
	return nil
}

// Publisher returns a handle for name, which may be a short topic id or a
// full projects/.../topics/... resource name. Nil when name is unusable.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	topic, err := topicResourceName(c.projectID, name)
	if err != nil {
		return nil
	}
	return c.client.Publisher(topic)
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	return c.checkTopic(ctx, c.healthTopic)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func topicResourceName(projectID, name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", errTopicRequired
	case strings.HasPrefix(name, "projects/") && strings.Contains(name, "/topics/"):
		return name, nil
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return "", errProjectIDRequired
	}
	return "projects/" + projectID + "/topics/" + name, nil
}
