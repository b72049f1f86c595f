// Package websub manages the hub subscriptions that deliver new-video
// notifications for tracked channels. Subscriptions use async
// verification: the hub calls back the webhook's GET endpoint with a
// challenge before activating.
package websub

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultHubURL is the public PubSubHubbub hub.
	DefaultHubURL = "https://pubsubhubbub.appspot.com/subscribe"

	topicTemplate = "https://www.youtube.com/xml/feeds/videos.xml?channel_id=%s"
)

// Client subscribes and unsubscribes channel topics at the hub.
type Client struct {
	http        *http.Client
	hubURL      string
	callbackURL string
	logger      *zap.Logger
}

// New builds a Client delivering notifications to callbackURL.
func New(callbackURL string, logger *zap.Logger) *Client {
	return &Client{
		http:        &http.Client{Timeout: 15 * time.Second},
		hubURL:      DefaultHubURL,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

// TopicURL returns the feed topic for one channel.
func TopicURL(channelID string) string {
	return fmt.Sprintf(topicTemplate, channelID)
}

func (c *Client) request(ctx context.Context, mode, channelID string) error {
	form := url.Values{}
	form.Set("hub.callback", c.callbackURL)
	form.Set("hub.topic", TopicURL(channelID))
	form.Set("hub.mode", mode)
	form.Set("hub.verify", "async")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.hubURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("websub: build %s request: %w", mode, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("websub: %s %s: %w", mode, channelID, err)
	}
	defer resp.Body.Close()

	// The hub answers 202 when it accepts the request for verification.
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("websub: %s %s: hub answered %d", mode, channelID, resp.StatusCode)
	}
	c.logger.Info("hub request accepted",
		zap.String("mode", mode), zap.String("channel_id", channelID))
	return nil
}

// Subscribe asks the hub to start delivering the channel's feed.
// Re-subscribing an active subscription renews its lease.
func (c *Client) Subscribe(ctx context.Context, channelID string) error {
	return c.request(ctx, "subscribe", channelID)
}

// Unsubscribe asks the hub to stop delivering the channel's feed.
func (c *Client) Unsubscribe(ctx context.Context, channelID string) error {
	return c.request(ctx, "unsubscribe", channelID)
}
