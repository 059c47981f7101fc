package slack

import (
	"context"
	"sort"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/interfaces"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/slack-go/slack"
)

const (
	// maxHeaderBytes is the Slack limit for plain_text in a header block
	maxHeaderBytes = 150
	// maxSectionBytes is the Slack limit for text in a section block
	maxSectionBytes = 3000
)

// Notifier posts notifications to a single Slack channel
type Notifier struct {
	api       *slack.Client
	channelID string
}

var _ interfaces.Notifier = &Notifier{}

// Option is a functional option for Notifier configuration
type Option func(*options)

type options struct {
	apiURL string
}

// WithAPIURL overrides the Slack API endpoint
func WithAPIURL(url string) Option {
	return func(o *options) {
		o.apiURL = url
	}
}

// New creates a Notifier with the provided bot token and destination channel ID
func New(token, channelID string, opts ...Option) (*Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var apiOpts []slack.Option
	if o.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(o.apiURL))
	}

	return &Notifier{
		api:       slack.New(token, apiOpts...),
		channelID: channelID,
	}, nil
}

// Notify posts n as a header and section message
func (x *Notifier) Notify(ctx context.Context, n *model.Notification) error {
	_, _, err := x.api.PostMessageContext(ctx, x.channelID,
		slack.MsgOptionBlocks(buildBlocks(n)...),
		slack.MsgOptionText(truncateToMaxBytes(n.Title, maxSectionBytes), false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post slack message",
			goerr.V("channel_id", x.channelID), goerr.V("title", n.Title))
	}
	return nil
}

func buildBlocks(n *model.Notification) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, truncateToMaxBytes(n.Title, maxHeaderBytes), false, false),
		),
	}

	if n.Body != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(n.Body, maxSectionBytes), false, false),
			nil, nil,
		))
	}

	if len(n.Fields) > 0 {
		keys := make([]string, 0, len(n.Fields))
		for k := range n.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		// a section holds at most 10 fields
		for start := 0; start < len(keys); start += 10 {
			end := min(start+10, len(keys))
			var fields []*slack.TextBlockObject
			for _, k := range keys[start:end] {
				text := "*" + k + "*\n" + n.Fields[k]
				fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(text, 2000), false, false))
			}
			blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))
		}
	}

	return blocks
}

// truncateToMaxBytes cuts s to at most maxBytes without splitting a UTF-8 sequence
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}

	const ellipsis = "…"
	limit := maxBytes - len(ellipsis)
	if limit <= 0 {
		return ""
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
