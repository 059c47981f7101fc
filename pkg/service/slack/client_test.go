package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/service/slack"
)

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("", "C123")
		gt.Value(t, err).NotNil()
	})

	t.Run("returns error when channel is empty", func(t *testing.T) {
		_, err := slack.New("xoxb-test", "")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates notifier", func(t *testing.T) {
		n, err := slack.New("xoxb-test", "C123")
		gt.NoError(t, err).Required()
		gt.Value(t, n).NotNil()
	})
}

func TestNotify(t *testing.T) {
	var (
		gotPath    string
		gotChannel string
		gotBlocks  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = r.ParseForm()
		gotChannel = r.FormValue("channel")
		gotBlocks = r.FormValue("blocks")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": "C123", "ts": "1700000000.000100"})
	}))
	defer srv.Close()

	notifier, err := slack.New("xoxb-test", "C123", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	err = notifier.Notify(context.Background(), &model.Notification{
		Title: "Residual risk above tolerance",
		Body:  "*Data exfiltration* residual score 16 exceeds tolerance 12",
		Fields: map[string]string{
			"Residual level": "high",
			"Appetite":       "default",
		},
	})
	gt.NoError(t, err).Required()

	gt.String(t, gotPath).Contains("chat.postMessage")
	gt.Value(t, gotChannel).Equal("C123")
	gt.String(t, gotBlocks).Contains("Residual risk above tolerance")
	gt.String(t, gotBlocks).Contains("Data exfiltration")
	gt.String(t, gotBlocks).Contains("Residual level")
}

func TestNotifyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "channel_not_found"})
	}))
	defer srv.Close()

	notifier, err := slack.New("xoxb-test", "C404", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	err = notifier.Notify(context.Background(), &model.Notification{Title: "x"})
	gt.Value(t, err).NotNil()
}

func TestBuildBlocks(t *testing.T) {
	t.Run("title only", func(t *testing.T) {
		blocks := slack.BuildBlocks(&model.Notification{Title: "t"})
		gt.Array(t, blocks).Length(1)
	})

	t.Run("fields are split into sections of ten", func(t *testing.T) {
		fields := map[string]string{}
		for _, k := range strings.Split("a b c d e f g h i j k l", " ") {
			fields[k] = "v"
		}
		blocks := slack.BuildBlocks(&model.Notification{Title: "t", Body: "b", Fields: fields})
		gt.Array(t, blocks).Length(4)
	})
}

func TestTruncateToMaxBytes(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		maxBytes int
		want     string
	}{
		{name: "short string unchanged", input: "hello", maxBytes: 10, want: "hello"},
		{name: "ascii truncated", input: "hello world", maxBytes: 8, want: "hello…"},
		{name: "multibyte boundary kept", input: "リスク評価", maxBytes: 10, want: "リス…"},
		{name: "limit too small", input: "hello", maxBytes: 2, want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := slack.TruncateToMaxBytes(tc.input, tc.maxBytes)
			gt.Value(t, got).Equal(tc.want)
			gt.Bool(t, utf8.ValidString(got)).True()
			gt.Bool(t, len(got) <= tc.maxBytes).True()
		})
	}
}

func TestIntegration(t *testing.T) {
	token := os.Getenv("TEST_SLACK_BOT_TOKEN")
	channelID := os.Getenv("TEST_SLACK_CHANNEL_ID")
	if token == "" || channelID == "" {
		t.Skip("TEST_SLACK_BOT_TOKEN or TEST_SLACK_CHANNEL_ID is not set")
	}

	notifier, err := slack.New(token, channelID)
	gt.NoError(t, err).Required()

	gt.NoError(t, notifier.Notify(context.Background(), &model.Notification{
		Title: "cottus integration test",
		Body:  "This message was posted by the notifier integration test.",
	}))
}
