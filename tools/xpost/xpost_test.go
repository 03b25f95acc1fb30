package xpost_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolchat-ai/toolchat/pkg/llmutils"
	"github.com/toolchat-ai/toolchat/tools"
	"github.com/toolchat-ai/toolchat/tools/xpost"
)

func testConfig() *xpost.Config {
	return &xpost.Config{
		APIKey:       "key",
		APISecret:    "secret",
		AccessToken:  "token",
		AccessSecret: "tokensecret",
	}
}

func Test_ConfigFromEnv(t *testing.T) {
	t.Setenv("X_API_KEY", "key")
	t.Setenv("X_API_SECRET", "secret")
	t.Setenv("X_ACCESS_TOKEN", "token")
	t.Setenv("X_ACCESS_TOKEN_SECRET", "tokensecret")

	cfg, err := xpost.ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "key", cfg.APIKey)

	t.Setenv("X_ACCESS_TOKEN_SECRET", "")
	_, err = xpost.ConfigFromEnv()
	assert.EqualError(t, err, "X API credentials are not configured: set X_API_KEY, X_API_SECRET, X_ACCESS_TOKEN and X_ACCESS_TOKEN_SECRET")
}

func Test_PostTweet(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2/tweets", r.URL.Path)
		assert.Contains(t, r.Header.Get("Authorization"), "OAuth")

		var body map[string]any
		err := json.NewDecoder(r.Body).Decode(&body)
		assert.NoError(t, err)
		assert.Equal(t, "hello world", body["text"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "1234567890"},
		})
	}))
	defer server.Close()

	tool, err := xpost.New(testConfig())
	require.NoError(t, err)
	tool.WithBaseURL(server.URL)

	assert.Equal(t, xpost.ToolName, tool.Name())
	assert.Contains(t, tool.Description(), "tweets")
	require.NotNil(t, tool.Parameters())

	_, err = tool.Call(ctx, "plain string")
	assert.True(t, errors.Is(err, tools.ErrFailedUnmarshalInput))

	res, err := tool.Run(ctx, &xpost.Request{Action: xpost.ActionPostTweet, Text: "hello world"})
	require.NoError(t, err)
	assert.Equal(t, "1234567890", res.TweetID)
	assert.Equal(t, "tweet 1234567890 posted: hello world", res.String())
}

func Test_PostTweet_Invalid(t *testing.T) {
	ctx := context.Background()

	tool, err := xpost.New(testConfig())
	require.NoError(t, err)

	_, err = tool.Run(ctx, &xpost.Request{Action: xpost.ActionPostTweet})
	require.Error(t, err)
	assert.True(t, tools.IsArgumentInvalid(err))
	assert.Contains(t, err.Error(), "tweet text is required")

	_, err = tool.Run(ctx, &xpost.Request{
		Action: xpost.ActionPostTweet,
		Text:   strings.Repeat("x", 281),
	})
	require.Error(t, err)
	assert.True(t, tools.IsArgumentInvalid(err))
	assert.Contains(t, err.Error(), "cannot exceed 280 characters")

	// action enum is enforced by schema validation in Call
	_, err = tool.Call(ctx, llmutils.ToJSON(&xpost.Request{Action: "subscribe"}))
	require.Error(t, err)
	assert.True(t, tools.IsArgumentInvalid(err))
}

func Test_GetTweets(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2/users/by/username/gopher":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"id": "42"},
			})
		case "/2/users/42/tweets":
			assert.Equal(t, "5", r.URL.Query().Get("max_results"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{
						"id": "1", "text": "first", "author_id": "42",
						"created_at":     "2025-06-01T10:00:00Z",
						"public_metrics": map[string]int{"like_count": 3, "retweet_count": 1},
					},
					{
						"id": "2", "text": "second", "author_id": "42",
						"created_at":     "2025-06-02T10:00:00Z",
						"public_metrics": map[string]int{"like_count": 7},
					},
				},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	tool, err := xpost.New(testConfig())
	require.NoError(t, err)
	tool.WithBaseURL(server.URL)

	res, err := tool.Run(ctx, &xpost.Request{Action: xpost.ActionGetTweets, Username: "gopher", Limit: 5})
	require.NoError(t, err)
	require.Len(t, res.Tweets, 2)
	assert.Equal(t, "first", res.Tweets[0].Text)

	exp := `retrieved 2 tweet(s)
- @42: first (likes: 3, retweets: 1)
- @42: second (likes: 7, retweets: 0)`
	assert.Equal(t, exp, res.String())
}

func Test_LikeRetweetDelete(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/2/users/me":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"id": "42"},
			})
		case r.URL.Path == "/2/users/42/likes" && r.Method == http.MethodPost:
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "99", body["tweet_id"])
			_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]bool{"liked": true}})
		case r.URL.Path == "/2/users/42/retweets" && r.Method == http.MethodPost:
			_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]bool{"retweeted": true}})
		case r.URL.Path == "/2/tweets/99" && r.Method == http.MethodDelete:
			_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]bool{"deleted": true}})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	tool, err := xpost.New(testConfig())
	require.NoError(t, err)
	tool.WithBaseURL(server.URL)

	res, err := tool.Run(ctx, &xpost.Request{Action: xpost.ActionLikeTweet, TweetID: "99"})
	require.NoError(t, err)
	assert.Equal(t, "tweet 99 liked", res.Message)

	res, err = tool.Run(ctx, &xpost.Request{Action: xpost.ActionRetweet, TweetID: "99"})
	require.NoError(t, err)
	assert.Equal(t, "tweet 99 retweeted", res.Message)

	res, err = tool.Run(ctx, &xpost.Request{Action: xpost.ActionDeleteTweet, TweetID: "99"})
	require.NoError(t, err)
	assert.Equal(t, "tweet 99 deleted", res.Message)

	// tweet_id is required for all three
	_, err = tool.Run(ctx, &xpost.Request{Action: xpost.ActionLikeTweet})
	assert.True(t, tools.IsArgumentInvalid(err))
}

func Test_GetTrending(t *testing.T) {
	ctx := context.Background()

	tool, err := xpost.New(testConfig())
	require.NoError(t, err)

	res, err := tool.Run(ctx, &xpost.Request{Action: xpost.ActionGetTrending})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Topics)
	assert.Contains(t, res.String(), "#AI")
}

func Test_APIError(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"title":"Too Many Requests"}`))
	}))
	defer server.Close()

	tool, err := xpost.New(testConfig())
	require.NoError(t, err)
	tool.WithBaseURL(server.URL)

	_, err = tool.Run(ctx, &xpost.Request{Action: xpost.ActionPostTweet, Text: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "X API returned 429")
}
