package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSink(t *testing.T) {
	var s Sink = NewLogSink()
	assert.NoError(t, s.Notify(context.Background(), "ArxivBrowser", "refreshed"))
}

func TestSinkFunc(t *testing.T) {
	var got string
	var s Sink = SinkFunc(func(ctx context.Context, title, body string) error {
		got = title + "|" + body
		return nil
	})
	require.NoError(t, s.Notify(context.Background(), "t", "b"))
	assert.Equal(t, "t|b", got)
}

func TestFeishuConfig(t *testing.T) {
	assert.False(t, FeishuConfig{}.Enabled())
	assert.False(t, FeishuConfig{AppID: "a", AppSecret: "s"}.Enabled())
	assert.True(t, FeishuConfig{AppID: "a", AppSecret: "s", ReceiveID: "oc_1"}.Enabled())

	_, err := NewFeishuSink(FeishuConfig{AppID: "a"})
	assert.Error(t, err)

	sink, err := NewFeishuSink(FeishuConfig{AppID: "a", AppSecret: "s", ReceiveID: "oc_1"})
	require.NoError(t, err)
	assert.Equal(t, "chat_id", sink.cfg.ReceiveIDType)
}

func TestTextContent(t *testing.T) {
	content, err := textContent("标题", "内容 <b>")
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(content), &decoded))
	assert.Equal(t, "标题\n内容 <b>", decoded["text"])
}

// fakeOpenAPI 模拟飞书开放平台的 token 和发消息接口
type fakeOpenAPI struct {
	mu       sync.Mutex
	messages []map[string]any
	query    string
	code     int
}

func (f *fakeOpenAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.Contains(r.URL.Path, "tenant_access_token"):
		io.WriteString(w, `{"code":0,"msg":"ok","tenant_access_token":"t-test","expire":7200}`)
	case strings.HasSuffix(r.URL.Path, "/im/v1/messages"):
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.messages = append(f.messages, body)
		f.query = r.URL.RawQuery
		code := f.code
		f.mu.Unlock()
		if code != 0 {
			w.Header().Set("X-Tt-Logid", "log-1")
			io.WriteString(w, `{"code":230001,"msg":"invalid receive_id"}`)
			return
		}
		io.WriteString(w, `{"code":0,"msg":"success","data":{"message_id":"om_1"}}`)
	default:
		http.NotFound(w, r)
	}
}

func TestFeishuSinkNotify(t *testing.T) {
	api := &fakeOpenAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	sink, err := NewFeishuSink(
		FeishuConfig{AppID: "cli_a", AppSecret: "secret", ReceiveID: "oc_1"},
		lark.WithOpenBaseUrl(srv.URL),
	)
	require.NoError(t, err)

	require.NoError(t, sink.Notify(context.Background(), "ArxivBrowser", "Latest 已更新"))

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.messages, 1)
	msg := api.messages[0]
	assert.Equal(t, "oc_1", msg["receive_id"])
	assert.Equal(t, "text", msg["msg_type"])
	assert.Contains(t, msg["content"], "Latest 已更新")
	assert.Contains(t, api.query, "receive_id_type=chat_id")
}

func TestFeishuSinkAPIError(t *testing.T) {
	api := &fakeOpenAPI{code: 230001}
	srv := httptest.NewServer(api)
	defer srv.Close()

	sink, err := NewFeishuSink(
		FeishuConfig{AppID: "cli_b", AppSecret: "secret", ReceiveID: "bad"},
		lark.WithOpenBaseUrl(srv.URL),
	)
	require.NoError(t, err)

	err = sink.Notify(context.Background(), "t", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "230001")
}
