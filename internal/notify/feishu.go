package notify

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

// FeishuConfig 飞书机器人配置，ReceiveIDType 为 chat_id/open_id/user_id/email 之一
type FeishuConfig struct {
	AppID         string `mapstructure:"app_id" yaml:"app_id"`
	AppSecret     string `mapstructure:"app_secret" yaml:"app_secret"`
	ReceiveID     string `mapstructure:"receive_id" yaml:"receive_id"`
	ReceiveIDType string `mapstructure:"receive_id_type" yaml:"receive_id_type"`
}

// Enabled 三项都配置了才发送飞书消息
func (c FeishuConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != "" && c.ReceiveID != ""
}

// FeishuSink 通过飞书 IM 发送文本消息
type FeishuSink struct {
	cfg    FeishuConfig
	client *lark.Client
}

func NewFeishuSink(cfg FeishuConfig, opts ...lark.ClientOptionFunc) (*FeishuSink, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("feishu 配置不完整，请设置 feishu.app_id、feishu.app_secret 和 feishu.receive_id")
	}
	if cfg.ReceiveIDType == "" {
		cfg.ReceiveIDType = larkim.ReceiveIdTypeChatId
	}
	return &FeishuSink{
		cfg:    cfg,
		client: lark.NewClient(cfg.AppID, cfg.AppSecret, opts...),
	}, nil
}

func (s *FeishuSink) Notify(ctx context.Context, title, body string) error {
	content, err := textContent(title, body)
	if err != nil {
		return err
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(s.cfg.ReceiveIDType).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(s.cfg.ReceiveID).
			MsgType(larkim.MsgTypeText).
			Content(content).
			Build()).
		Build()

	resp, err := s.client.Im.V1.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("发送飞书消息失败: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("发送飞书消息失败: logId=%s, error=%s",
			resp.RequestId(), larkcore.Prettify(resp.CodeError))
	}
	return nil
}

func textContent(title, body string) (string, error) {
	data, err := json.Marshal(map[string]string{"text": title + "\n" + body})
	if err != nil {
		return "", fmt.Errorf("marshal message error: %w", err)
	}
	return string(data), nil
}
