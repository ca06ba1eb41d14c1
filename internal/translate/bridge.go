package translate

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Bridge talks to the local translation engine daemon over HTTP. The
// engine itself (model loading, inference) lives outside this
// process.
type Bridge struct {
	client *resty.Client
}

func NewBridge(engineURL string) *Bridge {
	return &Bridge{client: resty.New().SetBaseURL(engineURL)}
}

type bridgeRequest struct {
	Text string `json:"text"`
	From string `json:"from"`
	To   string `json:"to"`
}

type bridgeResponse struct {
	Text string `json:"text"`
}

var _ Translator = (*Bridge)(nil)

func (b *Bridge) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	var out bridgeResponse
	res, err := b.client.R().
		SetContext(ctx).
		SetBody(bridgeRequest{Text: text, From: fromLang, To: toLang}).
		SetResult(&out).
		Post("/translate")
	if err != nil {
		return "", fmt.Errorf("translation engine request: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("translation engine returned %s", res.Status())
	}
	return out.Text, nil
}
