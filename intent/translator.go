package intent

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lmxdawn/chainconsole/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultModel   = "gpt-3.5-turbo"
	DefaultBaseURL = "https://api.openai.com/v1"
)

// ErrNotConfigured 未配置 api key
var ErrNotConfigured = errors.New("ai translator not configured: set OPENAI_API_KEY")

const systemPrompt = `You are a developer assistant for a blockchain console. Based on the user prompt, return a JSON with the following format:

{
  "action": "checkBalance",
  "walletAddress": "0x...",
  "tokenAddress": "",
  "tokenId": "",
  "receiver": "",
  "amount": "",
  "contractFunction": "",
  "functionArgs": []
}

Only return valid actions from this list:
["checkBalance", "checkNFT", "mintNFT", "sendTransaction", "getTokenMetadata", "getNFTMetadata", "deployContract", "getENS", "getDAOVotes", "callContractFunction"]`

// Translator 将自然语言转换成 ActionRequest
type Translator interface {
	Translate(ctx context.Context, text string) (types.ActionRequest, error)
}

// Options OpenAI 兼容接口配置
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAI chat completions 接口 只调用一次 不做重试
type OpenAI struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	model   string
}

func NewOpenAI(opts Options) *OpenAI {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	return &OpenAI{
		client:  resty.New().SetTimeout(60 * time.Second),
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		model:   opts.Model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *OpenAI) Translate(ctx context.Context, text string) (types.ActionRequest, error) {
	var req types.ActionRequest
	if o.apiKey == "" {
		return req, ErrNotConfigured
	}

	var res chatResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetAuthToken(o.apiKey).
		SetBody(chatRequest{
			Model: o.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: text},
			},
		}).
		SetResult(&res).
		SetError(&res).
		Post(o.baseURL + "/chat/completions")
	if err != nil {
		log.Error().Msgf("AI Error err is %s ", err.Error())
		return req, errors.Wrap(err, "chat completion")
	}
	if resp.IsError() {
		if res.Error != nil && res.Error.Message != "" {
			return req, errors.New(res.Error.Message)
		}
		return req, errors.Errorf("chat completion: %s", resp.Status())
	}
	if len(res.Choices) == 0 {
		return req, errors.New("chat completion returned no choices")
	}
	return Parse(res.Choices[0].Message.Content)
}

// Parse 解析模型返回的 JSON 允许包裹在 markdown 代码块中
func Parse(content string) (types.ActionRequest, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	req, err := types.DecodeActionRequest([]byte(content))
	if err != nil {
		return req, errors.Wrap(err, "model returned invalid JSON")
	}
	return req, nil
}
