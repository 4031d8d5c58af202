package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const DefaultIPFSGateway = "https://ipfs.io/ipfs/"

// NFTMetadata 铸造时写入的元数据
type NFTMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// DataURI 元数据直接编码为 data URI 不依赖外部存储
func (m NFTMetadata) DataURI() (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// MetadataFetcher 拉取 tokenURI/contractURI 指向的 JSON
type MetadataFetcher struct {
	client  *resty.Client
	gateway string
}

func NewMetadataFetcher(gateway string) *MetadataFetcher {
	if gateway == "" {
		gateway = DefaultIPFSGateway
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	return &MetadataFetcher{
		client:  resty.New().SetTimeout(15 * time.Second),
		gateway: gateway,
	}
}

// Resolve ipfs:// 转换为网关地址
func (f *MetadataFetcher) Resolve(uri string) string {
	if strings.HasPrefix(uri, "ipfs://") {
		path := strings.TrimPrefix(uri, "ipfs://")
		path = strings.TrimPrefix(path, "ipfs/")
		return f.gateway + path
	}
	return uri
}

// Fetch 支持 data: http(s): ipfs: 三种 URI
func (f *MetadataFetcher) Fetch(ctx context.Context, uri string) (map[string]interface{}, error) {
	var raw []byte
	switch {
	case strings.HasPrefix(uri, "data:"):
		body, err := decodeDataURI(uri)
		if err != nil {
			return nil, err
		}
		raw = body
	default:
		target := f.Resolve(uri)
		if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
			return nil, errors.Errorf("unsupported metadata uri %q", uri)
		}
		resp, err := f.client.R().
			SetContext(ctx).
			SetHeader("Accept", "application/json").
			Get(target)
		if err != nil {
			return nil, errors.Wrap(err, "fetch metadata")
		}
		if resp.IsError() {
			return nil, errors.Errorf("fetch metadata: %s returned %s", target, resp.Status())
		}
		raw = resp.Body()
	}

	meta := make(map[string]interface{})
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, errors.Wrap(err, "decode metadata")
	}
	return meta, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, errors.New("malformed data uri")
	}
	header, payload := uri[len("data:"):comma], uri[comma+1:]
	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}
