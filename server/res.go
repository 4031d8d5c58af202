package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmxdawn/chainconsole/engine"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Envelope 统一的返回结构 Success 只由 Error 推导
type Envelope struct {
	Success   bool        `json:"success"`             // 是否成功
	Data      interface{} `json:"data,omitempty"`      // 成功时返回的对象
	Error     string      `json:"error,omitempty"`     // 错误信息
	Code      string      `json:"code,omitempty"`      // 错误分类
	Timestamp string      `json:"timestamp"`           // ISO-8601 UTC 毫秒
	RequestID string      `json:"requestId,omitempty"` // 请求 ID
}

// NewEnvelope 有错误时丢弃 data
func NewEnvelope(requestID string, data interface{}, errMsg, code string) Envelope {
	env := Envelope{
		Success:   errMsg == "",
		Timestamp: time.Now().UTC().Format(timestampLayout),
		RequestID: requestID,
	}
	if env.Success {
		env.Data = data
	} else {
		env.Error = errMsg
		env.Code = code
	}
	return env
}

func resultEnvelope(requestID string, res engine.Result) Envelope {
	return NewEnvelope(requestID, res.Data, res.Error, res.Code)
}

// APIResponse 根据 err 决定 http 状态码
func APIResponse(c *gin.Context, err error, data interface{}) {
	status, code, message := DecodeErr(err)
	c.JSON(status, NewEnvelope(requestID(c), data, message, code))
}

// StatusRes 健康检查
type StatusRes struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Timestamp   string `json:"timestamp"`
}

// TransactionsRes 交易记录
type TransactionsRes struct {
	Transactions interface{} `json:"transactions"`
}

// ActionStats 每个操作的成功失败次数
type ActionStats struct {
	Success int64 `json:"success"`
	Error   int64 `json:"error"`
}
