package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Action 控制台支持的链上操作
type Action string

const (
	CheckBalance         Action = "checkBalance"
	CheckNFT             Action = "checkNFT"
	MintNFT              Action = "mintNFT"
	SendTransaction      Action = "sendTransaction"
	GetTokenMetadata     Action = "getTokenMetadata"
	GetNFTMetadata       Action = "getNFTMetadata"
	DeployContract       Action = "deployContract"
	GetENS               Action = "getENS"
	GetDAOVotes          Action = "getDAOVotes"
	CallContractFunction Action = "callContractFunction"
)

// Actions 所有支持的操作 顺序与提示词中的列表一致
var Actions = []Action{
	CheckBalance,
	CheckNFT,
	MintNFT,
	SendTransaction,
	GetTokenMetadata,
	GetNFTMetadata,
	DeployContract,
	GetENS,
	GetDAOVotes,
	CallContractFunction,
}

// Valid 是否为支持的操作
func (a Action) Valid() bool {
	for _, v := range Actions {
		if v == a {
			return true
		}
	}
	return false
}

// Mutating 会改变链上状态的操作
func (a Action) Mutating() bool {
	switch a {
	case MintNFT, SendTransaction, DeployContract:
		return true
	}
	return false
}

// FlexString 兼容 JSON 字符串和数字 tokenId 和 amount 两种写法都会出现
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// ActionRequest 统一的操作请求 由前端或者 AI 翻译产生
type ActionRequest struct {
	Action           Action        `json:"action" binding:"required"`
	WalletAddress    string        `json:"walletAddress"`
	TokenAddress     string        `json:"tokenAddress"`
	TokenID          FlexString    `json:"tokenId"`
	Receiver         string        `json:"receiver"`
	Amount           FlexString    `json:"amount"`
	ContractFunction string        `json:"contractFunction"`
	FunctionArgs     []interface{} `json:"functionArgs"`
}

// DecodeActionRequest 解析操作请求 数字按 json.Number 保留 大整数参数不丢精度
func DecodeActionRequest(data []byte) (ActionRequest, error) {
	var req ActionRequest
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	err := dec.Decode(&req)
	return req, err
}
