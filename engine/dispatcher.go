package engine

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/lmxdawn/chainconsole/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// 结果中的错误分类
const (
	CodeUnknownAction   = "UnknownAction"
	CodeInvalidArgument = "InvalidArgument"
	CodeExternalCall    = "ExternalCallError"
)

// ChainClient 链上基础能力 由 ChainWorker 实现
type ChainClient interface {
	GetBalance(ctx context.Context, address string) (*big.Int, error)
	LookupAddress(ctx context.Context, address string) (string, bool, error)
	SendTransaction(ctx context.Context, to string, value *big.Int) (string, error)
}

// ContractClient 合约能力 由 ContractWorker 实现
type ContractClient interface {
	TokenStandard(ctx context.Context, token string) (TokenStandard, error)
	BalanceOf721(ctx context.Context, token, owner string) (*big.Int, error)
	BalanceOf1155(ctx context.Context, token, owner string, id *big.Int) (*big.Int, error)
	MintTo(ctx context.Context, token, to string, meta NFTMetadata) (string, error)
	ContractMetadata(ctx context.Context, token string) (map[string]interface{}, error)
	NFTMetadata(ctx context.Context, token string, tokenID *big.Int) (map[string]interface{}, error)
	DeployCollection(ctx context.Context, p CollectionParams) (string, error)
	Call(ctx context.Context, token, function string, args []interface{}) (interface{}, error)
}

// Options 固定的铸造元数据和合集参数
type Options struct {
	MintMetadata     NFTMetadata
	CollectionName   string
	CollectionSymbol string
}

// DefaultOptions 未配置时使用的默认值
func DefaultOptions() Options {
	return Options{
		MintMetadata: NFTMetadata{
			Name:        "Serum NFT",
			Description: "Issued by Adam.",
		},
		CollectionName:   "Serum Collection",
		CollectionSymbol: "S3",
	}
}

// Result 分发结果 Error 为空即成功
type Result struct {
	Data  interface{}
	Error string
	Code  string
}

func (r Result) Success() bool {
	return r.Error == ""
}

type BalanceData struct {
	Balance string `json:"balance"`
}

type OwnershipData struct {
	OwnsNFT bool `json:"ownsNFT"`
}

type TransactionData struct {
	TransactionHash string `json:"transactionHash"`
}

type DeployData struct {
	ContractAddress string `json:"contractAddress"`
}

type ENSData struct {
	ENS *string `json:"ens"`
}

type ProposalsData struct {
	Proposals interface{} `json:"proposals"`
}

type CallData struct {
	Result interface{} `json:"result"`
}

// argumentError 请求字段无法解析 区别于外部调用失败
type argumentError struct {
	msg string
}

func (e *argumentError) Error() string {
	return e.msg
}

// requiredFields 每个操作必须的字段 使用 JSON 字段名
var requiredFields = map[types.Action][]string{
	types.CheckBalance:         {"walletAddress"},
	types.CheckNFT:             {"tokenAddress", "walletAddress", "tokenId"},
	types.MintNFT:              {"tokenAddress", "walletAddress"},
	types.SendTransaction:      {"receiver", "amount"},
	types.GetTokenMetadata:     {"tokenAddress"},
	types.GetNFTMetadata:       {"tokenAddress", "tokenId"},
	types.DeployContract:       {"walletAddress"},
	types.GetENS:               {"walletAddress"},
	types.GetDAOVotes:          {"tokenAddress"},
	types.CallContractFunction: {"tokenAddress", "contractFunction"},
}

func fieldValue(req types.ActionRequest, field string) string {
	switch field {
	case "walletAddress":
		return req.WalletAddress
	case "tokenAddress":
		return req.TokenAddress
	case "tokenId":
		return req.TokenID.String()
	case "receiver":
		return req.Receiver
	case "amount":
		return req.Amount.String()
	case "contractFunction":
		return req.ContractFunction
	}
	return ""
}

// Dispatcher 无状态的操作分发 每次调用只委托一次链上客户端
type Dispatcher struct {
	chain     ChainClient
	contracts ContractClient
	opts      Options
}

func NewDispatcher(chain ChainClient, contracts ContractClient, opts Options) *Dispatcher {
	defaults := DefaultOptions()
	if opts.MintMetadata.Name == "" {
		opts.MintMetadata = defaults.MintMetadata
	}
	if opts.CollectionName == "" {
		opts.CollectionName = defaults.CollectionName
	}
	if opts.CollectionSymbol == "" {
		opts.CollectionSymbol = defaults.CollectionSymbol
	}
	return &Dispatcher{
		chain:     chain,
		contracts: contracts,
		opts:      opts,
	}
}

// Dispatch 执行一个操作 所有失败都转换为 Result.Error 不会向外抛出
func (d *Dispatcher) Dispatch(ctx context.Context, req types.ActionRequest) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Dispatch %s panic is %v ", req.Action, r)
			res = Result{Error: fmt.Sprint(r), Code: CodeExternalCall}
		}
	}()

	if !req.Action.Valid() {
		return Result{Error: fmt.Sprintf("Unknown action: %s", req.Action), Code: CodeUnknownAction}
	}
	for _, field := range requiredFields[req.Action] {
		if strings.TrimSpace(fieldValue(req, field)) == "" {
			return Result{Error: "missing required field: " + field, Code: CodeInvalidArgument}
		}
	}

	data, err := d.run(ctx, req)
	if err != nil {
		log.Error().Str("action", string(req.Action)).Msgf("Blockchain Error err is %s ", err.Error())
		msg := err.Error()
		if msg == "" {
			msg = "An unexpected error occurred."
		}
		var argErr *argumentError
		if errors.As(err, &argErr) {
			return Result{Error: msg, Code: CodeInvalidArgument}
		}
		return Result{Error: msg, Code: CodeExternalCall}
	}
	return Result{Data: data}
}

func (d *Dispatcher) run(ctx context.Context, req types.ActionRequest) (interface{}, error) {
	switch req.Action {
	case types.CheckBalance:
		balance, err := d.chain.GetBalance(ctx, req.WalletAddress)
		if err != nil {
			return nil, err
		}
		return BalanceData{Balance: FormatEther(balance)}, nil

	case types.CheckNFT:
		tokenID, err := parseTokenID(req.TokenID)
		if err != nil {
			return nil, err
		}
		standard, err := d.contracts.TokenStandard(ctx, req.TokenAddress)
		if err != nil {
			return nil, err
		}
		if standard == StandardERC1155 {
			balance, err := d.contracts.BalanceOf1155(ctx, req.TokenAddress, req.WalletAddress, tokenID)
			if err != nil {
				return nil, err
			}
			return OwnershipData{OwnsNFT: balance != nil && balance.Sign() > 0}, nil
		}
		// 721 只看钱包在合集中的持有数量 不校验具体 tokenId
		balance, err := d.contracts.BalanceOf721(ctx, req.TokenAddress, req.WalletAddress)
		if err != nil {
			return nil, err
		}
		return OwnershipData{OwnsNFT: balance != nil && balance.Sign() > 0}, nil

	case types.MintNFT:
		hash, err := d.contracts.MintTo(ctx, req.TokenAddress, req.WalletAddress, d.opts.MintMetadata)
		if err != nil {
			return nil, err
		}
		return TransactionData{TransactionHash: hash}, nil

	case types.SendTransaction:
		value, err := ParseEther(req.Amount.String())
		if err != nil {
			return nil, &argumentError{msg: err.Error()}
		}
		hash, err := d.chain.SendTransaction(ctx, req.Receiver, value)
		if err != nil {
			return nil, err
		}
		return TransactionData{TransactionHash: hash}, nil

	case types.GetTokenMetadata:
		return d.contracts.ContractMetadata(ctx, req.TokenAddress)

	case types.GetNFTMetadata:
		tokenID, err := parseTokenID(req.TokenID)
		if err != nil {
			return nil, err
		}
		return d.contracts.NFTMetadata(ctx, req.TokenAddress, tokenID)

	case types.DeployContract:
		address, err := d.contracts.DeployCollection(ctx, CollectionParams{
			Name:                 d.opts.CollectionName,
			Symbol:               d.opts.CollectionSymbol,
			PrimarySaleRecipient: req.WalletAddress,
		})
		if err != nil {
			return nil, err
		}
		return DeployData{ContractAddress: address}, nil

	case types.GetENS:
		name, found, err := d.chain.LookupAddress(ctx, req.WalletAddress)
		if err != nil {
			return nil, err
		}
		if !found {
			return ENSData{}, nil
		}
		return ENSData{ENS: &name}, nil

	case types.GetDAOVotes:
		proposals, err := d.contracts.Call(ctx, req.TokenAddress, "getAllProposals", nil)
		if err != nil {
			return nil, err
		}
		return ProposalsData{Proposals: proposals}, nil

	case types.CallContractFunction:
		args := req.FunctionArgs
		if args == nil {
			args = []interface{}{}
		}
		result, err := d.contracts.Call(ctx, req.TokenAddress, req.ContractFunction, args)
		if err != nil {
			return nil, err
		}
		return CallData{Result: result}, nil
	}
	return nil, errors.Errorf("Unknown action: %s", req.Action)
}

func parseTokenID(id types.FlexString) (*big.Int, error) {
	n, err := parseBigInt(id.String())
	if err != nil || n.Sign() < 0 {
		return nil, &argumentError{msg: fmt.Sprintf("invalid tokenId %q", id)}
	}
	return n, nil
}
