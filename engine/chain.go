package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultENSRegistry 主网 ENS 注册表地址
const DefaultENSRegistry = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

var errEmptyReturn = errors.New("empty return data")

// ChainWorker 链上基础能力 余额 ENS 原生币转账
type ChainWorker struct {
	backend     Backend
	signer      *Transactor
	ensRegistry common.Address
}

// NewChainWorker 新建链上 worker signer 为空时只能做只读操作
func NewChainWorker(backend Backend, signer *Transactor, ensRegistry string) (*ChainWorker, error) {
	if ensRegistry == "" {
		ensRegistry = DefaultENSRegistry
	}
	registry, err := parseAddress(ensRegistry)
	if err != nil {
		return nil, errors.Wrap(err, "ens registry")
	}
	return &ChainWorker{
		backend:     backend,
		signer:      signer,
		ensRegistry: registry,
	}, nil
}

// GetBalance 获取原生币余额 单位 wei
func (w *ChainWorker) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	account, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	balance, err := w.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		log.Error().Msgf("GetBalance err is %s ", err.Error())
		return nil, err
	}
	return balance, nil
}

// SendTransaction 由签名者向 to 转 value wei 返回交易 hash
func (w *ChainWorker) SendTransaction(ctx context.Context, to string, value *big.Int) (string, error) {
	toAddress, err := parseAddress(to)
	if err != nil {
		return "", err
	}
	tx, err := w.signer.Send(ctx, &toAddress, value, nil)
	if err != nil {
		log.Error().Msgf("SendTransaction err is %s ", err.Error())
		return "", err
	}
	return tx.Hash().Hex(), nil
}

// parseAddress 校验十六进制地址 HexToAddress 本身不会报错
func parseAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, errors.Errorf("invalid address %q", address)
	}
	return common.HexToAddress(address), nil
}

// callContract 调用合约只读方法 不上链
func callContract(ctx context.Context, backend Backend, contract common.Address, parsed abi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	input, err := parsed.Pack(method, params...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	output, err := backend.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: input,
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(output) == 0 {
		return nil, errEmptyReturn
	}
	return parsed.Unpack(method, output)
}
