package engine

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// namehash EIP-137 域名哈希
func namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256Hash(node.Bytes(), labelHash)
	}
	return node
}

// LookupAddress 反向解析 地址 -> ENS 名称 并正向校验名称仍指向该地址
func (w *ChainWorker) LookupAddress(ctx context.Context, address string) (string, bool, error) {
	account, err := parseAddress(address)
	if err != nil {
		return "", false, err
	}

	reverseNode := namehash(strings.ToLower(account.Hex()[2:]) + ".addr.reverse")
	resolver, err := w.resolver(ctx, reverseNode)
	if err != nil || resolver == (common.Address{}) {
		return "", false, err
	}
	out, err := callContract(ctx, w.backend, resolver, ensResolverABI, "name", [32]byte(reverseNode))
	if err == errEmptyReturn {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "ens name")
	}
	name, _ := out[0].(string)
	if name == "" {
		return "", false, nil
	}

	forwardNode := namehash(name)
	forwardResolver, err := w.resolver(ctx, forwardNode)
	if err != nil || forwardResolver == (common.Address{}) {
		return "", false, err
	}
	out, err = callContract(ctx, w.backend, forwardResolver, ensResolverABI, "addr", [32]byte(forwardNode))
	if err == errEmptyReturn {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "ens addr")
	}
	if resolved, ok := out[0].(common.Address); !ok || resolved != account {
		return "", false, nil
	}
	return name, true, nil
}

func (w *ChainWorker) resolver(ctx context.Context, node common.Hash) (common.Address, error) {
	out, err := callContract(ctx, w.backend, w.ensRegistry, ensRegistryABI, "resolver", [32]byte(node))
	if err == errEmptyReturn {
		// 当前网络没有部署 ENS
		return common.Address{}, nil
	}
	if err != nil {
		return common.Address{}, errors.Wrap(err, "ens resolver")
	}
	resolver, _ := out[0].(common.Address)
	return resolver, nil
}
