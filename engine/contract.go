package engine

import (
	"context"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// TokenStandard 合约的代币标准
type TokenStandard int

const (
	StandardERC721 TokenStandard = iota
	StandardERC1155
)

func (s TokenStandard) String() string {
	if s == StandardERC1155 {
		return "ERC1155"
	}
	return "ERC721"
}

// contractFunction 方法名或者规范签名 如 balanceOf 或 balanceOf(address,uint256)
var contractFunction = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(\(([a-z0-9\[\],]*)\))?$`)

// CollectionParams 部署 NFT 合集的参数
type CollectionParams struct {
	Name                 string
	Symbol               string
	PrimarySaleRecipient string
}

// ContractWorker 合约相关操作 NFT 所有权 铸造 元数据 部署 通用调用
type ContractWorker struct {
	backend            Backend
	signer             *Transactor
	fetcher            *MetadataFetcher
	collectionBytecode []byte
}

// NewContractWorker bytecodeHex 为空时 deployContract 不可用
func NewContractWorker(backend Backend, signer *Transactor, fetcher *MetadataFetcher, bytecodeHex string) (*ContractWorker, error) {
	var bytecode []byte
	if bytecodeHex = strings.TrimSpace(bytecodeHex); bytecodeHex != "" {
		if !strings.HasPrefix(bytecodeHex, "0x") {
			bytecodeHex = "0x" + bytecodeHex
		}
		b, err := hexutil.Decode(bytecodeHex)
		if err != nil {
			return nil, errors.Wrap(err, "collection bytecode")
		}
		bytecode = b
	}
	if fetcher == nil {
		fetcher = NewMetadataFetcher("")
	}
	return &ContractWorker{
		backend:            backend,
		signer:             signer,
		fetcher:            fetcher,
		collectionBytecode: bytecode,
	}, nil
}

// ensureContract 判断是否是合约地址 不存在 code 直接报错
func (w *ContractWorker) ensureContract(ctx context.Context, address string) (common.Address, error) {
	contract, err := parseAddress(address)
	if err != nil {
		return common.Address{}, err
	}
	byteCode, err := w.backend.CodeAt(ctx, contract, nil)
	if err != nil {
		log.Error().Msgf("ensureContract err is %s ", err.Error())
		return common.Address{}, err
	}
	if len(byteCode) == 0 {
		return common.Address{}, errors.Errorf("no contract deployed at %s", contract.Hex())
	}
	return contract, nil
}

func (w *ContractWorker) supportsInterface(ctx context.Context, contract common.Address, id [4]byte) bool {
	out, err := callContract(ctx, w.backend, contract, erc165ABI, "supportsInterface", id)
	if err != nil {
		return false
	}
	ok, _ := out[0].(bool)
	return ok
}

// TokenStandard 通过 ERC-165 区分单一代币与多代币合约 无法识别时按 721 处理
func (w *ContractWorker) TokenStandard(ctx context.Context, token string) (TokenStandard, error) {
	contract, err := w.ensureContract(ctx, token)
	if err != nil {
		return StandardERC721, err
	}
	if w.supportsInterface(ctx, contract, interfaceERC1155) {
		return StandardERC1155, nil
	}
	return StandardERC721, nil
}

// OwnerOf 721 的持有者地址
func (w *ContractWorker) OwnerOf(ctx context.Context, token string, tokenID *big.Int) (string, error) {
	contract, err := parseAddress(token)
	if err != nil {
		return "", err
	}
	out, err := callContract(ctx, w.backend, contract, erc721ABI, "ownerOf", tokenID)
	if err != nil {
		return "", errors.Wrap(err, "ownerOf")
	}
	owner, _ := out[0].(common.Address)
	return owner.Hex(), nil
}

// BalanceOf721 owner 在 721 合集中持有的数量
func (w *ContractWorker) BalanceOf721(ctx context.Context, token, owner string) (*big.Int, error) {
	contract, err := parseAddress(token)
	if err != nil {
		return nil, err
	}
	account, err := parseAddress(owner)
	if err != nil {
		return nil, err
	}
	out, err := callContract(ctx, w.backend, contract, erc721ABI, "balanceOf", account)
	if err != nil {
		return nil, errors.Wrap(err, "balanceOf")
	}
	balance, _ := out[0].(*big.Int)
	return balance, nil
}

// BalanceOf1155 1155 中 owner 持有 id 的数量
func (w *ContractWorker) BalanceOf1155(ctx context.Context, token, owner string, id *big.Int) (*big.Int, error) {
	contract, err := parseAddress(token)
	if err != nil {
		return nil, err
	}
	account, err := parseAddress(owner)
	if err != nil {
		return nil, err
	}
	out, err := callContract(ctx, w.backend, contract, erc1155ABI, "balanceOf", account, id)
	if err != nil {
		return nil, errors.Wrap(err, "balanceOf")
	}
	balance, _ := out[0].(*big.Int)
	return balance, nil
}

// MintTo 调用 mintTo(address,string) 为 to 铸造一枚 NFT
func (w *ContractWorker) MintTo(ctx context.Context, token, to string, meta NFTMetadata) (string, error) {
	contract, err := w.ensureContract(ctx, token)
	if err != nil {
		return "", err
	}
	receiver, err := parseAddress(to)
	if err != nil {
		return "", err
	}
	uri, err := meta.DataURI()
	if err != nil {
		return "", err
	}
	data, err := erc721ABI.Pack("mintTo", receiver, uri)
	if err != nil {
		return "", err
	}
	tx, err := w.signer.Send(ctx, &contract, nil, data)
	if err != nil {
		log.Error().Msgf("MintTo err is %s ", err.Error())
		return "", err
	}
	return tx.Hash().Hex(), nil
}

// ContractMetadata 合约级元数据 链上字段加上 contractURI 指向的 JSON
func (w *ContractWorker) ContractMetadata(ctx context.Context, token string) (map[string]interface{}, error) {
	contract, err := w.ensureContract(ctx, token)
	if err != nil {
		return nil, err
	}
	meta := make(map[string]interface{})
	for _, method := range []string{"name", "symbol", "decimals", "totalSupply", "owner"} {
		out, err := callContract(ctx, w.backend, contract, metadataABI, method)
		if err != nil {
			continue
		}
		meta[method] = formatOutputs(out)
	}

	if out, err := callContract(ctx, w.backend, contract, metadataABI, "contractURI"); err == nil {
		if uri, _ := out[0].(string); uri != "" {
			extra, err := w.fetcher.Fetch(ctx, uri)
			if err != nil {
				log.Warn().Msgf("ContractMetadata fetch %s err is %s ", uri, err.Error())
			}
			for k, v := range extra {
				if _, ok := meta[k]; !ok {
					meta[k] = v
				}
			}
		}
	}

	if len(meta) == 0 {
		return nil, errors.Errorf("no metadata available for %s", contract.Hex())
	}
	meta["address"] = contract.Hex()
	return meta, nil
}

// NFTMetadata 单个 NFT 的元数据 以及持有者和标准
func (w *ContractWorker) NFTMetadata(ctx context.Context, token string, tokenID *big.Int) (map[string]interface{}, error) {
	standard, err := w.TokenStandard(ctx, token)
	if err != nil {
		return nil, err
	}
	contract := common.HexToAddress(token)

	result := map[string]interface{}{
		"type": standard.String(),
	}
	var uri string
	if standard == StandardERC1155 {
		out, err := callContract(ctx, w.backend, contract, erc1155ABI, "uri", tokenID)
		if err != nil {
			return nil, errors.Wrap(err, "uri")
		}
		uri, _ = out[0].(string)
		// 1155 的 {id} 占位符为 64 位小写十六进制
		uri = strings.ReplaceAll(uri, "{id}", fmt.Sprintf("%064x", tokenID))
		if out, err := callContract(ctx, w.backend, contract, erc1155ABI, "totalSupply", tokenID); err == nil {
			result["supply"] = formatOutputs(out)
		}
	} else {
		out, err := callContract(ctx, w.backend, contract, erc721ABI, "tokenURI", tokenID)
		if err != nil {
			return nil, errors.Wrap(err, "tokenURI")
		}
		uri, _ = out[0].(string)
		if owner, err := w.OwnerOf(ctx, token, tokenID); err == nil {
			result["owner"] = owner
		}
		result["supply"] = "1"
	}

	meta := map[string]interface{}{}
	if uri != "" {
		fetched, err := w.fetcher.Fetch(ctx, uri)
		if err != nil {
			return nil, err
		}
		meta = fetched
	}
	meta["id"] = tokenID.String()
	meta["uri"] = uri
	result["metadata"] = meta
	return result, nil
}

// DeployCollection 部署 NFT 合集 合约地址由签名者地址和 nonce 推导
func (w *ContractWorker) DeployCollection(ctx context.Context, p CollectionParams) (string, error) {
	if len(w.collectionBytecode) == 0 {
		return "", errors.New("collection bytecode not configured: set COLLECTION_BYTECODE")
	}
	recipient, err := parseAddress(p.PrimarySaleRecipient)
	if err != nil {
		return "", err
	}
	args, err := collectionABI.Pack("", p.Name, p.Symbol, recipient)
	if err != nil {
		return "", err
	}
	data := append(append([]byte{}, w.collectionBytecode...), args...)
	tx, err := w.signer.Send(ctx, nil, nil, data)
	if err != nil {
		log.Error().Msgf("DeployCollection err is %s ", err.Error())
		return "", err
	}
	return crypto.CreateAddress(w.signer.Address(), tx.Nonce()).Hex(), nil
}

// Call 通用合约调用 不校验方法是否存在 参数按 ABI 转换
// 已知方法中只读的走 eth_call 其余由签名者发交易并返回交易 hash
// 传入规范签名或未知方法名时按只读调用处理 返回原始十六进制结果 未知方法的签名由参数推断
func (w *ContractWorker) Call(ctx context.Context, token, function string, args []interface{}) (interface{}, error) {
	match := contractFunction.FindStringSubmatch(strings.TrimSpace(function))
	if match == nil {
		return nil, errors.Errorf("invalid contract function %q", function)
	}
	contract, err := w.ensureContract(ctx, token)
	if err != nil {
		return nil, err
	}
	if match[2] != "" {
		return w.callSignature(ctx, contract, match[1], match[3], args)
	}

	method, ok := lookupMethod(match[1], len(args))
	if !ok {
		typeList, err := inferTypes(args)
		if err != nil {
			return nil, err
		}
		return w.callSignature(ctx, contract, match[1], typeList, args)
	}
	params, err := coerceArgs(method.Inputs, args)
	if err != nil {
		return nil, err
	}
	input, err := method.Inputs.Pack(params...)
	if err != nil {
		return nil, err
	}
	data := append(append([]byte{}, method.ID...), input...)

	if !method.IsConstant() {
		tx, err := w.signer.Send(ctx, &contract, nil, data)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"transactionHash": tx.Hash().Hex()}, nil
	}

	output, err := w.backend.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	out, err := method.Outputs.Unpack(output)
	if err != nil {
		return nil, err
	}
	return formatOutputs(out), nil
}

func (w *ContractWorker) callSignature(ctx context.Context, contract common.Address, name, typeList string, args []interface{}) (interface{}, error) {
	var inputs abi.Arguments
	if typeList != "" {
		for _, typ := range strings.Split(typeList, ",") {
			t, err := abi.NewType(typ, "", nil)
			if err != nil {
				return nil, errors.Wrapf(err, "argument type %q", typ)
			}
			inputs = append(inputs, abi.Argument{Type: t})
		}
	}
	params, err := coerceArgs(inputs, args)
	if err != nil {
		return nil, err
	}
	input, err := inputs.Pack(params...)
	if err != nil {
		return nil, err
	}
	selector := crypto.Keccak256([]byte(name + "(" + typeList + ")"))[:4]
	output, err := w.backend.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: append(selector, input...),
	}, nil)
	if err != nil {
		return nil, err
	}
	return hexutil.Encode(output), nil
}
