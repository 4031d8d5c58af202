package engine

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrNoSigner 未配置私钥时 所有上链操作都会返回该错误
var ErrNoSigner = errors.New("signer not configured: set PRIVATE_KEY")

// Backend 节点能力 *ethclient.Client 和模拟链都满足
type Backend interface {
	bind.ContractBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Transactor 进程内唯一的签名者 持有私钥并串行分配 nonce
type Transactor struct {
	backend   Backend
	key       *ecdsa.PrivateKey
	from      common.Address
	chainID   *big.Int
	nonceLock sync.Mutex
}

// NewTransactor 根据十六进制私钥创建签名者 私钥为空时返回 nil
func NewTransactor(backend Backend, privateKeyStr string, chainID *big.Int) (*Transactor, error) {
	privateKeyStr = strings.TrimPrefix(strings.TrimSpace(privateKeyStr), "0x")
	if privateKeyStr == "" {
		return nil, nil
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, errors.New("chain id is required for signing")
	}
	privateKey, err := crypto.HexToECDSA(privateKeyStr)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}
	return &Transactor{
		backend: backend,
		key:     privateKey,
		from:    crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID: chainID,
	}, nil
}

// Address 签名者地址
func (t *Transactor) Address() common.Address {
	if t == nil {
		return common.Address{}
	}
	return t.from
}

// Send 构建 EIP-1559 交易 签名并广播 to 为空表示部署合约
func (t *Transactor) Send(ctx context.Context, to *common.Address, value *big.Int, data []byte) (*ethTypes.Transaction, error) {
	if t == nil {
		return nil, ErrNoSigner
	}
	if value == nil {
		value = new(big.Int)
	}

	gasLimit, err := t.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  t.from,
		To:    to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		log.Error().Msgf("EstimateGas err is %s ", err.Error())
		return nil, errors.Wrap(err, "estimate gas")
	}
	// 合约调用预估偏紧 留出余量
	if len(data) > 0 {
		gasLimit += gasLimit / 5
	}

	gasTip, err := t.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "suggest gas tip")
	}
	head, err := t.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "latest header")
	}
	var gasFeeCap *big.Int
	if head.BaseFee != nil {
		// 最高 gas 费 = 2 * baseFee + 小费
		gasFeeCap = new(big.Int).Add(gasTip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	} else {
		gasFeeCap, err = t.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "suggest gas price")
		}
	}

	// 解决 nonce 竞争问题
	t.nonceLock.Lock()
	defer t.nonceLock.Unlock()
	nonce, err := t.backend.PendingNonceAt(ctx, t.from)
	if err != nil {
		return nil, errors.Wrap(err, "pending nonce")
	}

	tx := ethTypes.NewTx(&ethTypes.DynamicFeeTx{
		ChainID:   t.chainID,
		Nonce:     nonce,
		GasTipCap: gasTip,
		GasFeeCap: gasFeeCap,
		Gas:       gasLimit,
		To:        to,
		Value:     value,
		Data:      data,
	})

	// 签名
	signTx, err := ethTypes.SignTx(tx, ethTypes.LatestSignerForChainID(t.chainID), t.key)
	if err != nil {
		return nil, errors.Wrap(err, "sign transaction")
	}
	if err = t.backend.SendTransaction(ctx, signTx); err != nil {
		return nil, err
	}
	log.Info().Msgf("Send tx %s nonce %d gas %d ", signTx.Hash().Hex(), nonce, gasLimit)
	return signTx, nil
}
