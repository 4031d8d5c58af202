package engine

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/lmxdawn/chainconsole/types"
	"github.com/rs/zerolog/log"
)

// ReceiptReader 交易回执查询 ethclient 和模拟链都满足
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethTypes.Receipt, error)
}

// ReceiptConfig 回执 worker 配置
type ReceiptConfig struct {
	Count       int           // worker 数量
	AfterTime   time.Duration // 回执未出现时的重试间隔
	MaxAttempts int           // 超过次数放弃
	QueueSize   int
}

func DefaultReceiptConfig() ReceiptConfig {
	return ReceiptConfig{
		Count:       2,
		AfterTime:   5 * time.Second,
		MaxAttempts: 120,
		QueueSize:   256,
	}
}

type pendingReceipt struct {
	tx       *types.Transaction
	attempts int
}

// ReceiptEngine 跟踪控制台发出的交易 拿到回执后回调 onConfirmed
type ReceiptEngine struct {
	reader      ReceiptReader
	conf        ReceiptConfig
	in          chan pendingReceipt
	onConfirmed func(*types.Transaction)
	wg          sync.WaitGroup
}

func NewReceiptEngine(reader ReceiptReader, conf ReceiptConfig, onConfirmed func(*types.Transaction)) *ReceiptEngine {
	defaults := DefaultReceiptConfig()
	if conf.Count <= 0 {
		conf.Count = defaults.Count
	}
	if conf.AfterTime <= 0 {
		conf.AfterTime = defaults.AfterTime
	}
	if conf.MaxAttempts <= 0 {
		conf.MaxAttempts = defaults.MaxAttempts
	}
	if conf.QueueSize <= 0 {
		conf.QueueSize = defaults.QueueSize
	}
	return &ReceiptEngine{
		reader:      reader,
		conf:        conf,
		in:          make(chan pendingReceipt, conf.QueueSize),
		onConfirmed: onConfirmed,
	}
}

// Run 启动 worker ctx 结束时全部退出
func (e *ReceiptEngine) Run(ctx context.Context) {
	for i := 0; i < e.conf.Count; i++ {
		e.createReceiptWorker(ctx)
	}
}

// Wait 等待所有 worker 退出
func (e *ReceiptEngine) Wait() {
	e.wg.Wait()
}

// Submit 提交一笔待确认的交易 队列满时丢弃
func (e *ReceiptEngine) Submit(tx *types.Transaction) {
	e.submit(pendingReceipt{tx: tx})
}

func (e *ReceiptEngine) submit(p pendingReceipt) {
	select {
	case e.in <- p:
	default:
		log.Warn().Msgf("ReceiptEngine queue full, drop %s ", p.tx.Hash)
	}
}

// createReceiptWorker 不断读取待确认交易并查询回执
func (e *ReceiptEngine) createReceiptWorker(ctx context.Context) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case p := <-e.in:
				e.check(ctx, p)
			}
		}
	}()
}

func (e *ReceiptEngine) check(ctx context.Context, p pendingReceipt) {
	receipt, err := e.reader.TransactionReceipt(ctx, common.HexToHash(p.tx.Hash))
	if err == nil && receipt == nil {
		err = ethereum.NotFound
	}
	if err != nil {
		p.attempts++
		if p.attempts >= e.conf.MaxAttempts {
			log.Error().Msgf("ReceiptEngine give up %s after %d attempts, err: %v", p.tx.Hash, p.attempts, err)
			return
		}
		log.Info().Msgf("等待%v，收据信息无效 %s, err: %v", e.conf.AfterTime, p.tx.Hash, err)
		go func() {
			select {
			case <-ctx.Done():
			case <-time.After(e.conf.AfterTime):
				e.submit(p)
			}
		}()
		return
	}

	p.tx.Pending = false
	p.tx.Status = uint(receipt.Status)
	if receipt.BlockNumber != nil {
		p.tx.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if receipt.Status != ethTypes.ReceiptStatusSuccessful {
		log.Error().Msgf("交易失败：%v", p.tx.Hash)
	} else {
		log.Info().Msgf("交易完成：%v", p.tx.Hash)
	}
	if e.onConfirmed != nil {
		e.onConfirmed(p.tx)
	}
}
