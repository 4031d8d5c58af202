package db

import (
	"encoding/json"
	"sort"

	"github.com/lmxdawn/chainconsole/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const txPrefix = "tx:"

// Journal 记录控制台发出的上链交易 仅用于查询 不参与操作分发
type Journal struct {
	db Database
}

func NewJournal(db Database) *Journal {
	return &Journal{db: db}
}

// Record 写入一条交易记录 以交易 hash 为键 没有 hash 时使用合约地址 重复写入会覆盖
func (j *Journal) Record(tx *types.Transaction) error {
	key := tx.Hash
	if key == "" {
		key = tx.Contract
	}
	if key == "" {
		return errors.New("transaction has neither hash nor contract")
	}
	raw, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	return j.db.Put(txPrefix+key, string(raw))
}

// Get 根据交易 hash 查询
func (j *Journal) Get(hash string) (*types.Transaction, error) {
	raw, err := j.db.Get(txPrefix + hash)
	if err != nil {
		return nil, err
	}
	tx := &types.Transaction{}
	if err := json.Unmarshal([]byte(raw), tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// List 按时间倒序返回最近 limit 条 limit <= 0 表示全部
func (j *Journal) List(limit int) ([]*types.Transaction, error) {
	items, err := j.db.List(txPrefix)
	if err != nil {
		return nil, err
	}
	data := make([]*types.Transaction, 0, len(items))
	for _, item := range items {
		tx := &types.Transaction{}
		if err := json.Unmarshal([]byte(item.Value), tx); err != nil {
			log.Error().Msgf("Journal List Unmarshal err is %s ", err.Error())
			continue
		}
		data = append(data, tx)
	}
	sort.SliceStable(data, func(a, b int) bool {
		return data[a].TimeStamp > data[b].TimeStamp
	})
	if limit > 0 && len(data) > limit {
		data = data[:limit]
	}
	return data, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
