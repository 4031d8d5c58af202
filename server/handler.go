package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/btcsuite/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lmxdawn/chainconsole/engine"
	"github.com/lmxdawn/chainconsole/types"
	"github.com/rs/zerolog/log"
)

const (
	defaultTransactionsLimit = 50
	notifyTimeout            = 15 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Blockchain ...
// @Tags 控制台
// @Summary 执行一个链上操作
// @Produce json
// @Param action body types.ActionRequest true "参数"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 405 {object} Envelope
// @Router /api/blockchain [post]
func (s *Server) Blockchain(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		APIResponse(c, ErrMethodNotAllowed, nil)
		return
	}

	var q types.ActionRequest
	if err := c.ShouldBindJSON(&q); err != nil {
		HandleValidatorError(c, err)
		return
	}

	c.JSON(http.StatusOK, s.execute(c.Request.Context(), requestID(c), q))
}

// Status ...
// @Tags 控制台
// @Summary 健康检查
// @Produce json
// @Success 200 {object} StatusRes
// @Router /api/status [get]
func (s *Server) Status(c *gin.Context) {
	c.JSON(http.StatusOK, StatusRes{
		Status:      "healthy",
		Environment: s.opts.Environment,
		Timestamp:   time.Now().UTC().Format(timestampLayout),
	})
}

// AI ...
// @Tags 控制台
// @Summary 自然语言转换为操作请求
// @Produce json
// @Param prompt body PromptReq true "参数"
// @Success 200 {object} Envelope{data=types.ActionRequest}
// @Failure 500 {object} Envelope
// @Router /api/ai [post]
func (s *Server) AI(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		APIResponse(c, ErrMethodNotAllowed, nil)
		return
	}

	var q PromptReq
	if err := c.ShouldBindJSON(&q); err != nil {
		HandleValidatorError(c, err)
		return
	}

	req, err := s.translator.Translate(c.Request.Context(), q.Prompt)
	if err != nil {
		log.Error().Str("request_id", requestID(c)).Msgf("AI Error err is %s ", err.Error())
		APIResponse(c, WithErr(InternalServerError, err), nil)
		return
	}

	APIResponse(c, nil, req)
}

// Command ...
// @Tags 控制台
// @Summary 自然语言直接执行
// @Produce json
// @Param prompt body PromptReq true "参数"
// @Success 200 {object} Envelope
// @Failure 500 {object} Envelope
// @Router /api/command [post]
func (s *Server) Command(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		APIResponse(c, ErrMethodNotAllowed, nil)
		return
	}

	var q PromptReq
	if err := c.ShouldBindJSON(&q); err != nil {
		HandleValidatorError(c, err)
		return
	}

	req, err := s.translator.Translate(c.Request.Context(), q.Prompt)
	if err != nil {
		log.Error().Str("request_id", requestID(c)).Msgf("AI Error err is %s ", err.Error())
		APIResponse(c, WithErr(InternalServerError, err), nil)
		return
	}
	if err := validateStruct(&req); err != nil {
		HandleValidatorError(c, err)
		return
	}

	c.JSON(http.StatusOK, s.execute(c.Request.Context(), requestID(c), req))
}

// Transactions ...
// @Tags 控制台
// @Summary 控制台发出的交易记录 按时间倒序
// @Produce json
// @Param limit query int false "返回条数"
// @Success 200 {object} Envelope{data=TransactionsRes}
// @Router /api/transactions [get]
func (s *Server) Transactions(c *gin.Context) {
	var q TransactionsReq
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleValidatorError(c, err)
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultTransactionsLimit
	}

	if s.journal == nil {
		APIResponse(c, nil, TransactionsRes{Transactions: []*types.Transaction{}})
		return
	}
	list, err := s.journal.List(q.Limit)
	if err != nil {
		log.Error().Msgf("Transactions List err is %s ", err.Error())
		APIResponse(c, WithErr(InternalServerError, err), nil)
		return
	}

	APIResponse(c, nil, TransactionsRes{Transactions: list})
}

// Stats ...
// @Tags 控制台
// @Summary 每个操作的成功失败次数
// @Produce json
// @Success 200 {object} Envelope
// @Router /api/stats [get]
func (s *Server) Stats(c *gin.Context) {
	APIResponse(c, nil, s.stats.Items())
}

// Console ...
// @Tags 控制台
// @Summary websocket 控制台 每条消息是一个操作请求 返回对应的信封
// @Router /api/ws [get]
func (s *Server) Console(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Msgf("Console Upgrade err is %s ", err.Error())
		return
	}
	defer ws.Close()
	if !s.track(ws) {
		return
	}
	defer s.untrack(ws)

	ctx := c.Request.Context()
	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			log.Info().Msgf("Console closed: %s ", err.Error())
			return
		}
		id := uuid.NewString()

		var env Envelope
		req, err := types.DecodeActionRequest(message)
		if err != nil {
			env = NewEnvelope(id, nil, err.Error(), CodeValidation)
		} else if err := validateStruct(&req); err != nil {
			env = NewEnvelope(id, nil, translateErr(err), CodeValidation)
		} else {
			env = s.execute(ctx, id, req)
		}

		if err := ws.WriteJSON(env); err != nil {
			log.Error().Msgf("Console WriteJSON err is %s ", err.Error())
			return
		}
	}
}

// execute 分发一个已校验的请求 成功后记录交易并发送通知
func (s *Server) execute(ctx context.Context, id string, req types.ActionRequest) Envelope {
	res := s.dispatcher.Dispatch(ctx, req)
	s.count(req.Action, res.Success())
	if res.Success() {
		if req.Action.Mutating() {
			s.record(req, res.Data)
		}
		s.notify(notifyMessage(req, res.Data))
	}
	return resultEnvelope(id, res)
}

func (s *Server) count(action types.Action, success bool) {
	key := string(action)
	if !action.Valid() {
		key = "unknown"
	}
	s.stats.Upsert(key, success, func(exist bool, valueInMap interface{}, newValue interface{}) interface{} {
		var st ActionStats
		if exist {
			st = valueInMap.(ActionStats)
		}
		if newValue.(bool) {
			st.Success++
		} else {
			st.Error++
		}
		return st
	})
}

// record 写入交易记录 失败只记录日志
func (s *Server) record(req types.ActionRequest, data interface{}) {
	if s.journal == nil {
		return
	}
	tx := &types.Transaction{
		Action:    req.Action,
		From:      s.opts.Signer,
		TimeStamp: time.Now().UnixMilli(),
	}
	switch d := data.(type) {
	case engine.TransactionData:
		tx.Hash = d.TransactionHash
		tx.Pending = true
	case engine.DeployData:
		tx.Contract = d.ContractAddress
	}
	switch req.Action {
	case types.MintNFT:
		tx.To = req.WalletAddress
		tx.Contract = req.TokenAddress
	case types.SendTransaction:
		tx.To = req.Receiver
		tx.Value = req.Amount.String()
	}

	if err := s.journal.Record(tx); err != nil {
		log.Error().Msgf("Journal Record err is %s ", err.Error())
		return
	}
	if tx.Pending && s.receipts != nil {
		s.receipts.Submit(tx)
	}
}

// confirmed 回执到达后更新记录并通知
func (s *Server) confirmed(tx *types.Transaction) {
	if s.journal != nil {
		if err := s.journal.Record(tx); err != nil {
			log.Error().Msgf("Journal Record err is %s ", err.Error())
		}
	}
	status := "succeeded"
	if tx.Status != 1 {
		status = "failed"
	}
	s.notify(fmt.Sprintf("Transaction %s %s in block %d", tx.Hash, status, tx.BlockNumber))
}

// notify 后台发送 不影响响应
func (s *Server) notify(message string) {
	if !s.opts.NotifyEnabled || s.notifier == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		log.Warn().Msgf("Notify skipped after close: %s ", message)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, message); err != nil {
			log.Error().Msgf("Notify err is %s ", err.Error())
		}
	}()
}

func notifyMessage(req types.ActionRequest, data interface{}) string {
	switch d := data.(type) {
	case engine.TransactionData:
		if req.Action == types.MintNFT {
			return fmt.Sprintf("Minted NFT to %s (tx %s)", req.WalletAddress, d.TransactionHash)
		}
		return fmt.Sprintf("Sent %s ETH to %s (tx %s)", req.Amount, req.Receiver, d.TransactionHash)
	case engine.DeployData:
		return fmt.Sprintf("Deployed collection %s for %s", d.ContractAddress, req.WalletAddress)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf("%s succeeded", req.Action)
	}
	return fmt.Sprintf("%s succeeded: %s", req.Action, raw)
}
