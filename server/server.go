package server

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/btcsuite/websocket"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gin-gonic/gin"
	"github.com/lmxdawn/chainconsole/config"
	"github.com/lmxdawn/chainconsole/db"
	"github.com/lmxdawn/chainconsole/engine"
	"github.com/lmxdawn/chainconsole/intent"
	"github.com/lmxdawn/chainconsole/notify"
	"github.com/lmxdawn/chainconsole/types"
	cmap "github.com/orcaman/concurrent-map"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ActionDispatcher 由 engine.Dispatcher 实现
type ActionDispatcher interface {
	Dispatch(ctx context.Context, req types.ActionRequest) engine.Result
}

// Options 服务配置
type Options struct {
	Environment   string
	NotifyEnabled bool
	Signer        string // 签名者地址 写入交易记录
	Swag          bool
}

// Server 所有依赖在启动时注入 请求之间不共享可变状态
type Server struct {
	dispatcher ActionDispatcher
	translator intent.Translator
	notifier   notify.Notifier
	journal    *db.Journal
	receipts   *engine.ReceiptEngine
	stats      cmap.ConcurrentMap
	opts       Options

	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
	consoles map[*websocket.Conn]struct{}
}

// NewServer journal 可以为 nil
func NewServer(dispatcher ActionDispatcher, translator intent.Translator, notifier notify.Notifier, journal *db.Journal, opts Options) *Server {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Server{
		dispatcher: dispatcher,
		translator: translator,
		notifier:   notifier,
		journal:    journal,
		stats:      cmap.New(),
		opts:       opts,
		consoles:   make(map[*websocket.Conn]struct{}),
	}
}

// WithReceipts 跟踪交易回执 回执到达后更新记录
func (s *Server) WithReceipts(reader engine.ReceiptReader, conf engine.ReceiptConfig) *engine.ReceiptEngine {
	s.receipts = engine.NewReceiptEngine(reader, conf, s.confirmed)
	return s.receipts
}

// Wait 等待后台通知发送完成
func (s *Server) Wait() {
	s.wg.Wait()
}

// Close 断开所有控制台连接 之后不再发送新的通知
// http.Server.Shutdown 不会处理已升级的 websocket 连接
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for ws := range s.consoles {
		ws.Close()
	}
	s.consoles = make(map[*websocket.Conn]struct{})
}

func (s *Server) track(ws *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.consoles[ws] = struct{}{}
	return true
}

func (s *Server) untrack(ws *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.consoles, ws)
}

// Router 注册路由
func (s *Server) Router() *gin.Engine {
	initTrans()

	server := gin.New()
	// 中间件
	server.Use(RequestID())
	server.Use(Logger())
	server.Use(Recovery())
	server.Use(Cors())

	api := server.Group("/api")
	{
		api.Any("/blockchain", s.Blockchain)
		api.GET("/status", s.Status)
		api.Any("/ai", s.AI)
		api.Any("/command", s.Command)
		api.GET("/transactions", s.Transactions)
		api.GET("/stats", s.Stats)
		api.GET("/ws", s.Console)
	}

	if s.opts.Swag {
		server.GET("/swagger/doc.json", SwaggerDoc)
	}
	return server
}

// Start 启动服务
func Start(isSwag bool, configPath string) error {
	conf, err := config.NewConfig(configPath)
	if err != nil {
		return errors.Wrap(err, "Failed to load configuration")
	}
	if conf.Chain.Rpc == "" {
		return errors.New("rpc not configured: set RPC_URL")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := ethclient.DialContext(ctx, conf.Chain.Rpc)
	if err != nil {
		return errors.Wrap(err, "dial rpc")
	}
	defer client.Close()

	chainID := big.NewInt(conf.Chain.ChainID)
	if conf.Chain.ChainID == 0 {
		chainID, err = client.ChainID(ctx)
		if err != nil {
			return errors.Wrap(err, "chain id")
		}
	}

	signer, err := engine.NewTransactor(client, conf.Chain.PrivateKey, chainID)
	if err != nil {
		return err
	}
	signerAddress := ""
	if signer == nil {
		log.Warn().Msgf("PRIVATE_KEY not configured, mutating actions are disabled")
	} else {
		signerAddress = signer.Address().Hex()
	}
	chain, err := engine.NewChainWorker(client, signer, conf.Chain.EnsRegistry)
	if err != nil {
		return err
	}
	contracts, err := engine.NewContractWorker(client, signer, engine.NewMetadataFetcher(conf.Contracts.IpfsGateway), conf.Contracts.CollectionBytecode)
	if err != nil {
		return err
	}
	dispatcher := engine.NewDispatcher(chain, contracts, engine.Options{
		MintMetadata: engine.NFTMetadata{
			Name:        conf.Contracts.MintName,
			Description: conf.Contracts.MintDescription,
			Image:       conf.Contracts.MintImage,
		},
		CollectionName:   conf.Contracts.CollectionName,
		CollectionSymbol: conf.Contracts.CollectionSymbol,
	})

	var notifier notify.Notifier = notify.Nop{}
	if conf.Notify.Enabled {
		notifier, err = notify.New(notify.Options{
			Driver:   conf.Notify.Driver,
			Webhook:  conf.Notify.Webhook,
			AMQPURL:  conf.Notify.AmqpUrl,
			Exchange: conf.Notify.Exchange,
		})
		if err != nil {
			return err
		}
		if p, ok := notifier.(*notify.Publisher); ok {
			defer p.Close()
		}
	}

	var journal *db.Journal
	database, err := db.Open(db.Options{
		Driver:        conf.Journal.Driver,
		RedisAddr:     conf.Journal.RedisAddr,
		RedisPassword: conf.Journal.RedisPass,
		RedisDB:       conf.Journal.RedisDB,
		LevelDBPath:   conf.Journal.LeveldbPath,
	})
	if err != nil {
		return err
	}
	if database != nil {
		journal = db.NewJournal(database)
		defer journal.Close()
	}

	translator := intent.NewOpenAI(intent.Options{
		APIKey:  conf.AI.ApiKey,
		Model:   conf.AI.Model,
		BaseURL: conf.AI.BaseUrl,
	})

	srv := NewServer(dispatcher, translator, notifier, journal, Options{
		Environment:   conf.App.Environment,
		NotifyEnabled: conf.Notify.Enabled,
		Signer:        signerAddress,
		Swag:          isSwag,
	})
	receipts := srv.WithReceipts(client, engine.DefaultReceiptConfig())
	receipts.Run(ctx)

	if isSwag {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%v", conf.App.Port),
		Handler: srv.Router(),
	}
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msgf("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Msgf("Shutdown err is %s ", err.Error())
		}
	}()

	log.Info().Msgf("start success at %v ", conf.App.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "start error")
	}

	cancel()
	receipts.Wait()
	srv.Close()
	srv.Wait()
	return nil
}
