package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lmxdawn/chainconsole/db"
	"github.com/lmxdawn/chainconsole/engine"
	"github.com/lmxdawn/chainconsole/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	wallet   = "0xabc0000000000000000000000000000000000001"
	receiver = "0xdef0000000000000000000000000000000000002"
)

type stubChain struct {
	mu      sync.Mutex
	balance *big.Int
	err     error
	calls   int
	sent    *big.Int
}

func (s *stubChain) GetBalance(context.Context, string) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.balance, s.err
}

func (s *stubChain) LookupAddress(context.Context, string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return "", false, s.err
}

func (s *stubChain) SendTransaction(_ context.Context, _ string, value *big.Int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.sent = value
	return "0x111", s.err
}

type stubContracts struct {
	calls    int
	lastArgs []interface{}
}

func (s *stubContracts) TokenStandard(context.Context, string) (engine.TokenStandard, error) {
	s.calls++
	return engine.StandardERC721, nil
}

func (s *stubContracts) BalanceOf721(context.Context, string, string) (*big.Int, error) {
	s.calls++
	return big.NewInt(1), nil
}

func (s *stubContracts) BalanceOf1155(context.Context, string, string, *big.Int) (*big.Int, error) {
	s.calls++
	return big.NewInt(0), nil
}

func (s *stubContracts) MintTo(context.Context, string, string, engine.NFTMetadata) (string, error) {
	s.calls++
	return "0x222", nil
}

func (s *stubContracts) ContractMetadata(context.Context, string) (map[string]interface{}, error) {
	s.calls++
	return map[string]interface{}{"name": "Token"}, nil
}

func (s *stubContracts) NFTMetadata(context.Context, string, *big.Int) (map[string]interface{}, error) {
	s.calls++
	return map[string]interface{}{}, nil
}

func (s *stubContracts) DeployCollection(context.Context, engine.CollectionParams) (string, error) {
	s.calls++
	return "0x333", nil
}

func (s *stubContracts) Call(_ context.Context, _, _ string, args []interface{}) (interface{}, error) {
	s.calls++
	s.lastArgs = args
	return nil, nil
}

type stubNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *stubNotifier) Notify(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return n.err
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

type stubTranslator struct {
	req types.ActionRequest
	err error
}

func (t *stubTranslator) Translate(context.Context, string) (types.ActionRequest, error) {
	return t.req, t.err
}

type panicDispatcher struct{}

func (panicDispatcher) Dispatch(context.Context, types.ActionRequest) engine.Result {
	panic("boom")
}

type fixture struct {
	srv        *Server
	router     *gin.Engine
	chain      *stubChain
	contracts  *stubContracts
	notifier   *stubNotifier
	translator *stubTranslator
	journal    *db.Journal
}

func newFixture(t *testing.T, notifyEnabled bool) *fixture {
	t.Helper()
	ldb, err := db.NewMemLevelDB()
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		chain:      &stubChain{balance: big.NewInt(1000000000000000000)},
		contracts:  &stubContracts{},
		notifier:   &stubNotifier{},
		translator: &stubTranslator{},
		journal:    db.NewJournal(ldb),
	}
	t.Cleanup(func() { f.journal.Close() })
	dispatcher := engine.NewDispatcher(f.chain, f.contracts, engine.Options{})
	f.srv = NewServer(dispatcher, f.translator, f.notifier, f.journal, Options{
		Environment:   "test",
		NotifyEnabled: notifyEnabled,
		Signer:        wallet,
	})
	f.router = f.srv.Router()
	return f
}

func (f *fixture) do(method, path, body string) (*httptest.ResponseRecorder, Envelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	f.srv.Wait()
	var env Envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestBlockchainMethodNotAllowed(t *testing.T) {
	f := newFixture(t, false)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions} {
		w, env := f.do(method, "/api/blockchain", "")
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: status %d", method, w.Code)
		}
		if env.Success || env.Error == "" || env.Code != CodeMethodNotAllowed {
			t.Errorf("%s: envelope %+v", method, env)
		}
	}
	w, _ := f.do(http.MethodHead, "/api/blockchain", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("HEAD: status %d", w.Code)
	}
}

func TestBlockchainMissingAction(t *testing.T) {
	f := newFixture(t, true)
	for _, body := range []string{`{"walletAddress":"` + wallet + `"}`, `{"action":`, `{"action":"checkBalance","tokenId":{}}`} {
		w, env := f.do(http.MethodPost, "/api/blockchain", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", body, w.Code)
		}
		if env.Success || env.Code != CodeValidation || env.Error == "" {
			t.Errorf("%s: envelope %+v", body, env)
		}
	}
	_, env := f.do(http.MethodPost, "/api/blockchain", `{}`)
	if !strings.Contains(env.Error, "action") {
		t.Errorf("error %q does not name the field", env.Error)
	}
	if f.chain.calls+f.contracts.calls != 0 {
		t.Errorf("expected zero client calls, got %d", f.chain.calls+f.contracts.calls)
	}
	if f.notifier.count() != 0 {
		t.Errorf("expected no notifications")
	}
}

func TestBlockchainCheckBalance(t *testing.T) {
	f := newFixture(t, false)
	w, env := f.do(http.MethodPost, "/api/blockchain", `{"action":"checkBalance","walletAddress":"`+wallet+`"}`)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status %d envelope %+v", w.Code, env)
	}
	data, _ := env.Data.(map[string]interface{})
	if data["balance"] != "1.0" {
		t.Errorf("data = %v", env.Data)
	}
	if env.RequestID == "" || env.Timestamp == "" {
		t.Errorf("missing request id or timestamp: %+v", env)
	}
	if w.Header().Get("X-Request-ID") != env.RequestID {
		t.Errorf("header request id %q != %q", w.Header().Get("X-Request-ID"), env.RequestID)
	}
}

func TestBlockchainNetworkTimeout(t *testing.T) {
	f := newFixture(t, true)
	f.chain.err = errors.New("NetworkTimeout")
	w, env := f.do(http.MethodPost, "/api/blockchain", `{"action":"checkBalance","walletAddress":"`+wallet+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if env.Success || env.Error != "NetworkTimeout" || env.Data != nil {
		t.Fatalf("envelope %+v", env)
	}
	if f.notifier.count() != 0 {
		t.Errorf("failed actions must not notify")
	}
}

func TestBlockchainUnknownAction(t *testing.T) {
	f := newFixture(t, false)
	w, env := f.do(http.MethodPost, "/api/blockchain", `{"action":"doTheThing"}`)
	if w.Code != http.StatusOK || env.Success || !strings.Contains(env.Error, "doTheThing") || env.Code != CodeUnknownAction {
		t.Fatalf("status %d envelope %+v", w.Code, env)
	}
}

func TestBlockchainLargeIntegerArgs(t *testing.T) {
	f := newFixture(t, false)
	body := `{"action":"callContractFunction","tokenAddress":"` + wallet + `","contractFunction":"transfer","functionArgs":["` + receiver + `",1000000000000000001]}`
	w, env := f.do(http.MethodPost, "/api/blockchain", body)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status %d envelope %+v", w.Code, env)
	}
	if len(f.contracts.lastArgs) != 2 {
		t.Fatalf("args = %v", f.contracts.lastArgs)
	}
	n, ok := f.contracts.lastArgs[1].(json.Number)
	if !ok || n.String() != "1000000000000000001" {
		t.Fatalf("amount arrived as %T %v", f.contracts.lastArgs[1], f.contracts.lastArgs[1])
	}
}

func TestBlockchainSendTransactionJournaled(t *testing.T) {
	f := newFixture(t, true)
	w, env := f.do(http.MethodPost, "/api/blockchain", `{"action":"sendTransaction","receiver":"`+receiver+`","amount":0.5}`)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status %d envelope %+v", w.Code, env)
	}
	data, _ := env.Data.(map[string]interface{})
	if data["transactionHash"] != "0x111" {
		t.Errorf("data = %v", env.Data)
	}
	if f.chain.sent.String() != "500000000000000000" {
		t.Errorf("sent %s wei", f.chain.sent)
	}

	tx, err := f.journal.Get("0x111")
	if err != nil {
		t.Fatal(err)
	}
	if tx.Action != types.SendTransaction || tx.To != receiver || tx.Value != "0.5" || !tx.Pending || tx.From != wallet {
		t.Errorf("journal entry %+v", tx)
	}

	if f.notifier.count() != 1 || !strings.Contains(f.notifier.messages[0], "Sent 0.5 ETH") {
		t.Errorf("notifications %v", f.notifier.messages)
	}
}

func TestNotificationFlag(t *testing.T) {
	body := `{"action":"checkBalance","walletAddress":"` + wallet + `"}`

	off := newFixture(t, false)
	off.do(http.MethodPost, "/api/blockchain", body)
	if off.notifier.count() != 0 {
		t.Errorf("flag unset: %d notifications", off.notifier.count())
	}

	on := newFixture(t, true)
	on.do(http.MethodPost, "/api/blockchain", body)
	if on.notifier.count() != 1 {
		t.Errorf("flag set: %d notifications", on.notifier.count())
	}

	failing := newFixture(t, true)
	failing.notifier.err = errors.New("discord down")
	w, env := failing.do(http.MethodPost, "/api/blockchain", body)
	if w.Code != http.StatusOK || !env.Success {
		t.Errorf("notifier failure changed the response: %d %+v", w.Code, env)
	}
}

func TestAdapterPanic(t *testing.T) {
	srv := NewServer(panicDispatcher{}, &stubTranslator{}, nil, nil, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/blockchain", strings.NewReader(`{"action":"checkBalance"}`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var env Envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	if w.Code != http.StatusInternalServerError || env.Success || env.Code != CodeAdapterFault {
		t.Fatalf("status %d envelope %+v", w.Code, env)
	}
	if strings.Contains(env.Error, "boom") {
		t.Errorf("internal panic value leaked: %q", env.Error)
	}
}

func TestStatus(t *testing.T) {
	f := newFixture(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var res StatusRes
	json.Unmarshal(w.Body.Bytes(), &res)
	if w.Code != http.StatusOK || res.Status != "healthy" || res.Environment != "test" || res.Timestamp == "" {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
}

func TestCorsPreflight(t *testing.T) {
	f := newFixture(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/blockchain", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("status %d headers %v", w.Code, w.Header())
	}
}

func TestAI(t *testing.T) {
	f := newFixture(t, false)
	f.translator.req = types.ActionRequest{Action: types.GetENS, WalletAddress: wallet}

	w, env := f.do(http.MethodPost, "/api/ai", `{"prompt":"who is this wallet"}`)
	data, _ := env.Data.(map[string]interface{})
	if w.Code != http.StatusOK || data["action"] != "getENS" {
		t.Fatalf("status %d envelope %+v", w.Code, env)
	}

	if w, _ := f.do(http.MethodGet, "/api/ai", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status %d", w.Code)
	}
	if w, _ := f.do(http.MethodPost, "/api/ai", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing prompt status %d", w.Code)
	}

	f.translator.err = errors.New("model returned invalid JSON")
	w, env = f.do(http.MethodPost, "/api/ai", `{"prompt":"hello"}`)
	if w.Code != http.StatusInternalServerError || env.Success || env.Code != CodeAdapterFault {
		t.Fatalf("status %d envelope %+v", w.Code, env)
	}
}

func TestCommand(t *testing.T) {
	f := newFixture(t, false)
	f.translator.req = types.ActionRequest{Action: types.CheckBalance, WalletAddress: wallet}
	w, env := f.do(http.MethodPost, "/api/command", `{"prompt":"what is my balance"}`)
	data, _ := env.Data.(map[string]interface{})
	if w.Code != http.StatusOK || data["balance"] != "1.0" {
		t.Fatalf("status %d envelope %+v", w.Code, env)
	}

	f.translator.req = types.ActionRequest{}
	if w, _ := f.do(http.MethodPost, "/api/command", `{"prompt":"???"}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty translation status %d", w.Code)
	}
}

func TestTransactionsAndStats(t *testing.T) {
	f := newFixture(t, false)
	f.do(http.MethodPost, "/api/blockchain", `{"action":"mintNFT","tokenAddress":"0x1230000000000000000000000000000000000003","walletAddress":"`+wallet+`"}`)
	f.do(http.MethodPost, "/api/blockchain", `{"action":"deployContract","walletAddress":"`+wallet+`"}`)
	f.do(http.MethodPost, "/api/blockchain", `{"action":"checkNFT","walletAddress":"`+wallet+`"}`)

	w, env := f.do(http.MethodGet, "/api/transactions?limit=10", "")
	data, _ := env.Data.(map[string]interface{})
	list, _ := data["transactions"].([]interface{})
	if w.Code != http.StatusOK || len(list) != 2 {
		t.Fatalf("status %d envelope %+v", w.Code, env)
	}

	if w, _ := f.do(http.MethodGet, "/api/transactions?limit=0", ""); w.Code != http.StatusOK {
		t.Errorf("limit=0 status %d", w.Code)
	}
	if w, _ := f.do(http.MethodGet, "/api/transactions?limit=-1", ""); w.Code != http.StatusBadRequest {
		t.Errorf("limit=-1 status %d", w.Code)
	}

	_, env = f.do(http.MethodGet, "/api/stats", "")
	stats, _ := env.Data.(map[string]interface{})
	mint, _ := stats["mintNFT"].(map[string]interface{})
	check, _ := stats["checkNFT"].(map[string]interface{})
	if mint["success"] != float64(1) || check["error"] != float64(1) {
		t.Fatalf("stats = %v", env.Data)
	}
}

func TestConfirmedUpdatesJournal(t *testing.T) {
	f := newFixture(t, true)
	tx := &types.Transaction{Hash: "0x444", Action: types.SendTransaction, Pending: true}
	if err := f.journal.Record(tx); err != nil {
		t.Fatal(err)
	}
	f.srv.confirmed(&types.Transaction{Hash: "0x444", Action: types.SendTransaction, Status: 1, BlockNumber: 7})
	f.srv.Wait()

	got, err := f.journal.Get("0x444")
	if err != nil {
		t.Fatal(err)
	}
	if got.Pending || got.Status != 1 || got.BlockNumber != 7 {
		t.Errorf("journal entry %+v", got)
	}
	if f.notifier.count() != 1 || !strings.Contains(f.notifier.messages[0], "succeeded in block 7") {
		t.Errorf("notifications %v", f.notifier.messages)
	}
}
