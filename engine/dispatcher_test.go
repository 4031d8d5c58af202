package engine

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/lmxdawn/chainconsole/types"
)

const (
	wallet   = "0xabc0000000000000000000000000000000000001"
	receiver = "0xdef0000000000000000000000000000000000002"
	token    = "0x1230000000000000000000000000000000000003"
)

// stubChain 记录调用的链上客户端
type stubChain struct {
	balance *big.Int
	ens     string
	hash    string
	err     error

	calls []string
	sent  *big.Int
}

func (s *stubChain) GetBalance(_ context.Context, address string) (*big.Int, error) {
	s.calls = append(s.calls, "GetBalance")
	if s.err != nil {
		return nil, s.err
	}
	return s.balance, nil
}

func (s *stubChain) LookupAddress(_ context.Context, address string) (string, bool, error) {
	s.calls = append(s.calls, "LookupAddress")
	if s.err != nil {
		return "", false, s.err
	}
	return s.ens, s.ens != "", nil
}

func (s *stubChain) SendTransaction(_ context.Context, to string, value *big.Int) (string, error) {
	s.calls = append(s.calls, "SendTransaction")
	s.sent = value
	if s.err != nil {
		return "", s.err
	}
	return s.hash, nil
}

type stubContracts struct {
	standard TokenStandard
	balance  *big.Int
	err      error
	panicMsg string

	calls    []string
	lastFunc string
	lastArgs []interface{}
	minted   NFTMetadata
	deployed CollectionParams
}

func (s *stubContracts) record(name string) error {
	s.calls = append(s.calls, name)
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.err
}

func (s *stubContracts) TokenStandard(context.Context, string) (TokenStandard, error) {
	return s.standard, s.record("TokenStandard")
}

func (s *stubContracts) BalanceOf721(context.Context, string, string) (*big.Int, error) {
	return s.balance, s.record("BalanceOf721")
}

func (s *stubContracts) BalanceOf1155(context.Context, string, string, *big.Int) (*big.Int, error) {
	return s.balance, s.record("BalanceOf1155")
}

func (s *stubContracts) MintTo(_ context.Context, _, _ string, meta NFTMetadata) (string, error) {
	s.minted = meta
	return "0xmint", s.record("MintTo")
}

func (s *stubContracts) ContractMetadata(context.Context, string) (map[string]interface{}, error) {
	return map[string]interface{}{"name": "Token"}, s.record("ContractMetadata")
}

func (s *stubContracts) NFTMetadata(_ context.Context, _ string, id *big.Int) (map[string]interface{}, error) {
	return map[string]interface{}{"metadata": map[string]interface{}{"id": id.String()}}, s.record("NFTMetadata")
}

func (s *stubContracts) DeployCollection(_ context.Context, p CollectionParams) (string, error) {
	s.deployed = p
	return "0xcontract", s.record("DeployCollection")
}

func (s *stubContracts) Call(_ context.Context, _, function string, args []interface{}) (interface{}, error) {
	s.lastFunc = function
	s.lastArgs = args
	return []interface{}{"ok"}, s.record("Call")
}

func newTestDispatcher() (*Dispatcher, *stubChain, *stubContracts) {
	chain := &stubChain{
		balance: big.NewInt(1000000000000000000),
		ens:     "adam.eth",
		hash:    "0x111",
	}
	contracts := &stubContracts{balance: big.NewInt(1)}
	return NewDispatcher(chain, contracts, Options{}), chain, contracts
}

func minimalRequest(action types.Action) types.ActionRequest {
	return types.ActionRequest{
		Action:           action,
		WalletAddress:    wallet,
		TokenAddress:     token,
		TokenID:          "1",
		Receiver:         receiver,
		Amount:           "0.5",
		ContractFunction: "name",
	}
}

func TestDispatchAllActionsSucceed(t *testing.T) {
	for _, action := range types.Actions {
		d, _, _ := newTestDispatcher()
		res := d.Dispatch(context.Background(), minimalRequest(action))
		if !res.Success() {
			t.Errorf("%s: unexpected error %q", action, res.Error)
			continue
		}
		if res.Data == nil {
			t.Errorf("%s: expected data", action)
		}
		if res.Code != "" {
			t.Errorf("%s: unexpected code %q", action, res.Code)
		}
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	d, chain, contracts := newTestDispatcher()
	res := d.Dispatch(context.Background(), types.ActionRequest{Action: "doTheThing"})
	if res.Success() || res.Data != nil {
		t.Fatalf("expected error without data, got %+v", res)
	}
	if !strings.Contains(res.Error, "doTheThing") {
		t.Errorf("error %q does not mention the action", res.Error)
	}
	if res.Code != CodeUnknownAction {
		t.Errorf("code = %q", res.Code)
	}
	if len(chain.calls)+len(contracts.calls) != 0 {
		t.Errorf("expected no client calls, got %v %v", chain.calls, contracts.calls)
	}
}

func TestDispatchCheckBalance(t *testing.T) {
	d, _, _ := newTestDispatcher()
	res := d.Dispatch(context.Background(), types.ActionRequest{Action: types.CheckBalance, WalletAddress: wallet})
	data, ok := res.Data.(BalanceData)
	if !ok || data.Balance != "1.0" {
		t.Fatalf("got %+v", res)
	}
}

func TestDispatchCheckBalanceNetworkError(t *testing.T) {
	d, chain, _ := newTestDispatcher()
	chain.err = errors.New("NetworkTimeout")
	res := d.Dispatch(context.Background(), types.ActionRequest{Action: types.CheckBalance, WalletAddress: wallet})
	if res.Error != "NetworkTimeout" || res.Code != CodeExternalCall || res.Data != nil {
		t.Fatalf("got %+v", res)
	}
}

func TestDispatchSendTransaction(t *testing.T) {
	d, chain, _ := newTestDispatcher()
	res := d.Dispatch(context.Background(), types.ActionRequest{
		Action:   types.SendTransaction,
		Receiver: receiver,
		Amount:   "0.5",
	})
	data, ok := res.Data.(TransactionData)
	if !ok || data.TransactionHash != "0x111" {
		t.Fatalf("got %+v", res)
	}
	if chain.sent.String() != "500000000000000000" {
		t.Errorf("sent %s wei", chain.sent)
	}
}

func TestDispatchInvalidAmount(t *testing.T) {
	d, chain, _ := newTestDispatcher()
	res := d.Dispatch(context.Background(), types.ActionRequest{
		Action:   types.SendTransaction,
		Receiver: receiver,
		Amount:   "half",
	})
	if res.Code != CodeInvalidArgument {
		t.Fatalf("got %+v", res)
	}
	if len(chain.calls) != 0 {
		t.Errorf("expected no client calls, got %v", chain.calls)
	}
}

func TestDispatchMissingField(t *testing.T) {
	d, chain, contracts := newTestDispatcher()
	res := d.Dispatch(context.Background(), types.ActionRequest{Action: types.CheckNFT, TokenAddress: token, WalletAddress: wallet})
	if res.Code != CodeInvalidArgument || !strings.Contains(res.Error, "tokenId") {
		t.Fatalf("got %+v", res)
	}
	if len(chain.calls)+len(contracts.calls) != 0 {
		t.Errorf("expected no client calls")
	}
}

func TestDispatchCheckNFTStandards(t *testing.T) {
	cases := []struct {
		name     string
		standard TokenStandard
		balance  int64
		want     bool
		method   string
	}{
		{"erc721 holder", StandardERC721, 2, true, "BalanceOf721"},
		{"erc721 empty", StandardERC721, 0, false, "BalanceOf721"},
		{"erc1155 holder", StandardERC1155, 3, true, "BalanceOf1155"},
		{"erc1155 empty", StandardERC1155, 0, false, "BalanceOf1155"},
	}
	for _, c := range cases {
		d, _, contracts := newTestDispatcher()
		contracts.standard = c.standard
		contracts.balance = big.NewInt(c.balance)
		res := d.Dispatch(context.Background(), minimalRequest(types.CheckNFT))
		data, ok := res.Data.(OwnershipData)
		if !ok || data.OwnsNFT != c.want {
			t.Errorf("%s: got %+v", c.name, res)
		}
		if contracts.calls[len(contracts.calls)-1] != c.method {
			t.Errorf("%s: calls %v", c.name, contracts.calls)
		}
	}
}

func TestDispatchFixedPayloads(t *testing.T) {
	d, _, contracts := newTestDispatcher()
	d.Dispatch(context.Background(), minimalRequest(types.MintNFT))
	if contracts.minted.Name != "Serum NFT" || contracts.minted.Description != "Issued by Adam." {
		t.Errorf("minted %+v", contracts.minted)
	}
	d.Dispatch(context.Background(), minimalRequest(types.DeployContract))
	if contracts.deployed.Name != "Serum Collection" || contracts.deployed.Symbol != "S3" || contracts.deployed.PrimarySaleRecipient != wallet {
		t.Errorf("deployed %+v", contracts.deployed)
	}
	d.Dispatch(context.Background(), minimalRequest(types.GetDAOVotes))
	if contracts.lastFunc != "getAllProposals" {
		t.Errorf("dao votes called %q", contracts.lastFunc)
	}
}

func TestDispatchCallContractFunctionDefaultsArgs(t *testing.T) {
	d, _, contracts := newTestDispatcher()
	res := d.Dispatch(context.Background(), minimalRequest(types.CallContractFunction))
	if !res.Success() {
		t.Fatal(res.Error)
	}
	if contracts.lastArgs == nil || len(contracts.lastArgs) != 0 {
		t.Errorf("args = %#v", contracts.lastArgs)
	}
}

func TestDispatchENSNotFound(t *testing.T) {
	d, chain, _ := newTestDispatcher()
	chain.ens = ""
	res := d.Dispatch(context.Background(), minimalRequest(types.GetENS))
	raw, _ := json.Marshal(res.Data)
	if string(raw) != `{"ens":null}` {
		t.Errorf("got %s", raw)
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	d, _, contracts := newTestDispatcher()
	contracts.panicMsg = "sdk exploded"
	res := d.Dispatch(context.Background(), minimalRequest(types.GetTokenMetadata))
	if res.Error != "sdk exploded" || res.Code != CodeExternalCall {
		t.Fatalf("got %+v", res)
	}
}
