package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/theirongolddev/crowdscope/internal/model"
)

// fakeCaller answers eth_call by method selector.
type fakeCaller struct {
	outputs map[string][]byte
	err     error
	chainID *big.Int
	block   uint64
	closed  bool
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.outputs[string(msg.Data[:4])], nil
}

func (f *fakeCaller) ChainID(context.Context) (*big.Int, error) { return f.chainID, nil }
func (f *fakeCaller) BlockNumber(context.Context) (uint64, error) { return f.block, nil }
func (f *fakeCaller) Close()                                      { f.closed = true }

func packOutput(t *testing.T, method Method, v any) (string, []byte) {
	t.Helper()
	m, ok := crowdfundingABI.Methods[string(method)]
	if !ok {
		t.Fatalf("method %s not in ABI", method)
	}
	data, err := m.Outputs.Pack(v)
	if err != nil {
		t.Fatalf("packing %s output: %v", method, err)
	}
	return string(m.ID), data
}

func newFakeClient(t *testing.T, outputs map[Method]any) (*Client, *fakeCaller) {
	t.Helper()
	fc := &fakeCaller{outputs: make(map[string][]byte)}
	for m, v := range outputs {
		sel, data := packOutput(t, m, v)
		fc.outputs[sel] = data
	}
	return newClient("http://test", fc, 0), fc
}

var campaignAddr = common.HexToAddress("0x00000000000000000000000000000000000000c1")

func TestRead_Uint256(t *testing.T) {
	huge, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	c, _ := newFakeClient(t, map[Method]any{
		MethodGoal:    huge,
		MethodBalance: big.NewInt(42),
	})

	res := c.Read(context.Background(), campaignAddr, MethodGoal)
	if res.Status != model.ReadLoaded {
		t.Fatalf("goal status = %v (err %v), want loaded", res.Status, res.Err)
	}
	goal, ok := res.Value.(*big.Int)
	if !ok {
		t.Fatalf("goal value type = %T, want *big.Int", res.Value)
	}
	if goal.Cmp(huge) != 0 {
		t.Fatalf("goal = %s, want max uint256", goal)
	}

	res = c.Read(context.Background(), campaignAddr, MethodBalance)
	if b := res.Value.(*big.Int); b.Int64() != 42 {
		t.Fatalf("balance = %s, want 42", b)
	}
}

func TestRead_String(t *testing.T) {
	c, _ := newFakeClient(t, map[Method]any{MethodName: "Save the Reef"})

	res := c.Read(context.Background(), campaignAddr, MethodName)
	if res.Status != model.ReadLoaded {
		t.Fatalf("status = %v (err %v)", res.Status, res.Err)
	}
	if res.Value != "Save the Reef" {
		t.Fatalf("name = %v, want %q", res.Value, "Save the Reef")
	}
}

func TestRead_AllCampaigns(t *testing.T) {
	want := []CampaignRecord{
		{CampaignAddress: common.HexToAddress("0x01"), Owner: common.HexToAddress("0xa1"), Name: "One"},
		{CampaignAddress: common.HexToAddress("0x02"), Owner: common.HexToAddress("0xa2"), Name: "Two"},
	}
	c, _ := newFakeClient(t, map[Method]any{MethodAllCampaigns: want})

	res := c.Read(context.Background(), campaignAddr, MethodAllCampaigns)
	if res.Status != model.ReadLoaded {
		t.Fatalf("status = %v (err %v)", res.Status, res.Err)
	}
	got, ok := res.Value.([]CampaignRecord)
	if !ok {
		t.Fatalf("value type = %T, want []CampaignRecord", res.Value)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRead_EmptyReturnIsNoContract(t *testing.T) {
	c, _ := newFakeClient(t, nil)

	res := c.Read(context.Background(), campaignAddr, MethodGoal)
	if res.Status != model.ReadErrored {
		t.Fatalf("status = %v, want errored", res.Status)
	}
	if !errors.Is(res.Err, ErrNoContract) {
		t.Fatalf("err = %v, want ErrNoContract", res.Err)
	}
}

func TestRead_MalformedReturnIsDecodeError(t *testing.T) {
	c, fc := newFakeClient(t, nil)
	fc.outputs[string(crowdfundingABI.Methods["goal"].ID)] = []byte{0x01, 0x02, 0x03}

	res := c.Read(context.Background(), campaignAddr, MethodGoal)
	if !errors.Is(res.Err, ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", res.Err)
	}
	if res.Value != nil {
		t.Fatalf("value = %v, want nil on error", res.Value)
	}
}

func TestRead_TransportError(t *testing.T) {
	boom := errors.New("connection reset")
	c, fc := newFakeClient(t, nil)
	fc.err = boom

	res := c.Read(context.Background(), campaignAddr, MethodBalance)
	if res.Status != model.ReadErrored || !errors.Is(res.Err, boom) {
		t.Fatalf("got %+v, want errored wrapping transport error", res)
	}
	if !errors.Is(res.Err, ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", res.Err)
	}
}

// revertError mimics a JSON-RPC error answered by the node.
type revertError struct{}

func (revertError) Error() string  { return "execution reverted" }
func (revertError) ErrorCode() int { return 3 }

func TestRead_NodeErrorIsNotUnreachable(t *testing.T) {
	c, fc := newFakeClient(t, nil)
	fc.err = revertError{}

	res := c.Read(context.Background(), campaignAddr, MethodGoal)
	if res.Status != model.ReadErrored {
		t.Fatalf("status = %v, want errored", res.Status)
	}
	if errors.Is(res.Err, ErrUnreachable) {
		t.Fatalf("err = %v, node errors must not read as unreachable", res.Err)
	}
}

func TestRead_CanceledIsNotUnreachable(t *testing.T) {
	c, fc := newFakeClient(t, nil)
	fc.err = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := c.Read(ctx, campaignAddr, MethodGoal)
	if !errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, ErrUnreachable) {
		t.Fatalf("err = %v, want context.Canceled only", res.Err)
	}
}

func TestRead_UnknownMethod(t *testing.T) {
	c, _ := newFakeClient(t, nil)
	res := c.Read(context.Background(), campaignAddr, Method("owner"))
	if res.Status != model.ReadErrored {
		t.Fatalf("status = %v, want errored", res.Status)
	}
}

func TestInfoAndClose(t *testing.T) {
	c, fc := newFakeClient(t, nil)
	fc.chainID = big.NewInt(11155111)
	fc.block = 6_000_000

	info, err := c.Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if NetworkName(info.ChainID) != "sepolia" || info.BlockNumber != 6_000_000 {
		t.Fatalf("info = %+v", info)
	}

	c.Close()
	if !fc.closed {
		t.Fatal("Close did not close the RPC connection")
	}
}

func TestValidateEndpoint(t *testing.T) {
	good := []string{
		"https://ethereum-sepolia-rpc.publicnode.com",
		"http://127.0.0.1:8545",
		"wss://example.org/ws",
		"/tmp/geth.ipc",
	}
	for _, u := range good {
		if err := ValidateEndpoint(u); err != nil {
			t.Errorf("ValidateEndpoint(%q) = %v, want nil", u, err)
		}
	}

	bad := []string{"", "ftp://example.org", "https://"}
	for _, u := range bad {
		if err := ValidateEndpoint(u); !errors.Is(err, ErrNoEndpoint) {
			t.Errorf("ValidateEndpoint(%q) = %v, want ErrNoEndpoint", u, err)
		}
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("  0x5FbDB2315678afecb367f032d93F642f64180aa3 ")
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if addr.Hex() != "0x5FbDB2315678afecb367f032d93F642f64180aa3" {
		t.Fatalf("addr = %s", addr.Hex())
	}

	var ae *AddressError
	if _, err := ParseAddress("0x123"); !errors.As(err, &ae) {
		t.Fatalf("ParseAddress(0x123) err = %v, want *AddressError", err)
	}
}

func TestNetworkName(t *testing.T) {
	if got := NetworkName(big.NewInt(1)); got != "ethereum" {
		t.Errorf("NetworkName(1) = %q", got)
	}
	if got := NetworkName(big.NewInt(31337)); got != "chain-31337" {
		t.Errorf("NetworkName(31337) = %q", got)
	}
	if got := NetworkName(nil); got != "unknown" {
		t.Errorf("NetworkName(nil) = %q", got)
	}
}
