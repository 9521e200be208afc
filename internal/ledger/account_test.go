package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
)

// rpcStub answers JSON-RPC requests by method name.
func rpcStub(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
			return
		}
		body, ok := results[req.Method]
		if !ok {
			t.Errorf("unexpected method %q", req.Method)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

var (
	vaultKey  = solana.MustPublicKeyFromBase58("8p1VKP45hhqq5iZG5fNGoi7ucme8nFLeChoDWNy7rWFm")
	lpMintKey = solana.MustPublicKeyFromBase58("21bR3D4QR4GzopVco44PVMBXwHFpSYrbrdeNwdKk7umb")
	walletKey = solana.MustPublicKeyFromBase58("5ZTBXQRpKa7TUVeYgC8tXVEFiMaTe77nR1aJcBRdF1Vz")
)

func TestFetchAccountData(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5}
	server := rpcStub(t, map[string]string{
		"getAccountInfo": `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":{"data":["` +
			base64.StdEncoding.EncodeToString(raw) + `","base64"],"executable":false,"lamports":10,"owner":"x"}}}`,
	})
	defer server.Close()

	client := NewClient(server.URL, "confirmed", 0, time.Millisecond)
	got, err := client.FetchAccountData(context.Background(), vaultKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("data = %v, want %v", got, raw)
	}
}

func TestFetchAccountDataNotFound(t *testing.T) {
	server := rpcStub(t, map[string]string{
		"getAccountInfo": `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":null}}`,
	})
	defer server.Close()

	client := NewClient(server.URL, "confirmed", 0, time.Millisecond)
	_, err := client.FetchAccountData(context.Background(), vaultKey)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestFetchTokenSupply(t *testing.T) {
	server := rpcStub(t, map[string]string{
		"getTokenSupply": `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":{"amount":"18446744073709551615","decimals":9,"uiAmountString":"18446744073.709551615"}}}`,
	})
	defer server.Close()

	client := NewClient(server.URL, "confirmed", 0, time.Millisecond)
	got, err := client.FetchTokenSupply(context.Background(), lpMintKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Amount != 18446744073709551615 || got.Decimals != 9 {
		t.Errorf("supply = %+v, want max uint64 with 9 decimals", got)
	}
}

func TestFetchTokenSupplyInvalidAmount(t *testing.T) {
	server := rpcStub(t, map[string]string{
		"getTokenSupply": `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":{"amount":"-5","decimals":9}}}`,
	})
	defer server.Close()

	client := NewClient(server.URL, "confirmed", 0, time.Millisecond)
	if _, err := client.FetchTokenSupply(context.Background(), lpMintKey); err == nil {
		t.Error("expected parse error, got nil")
	}
}

func TestFetchTokenAccountBalance(t *testing.T) {
	server := rpcStub(t, map[string]string{
		"getTokenAccountBalance": `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":{"amount":"50000","decimals":9,"uiAmountString":"0.00005"}}}`,
	})
	defer server.Close()

	client := NewClient(server.URL, "confirmed", 0, time.Millisecond)
	got, err := client.FetchTokenAccountBalance(context.Background(), walletKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Amount != 50_000 {
		t.Errorf("Amount = %d, want 50000", got.Amount)
	}
}

func TestFetchTokenAccountBalanceNotFound(t *testing.T) {
	server := rpcStub(t, map[string]string{
		"getTokenAccountBalance": `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"Invalid param: could not find account"}}`,
	})
	defer server.Close()

	client := NewClient(server.URL, "confirmed", 0, time.Millisecond)
	_, err := client.FetchTokenAccountBalance(context.Background(), walletKey)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestAssociatedTokenAddressDeterministic(t *testing.T) {
	a, err := AssociatedTokenAddress(walletKey, lpMintKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := AssociatedTokenAddress(walletKey, lpMintKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Equals(b) {
		t.Errorf("derivation not deterministic: %s vs %s", a, b)
	}

	other, err := AssociatedTokenAddress(walletKey, vaultKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Equals(other) {
		t.Error("different mints derived the same token account")
	}
}
