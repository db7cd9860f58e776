package starknet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zeebo/assert"
)

func TestValidateAddress(t *testing.T) {
	f := New(nil)

	assert.True(t, f.ValidateAddress("starknet:sepolia",
		"0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"))
	assert.True(t, f.ValidateAddress("starknet:sepolia", "0x1"))
	assert.False(t, f.ValidateAddress("starknet:sepolia", "0x0"))
	assert.False(t, f.ValidateAddress("starknet:sepolia", "0x"))
	assert.False(t, f.ValidateAddress("starknet:sepolia", "1234"))
	// one past the field prime
	assert.False(t, f.ValidateAddress("starknet:sepolia",
		"0x800000000000011000000000000000000000000000000000000000000000002"))
	assert.False(t, f.ValidateAddress("starknet:sepolia", "0xnothex"))
}

func TestVerifySignature(t *testing.T) {
	var gotReq rpcRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  []string{"0x56414c4944"},
		})
	}))
	defer srv.Close()

	f := New(map[string]string{"starknet:sepolia": srv.URL})

	ok, err := f.VerifySignature(context.Background(), "starknet:sepolia",
		"0xabc,0xdef", "0x123", "0x049d")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "starknet_call", gotReq.Method)
}

func TestVerifySignatureRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  []string{"0x0"},
		})
	}))
	defer srv.Close()

	f := New(map[string]string{"starknet:sepolia": srv.URL})

	ok, err := f.VerifySignature(context.Background(), "starknet:sepolia",
		"0xabc,0xdef", "0x123", "0x049d")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySignatureNoEndpoint(t *testing.T) {
	f := New(map[string]string{})

	_, err := f.VerifySignature(context.Background(), "starknet:mainnet",
		"0xabc,0xdef", "0x123", "0x049d")
	assert.Error(t, err)
}

func TestVerifySignatureTooFewFelts(t *testing.T) {
	f := New(map[string]string{"starknet:sepolia": "http://localhost:1"})

	_, err := f.VerifySignature(context.Background(), "starknet:sepolia",
		"0xabc", "0x123", "0x049d")
	assert.Error(t, err)
}
