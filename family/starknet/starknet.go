// Package starknet implements the starknet chain-family capabilities.
// Addresses are field elements of the Stark curve's prime field; signatures
// are verified on-chain through the account contract's is_valid_signature
// entry point, the scheme every SNIP-6 account exposes.
package starknet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// fieldPrime is the Stark field prime 2^251 + 17*2^192 + 1.
var fieldPrime, _ = new(big.Int).SetString(
	"800000000000011000000000000000000000000000000000000000000000001", 16)

// validMagic is the SNIP-6 magic value short-string "VALID".
var validMagic = big.NewInt(0x56414c4944)

// Family implements family.AddressValidator and family.SignatureVerifier for
// starknet chains. One instance serves every configured starknet network.
type Family struct {
	httpClient *http.Client
	// chainId -> JSON-RPC endpoint
	rpcURLs map[string]string
}

// New creates the starknet family over the configured RPC endpoints.
func New(rpcURLs map[string]string) *Family {
	return &Family{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		rpcURLs:    rpcURLs,
	}
}

// ValidateAddress checks the address is a non-zero felt in hex form.
func (f *Family) ValidateAddress(chainID, address string) bool {
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return false
	}
	digits := address[2:]
	if len(digits) == 0 || len(digits) > 64 {
		return false
	}
	value, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return false
	}
	return value.Sign() > 0 && value.Cmp(fieldPrime) < 0
}

// VerifySignature asks the signer's account contract whether the signature is
// valid for the message hash. The message is the hex-encoded typed-data hash
// the wallet signed; the signature is the comma-separated felt list (r,s for
// plain Stark accounts, longer for multisig).
func (f *Family) VerifySignature(ctx context.Context, chainID, signature, message, signerAddress string) (bool, error) {
	rpcURL, ok := f.rpcURLs[chainID]
	if ok && rpcURL == "" {
		ok = false
	}
	if !ok {
		return false, fmt.Errorf("no rpc endpoint configured for chain %s", chainID)
	}

	sigFelts := splitFelts(signature)
	if len(sigFelts) < 2 {
		return false, fmt.Errorf("signature must contain at least two felts")
	}

	calldata := make([]string, 0, len(sigFelts)+2)
	calldata = append(calldata, message)
	calldata = append(calldata, fmt.Sprintf("0x%x", len(sigFelts)))
	calldata = append(calldata, sigFelts...)

	result, err := f.call(ctx, rpcURL, signerAddress, selector("is_valid_signature"), calldata)
	if err != nil {
		return false, err
	}
	if len(result) == 0 {
		return false, nil
	}

	value, ok := new(big.Int).SetString(strings.TrimPrefix(result[0], "0x"), 16)
	if !ok {
		return false, fmt.Errorf("malformed felt in rpc response: %s", result[0])
	}
	// SNIP-6 accounts return the short-string "VALID"; older accounts return 1.
	return value.Cmp(validMagic) == 0 || value.Cmp(big.NewInt(1)) == 0, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	Result []string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type callParams struct {
	Request callRequest `json:"request"`
	BlockID string      `json:"block_id"`
}

type callRequest struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

func (f *Family) call(ctx context.Context, rpcURL, contract, entryPoint string, calldata []string) ([]string, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "starknet_call",
		Params: callParams{
			Request: callRequest{
				ContractAddress:    contract,
				EntryPointSelector: entryPoint,
				Calldata:           calldata,
			},
			BlockID: "latest",
		},
		ID: 1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("starknet rpc call failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("starknet rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

// selector computes the starknet entry point selector: the keccak256 of the
// function name truncated to 250 bits.
func selector(name string) string {
	hash := crypto.Keccak256([]byte(name))
	value := new(big.Int).SetBytes(hash)
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))
	value.And(value, mask)
	return "0x" + value.Text(16)
}

func splitFelts(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	felts := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			felts = append(felts, part)
		}
	}
	return felts
}
