package jsonrpc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/custodia/govaultd/internal/core/addr"
	"github.com/custodia/govaultd/internal/core/token"
	"github.com/custodia/govaultd/internal/core/tx"
	"github.com/custodia/govaultd/internal/core/vault"
)

// HistoryReader reads back recently applied instructions.
type HistoryReader interface {
	Recent(limit int) ([]tx.HistoryRecord, error)
}

// Handler dispatches vault JSON-RPC methods against the instruction engine.
type Handler struct {
	engine  *tx.Engine
	history HistoryReader
	methods map[string]func(params json.RawMessage) (interface{}, *Error)
}

// NewHandler builds a handler over the engine. history may be nil.
func NewHandler(engine *tx.Engine, history HistoryReader) *Handler {
	h := &Handler{engine: engine, history: history}
	h.methods = map[string]func(params json.RawMessage) (interface{}, *Error){
		"vault_derive":  h.handleDerive,
		"vault_info":    h.handleInfo,
		"vault_submit":  h.handleSubmit,
		"vault_history": h.handleHistory,
		"server_info":   h.handleServerInfo,
	}
	return h
}

// Handle dispatches one method call.
func (h *Handler) Handle(method string, params json.RawMessage) (interface{}, *Error) {
	handler, ok := h.methods[method]
	if !ok {
		return nil, &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("method %q not found", method)}
	}
	return handler(params)
}

type deriveParams struct {
	Owner solana.PublicKey `json:"owner"`
	Mint  solana.PublicKey `json:"mint"`
}

type deriveResult struct {
	addr.Addresses
	Claims solana.PublicKey `json:"claims"`
}

func (h *Handler) handleDerive(params json.RawMessage) (interface{}, *Error) {
	var p deriveParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Owner.IsZero() || p.Mint.IsZero() {
		return nil, &Error{Code: CodeInvalidParams, Message: "owner and mint are required"}
	}

	derived, err := addr.Derive(p.Owner, p.Mint, h.engine.Program())
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	claims, _, err := addr.ClaimsAccount(derived.Vault, h.engine.Program())
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return deriveResult{Addresses: derived, Claims: claims}, nil
}

type infoParams struct {
	Vault solana.PublicKey `json:"vault"`
	Owner solana.PublicKey `json:"owner"`
	Mint  solana.PublicKey `json:"mint"`
}

type infoResult struct {
	Vault          solana.PublicKey   `json:"vault"`
	Owner          solana.PublicKey   `json:"owner"`
	Asset          solana.PublicKey   `json:"asset"`
	ShareMint      solana.PublicKey   `json:"share_mint"`
	TotalShares    uint64             `json:"total_shares"`
	CustodyBalance uint64             `json:"custody_balance"`
	Whitelist      []solana.PublicKey `json:"whitelist,omitempty"`
}

func (h *Handler) handleInfo(params json.RawMessage) (interface{}, *Error) {
	var p infoParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	vaultAddr := p.Vault
	if vaultAddr.IsZero() {
		if p.Owner.IsZero() || p.Mint.IsZero() {
			return nil, &Error{Code: CodeInvalidParams, Message: "either vault or owner and mint are required"}
		}
		derived, err := addr.Derive(p.Owner, p.Mint, h.engine.Program())
		if err != nil {
			return nil, &Error{Code: CodeInternalError, Message: err.Error()}
		}
		vaultAddr = derived.Vault
	}

	rec, err := vault.LoadRecord(h.engine.View(), vaultAddr)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	if rec == nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("no vault at %s", vaultAddr)}
	}

	derived, err := addr.Derive(rec.Owner, rec.Asset, h.engine.Program())
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	custody, err := token.NewLedgerOver(h.engine.View(), nil).Balance(derived.Custody)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}

	return infoResult{
		Vault:          vaultAddr,
		Owner:          rec.Owner,
		Asset:          rec.Asset,
		ShareMint:      rec.ShareMint,
		TotalShares:    rec.TotalShares,
		CustodyBalance: custody,
		Whitelist:      rec.Whitelist,
	}, nil
}

type submitParams struct {
	Kind        string          `json:"kind"`
	Instruction json.RawMessage `json:"instruction"`
}

type submitResult struct {
	Code    int         `json:"code"`
	Name    string      `json:"name"`
	Applied bool        `json:"applied"`
	Effects []tx.Effect `json:"effects,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) handleSubmit(params json.RawMessage) (interface{}, *Error) {
	var p submitParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	instr, err := tx.New(p.Kind)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	if len(p.Instruction) > 0 {
		if err := json.Unmarshal(p.Instruction, instr); err != nil {
			return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("decode %s instruction: %v", p.Kind, err)}
		}
	}

	res := h.engine.Apply(instr)
	out := submitResult{
		Code:    int(res.Code),
		Name:    res.Code.String(),
		Applied: res.Code.Success(),
		Effects: res.Effects,
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out, nil
}

type historyParams struct {
	Limit int `json:"limit"`
}

type historyEntry struct {
	Kind      string      `json:"kind"`
	Signer    string      `json:"signer"`
	Code      int         `json:"code"`
	Name      string      `json:"name"`
	Effects   []tx.Effect `json:"effects,omitempty"`
	AppliedAt string      `json:"applied_at"`
}

func (h *Handler) handleHistory(params json.RawMessage) (interface{}, *Error) {
	if h.history == nil {
		return nil, &Error{Code: CodeInternalError, Message: "history is not configured"}
	}

	p := historyParams{Limit: 50}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Limit <= 0 || p.Limit > 1000 {
		return nil, &Error{Code: CodeInvalidParams, Message: "limit must be between 1 and 1000"}
	}

	records, err := h.history.Recent(p.Limit)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{
			Kind:      rec.Kind,
			Signer:    rec.Signer,
			Code:      int(rec.Code),
			Name:      rec.Code.String(),
			Effects:   rec.Effects,
			AppliedAt: rec.AppliedAt.Format(time.RFC3339Nano),
		})
	}
	return entries, nil
}

type serverInfoResult struct {
	Program      solana.PublicKey `json:"program"`
	Instructions []string         `json:"instructions"`
}

func (h *Handler) handleServerInfo(json.RawMessage) (interface{}, *Error) {
	return serverInfoResult{
		Program:      h.engine.Program(),
		Instructions: tx.Kinds(),
	}, nil
}

func decodeParams(params json.RawMessage, into interface{}) *Error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, into); err != nil {
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	return nil
}
