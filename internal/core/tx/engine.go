package tx

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
)

// ApplyResult is what the submission layer hands back per call: either a
// commit with the ordered effect log, or a structured failure carrying the
// result kind and, when available, the underlying error.
type ApplyResult struct {
	Code    Result   `json:"code"`
	Effects []Effect `json:"effects,omitempty"`
	Err     error    `json:"-"`
}

// HistoryRecord is one applied (or refused) instruction as persisted by the
// history store.
type HistoryRecord struct {
	Kind      string
	Signer    string
	Code      Result
	Effects   []Effect
	AppliedAt time.Time
}

// Recorder persists instruction history. Recording is best-effort: a history
// failure never un-commits ledger state.
type Recorder interface {
	Append(rec HistoryRecord) error
}

// Engine applies instructions against a ledger, one at a time. Every call
// either fully commits or leaves the ledger untouched.
type Engine struct {
	view     LedgerView
	program  solana.PublicKey
	exchange Exchange
	history  Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithExchange wires the external swap collaborator.
func WithExchange(exchange Exchange) Option {
	return func(e *Engine) { e.exchange = exchange }
}

// WithHistory wires an instruction history recorder.
func WithHistory(history Recorder) Option {
	return func(e *Engine) { e.history = history }
}

// NewEngine creates an engine over the given base view.
func NewEngine(view LedgerView, program solana.PublicKey, opts ...Option) *Engine {
	e := &Engine{view: view, program: program}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Program returns the program identifier the engine derives addresses under.
func (e *Engine) Program() solana.PublicKey {
	return e.program
}

// View returns the engine's base ledger view for read-only queries.
func (e *Engine) View() LedgerView {
	return e.view
}

// Apply validates and executes one instruction. On any non-success result
// the tracked state table is discarded and zero effects are committed.
func (e *Engine) Apply(instr Instruction) ApplyResult {
	if err := instr.Validate(); err != nil {
		res := ApplyResult{Code: rejectionCode(err), Err: err}
		e.record(instr, res)
		return res
	}

	table := NewApplyStateTable(e.view)
	effects := &Effects{}
	ctx := &ApplyContext{
		View:     table,
		Program:  e.program,
		Effects:  effects,
		Exchange: e.exchange,
	}

	code := instr.Apply(ctx)
	if !code.Success() {
		// Dropping the table discards all buffered work.
		res := ApplyResult{Code: code, Err: ctx.failure}
		e.record(instr, res)
		return res
	}

	if err := table.Commit(); err != nil {
		res := ApplyResult{Code: ResInternal, Err: err}
		e.record(instr, res)
		return res
	}

	res := ApplyResult{Code: ResOK, Effects: effects.List()}
	e.record(instr, res)
	return res
}

func (e *Engine) record(instr Instruction, res ApplyResult) {
	if e.history == nil {
		return
	}
	// Best-effort; the ledger commit already happened (or didn't).
	_ = e.history.Append(HistoryRecord{
		Kind:      instr.Kind(),
		Signer:    instr.Signer().String(),
		Code:      res.Code,
		Effects:   res.Effects,
		AppliedAt: time.Now().UTC(),
	})
}

func rejectionCode(err error) Result {
	if errors.Is(err, ErrAddressMismatch) {
		return ResAddressMismatch
	}
	return ResInvalidArgument
}
