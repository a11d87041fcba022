package tx

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// stubInstruction drives the engine through each outcome directly.
type stubInstruction struct {
	kind        string
	signer      solana.PublicKey
	validateErr error
	apply       func(ctx *ApplyContext) Result
}

func (s *stubInstruction) Kind() string             { return s.kind }
func (s *stubInstruction) Signer() solana.PublicKey { return s.signer }
func (s *stubInstruction) Validate() error          { return s.validateErr }

func (s *stubInstruction) Apply(ctx *ApplyContext) Result {
	if s.apply != nil {
		return s.apply(ctx)
	}
	return ResOK
}

type memRecorder struct {
	records []HistoryRecord
	err     error
}

func (r *memRecorder) Append(rec HistoryRecord) error {
	r.records = append(r.records, rec)
	return r.err
}

func TestEngineCommitsOnSuccess(t *testing.T) {
	base := newMemView()
	engine := NewEngine(base, solana.NewWallet().PublicKey())

	res := engine.Apply(&stubInstruction{
		kind: "stub",
		apply: func(ctx *ApplyContext) Result {
			require.NoError(t, ctx.View.Insert(key(7), []byte("committed")))
			ctx.Effects.Record(Effect{Kind: EffectCreate, Amount: 1})
			return ResOK
		},
	})

	require.Equal(t, ResOK, res.Code)
	require.Len(t, res.Effects, 1)
	require.Equal(t, []byte("committed"), base.entries[key(7)])
}

func TestEngineDiscardsOnFailure(t *testing.T) {
	base := newMemView()
	base.entries[key(1)] = []byte("before")
	engine := NewEngine(base, solana.NewWallet().PublicKey())

	cause := errors.New("ran out of funds")
	res := engine.Apply(&stubInstruction{
		kind: "stub",
		apply: func(ctx *ApplyContext) Result {
			require.NoError(t, ctx.View.Update(key(1), []byte("after")))
			ctx.Effects.Record(Effect{Kind: EffectTransfer, Amount: 9})
			return ctx.FailWith(ResInsufficientFunds, cause)
		},
	})

	require.Equal(t, ResInsufficientFunds, res.Code)
	require.ErrorIs(t, res.Err, cause)
	require.Empty(t, res.Effects)
	require.Equal(t, []byte("before"), base.entries[key(1)])
}

func TestEngineRejectionCodes(t *testing.T) {
	engine := NewEngine(newMemView(), solana.NewWallet().PublicKey())

	tests := []struct {
		name string
		err  error
		want Result
	}{
		{"invalid argument", ErrInvalidArgument, ResInvalidArgument},
		{"wrapped invalid argument", errors.Join(errors.New("amount"), ErrInvalidArgument), ResInvalidArgument},
		{"address mismatch", ErrAddressMismatch, ResAddressMismatch},
		{"plain error", errors.New("anything else"), ResInvalidArgument},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := engine.Apply(&stubInstruction{kind: "stub", validateErr: tc.err})
			require.Equal(t, tc.want, res.Code)
			require.ErrorIs(t, res.Err, tc.err)
		})
	}
}

func TestEngineRecordsHistory(t *testing.T) {
	recorder := &memRecorder{}
	signer := solana.NewWallet().PublicKey()
	engine := NewEngine(newMemView(), solana.NewWallet().PublicKey(), WithHistory(recorder))

	require.Equal(t, ResOK, engine.Apply(&stubInstruction{kind: "good", signer: signer}).Code)
	require.Equal(t, ResInvalidArgument, engine.Apply(&stubInstruction{
		kind:        "bad",
		signer:      signer,
		validateErr: ErrInvalidArgument,
	}).Code)

	require.Len(t, recorder.records, 2)
	require.Equal(t, "good", recorder.records[0].Kind)
	require.Equal(t, ResOK, recorder.records[0].Code)
	require.Equal(t, signer.String(), recorder.records[0].Signer)
	require.Equal(t, "bad", recorder.records[1].Kind)
	require.Equal(t, ResInvalidArgument, recorder.records[1].Code)
	require.False(t, recorder.records[0].AppliedAt.IsZero())
}

func TestEngineHistoryFailureIsBestEffort(t *testing.T) {
	base := newMemView()
	recorder := &memRecorder{err: errors.New("history store down")}
	engine := NewEngine(base, solana.NewWallet().PublicKey(), WithHistory(recorder))

	res := engine.Apply(&stubInstruction{
		kind: "stub",
		apply: func(ctx *ApplyContext) Result {
			require.NoError(t, ctx.View.Insert(key(3), []byte("kept")))
			return ResOK
		},
	})

	// The commit stands even though recording failed.
	require.Equal(t, ResOK, res.Code)
	require.Equal(t, []byte("kept"), base.entries[key(3)])
}

func TestResultProperties(t *testing.T) {
	require.True(t, ResOK.Success())
	require.False(t, ResOK.Rejected())

	require.False(t, ResInsufficientFunds.Success())
	require.False(t, ResInsufficientFunds.Rejected())
	require.True(t, ResInvalidArgument.Rejected())
	require.True(t, ResAddressMismatch.Rejected())

	require.True(t, ResCollaboratorFailure.Retryable())
	require.False(t, ResUnauthorized.Retryable())

	require.Equal(t, "InsufficientFunds", ResInsufficientFunds.String())
	require.Equal(t, "Result(42)", Result(42).String())
}

func TestInstructionRegistry(t *testing.T) {
	Register("engine_test_stub", func() Instruction { return &stubInstruction{kind: "engine_test_stub"} })

	instr, err := New("engine_test_stub")
	require.NoError(t, err)
	require.Equal(t, "engine_test_stub", instr.Kind())

	_, err = New("no_such_kind")
	require.Error(t, err)

	require.Contains(t, Kinds(), "engine_test_stub")

	require.Panics(t, func() {
		Register("engine_test_stub", func() Instruction { return nil })
	})
}
