package consensus

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buildwithgrove/quorum/provider"
)

func okFrom(t *testing.T, sourceID string, value string) SourcedOutcome {
	t.Helper()
	return SourcedOutcome{
		Source:  provider.Source{Provider: provider.ID(sourceID)},
		Outcome: OkOutcome(json.RawMessage(value)),
	}
}

func errFrom(sourceID string, err RPCError) SourcedOutcome {
	return SourcedOutcome{
		Source:  provider.Source{Provider: provider.ID(sourceID)},
		Outcome: ErrOutcome(err),
	}
}

var timeoutErr = RPCError{Kind: ErrorKindTransport, Code: 1, Message: "request timed out"}

func TestReduceEquality(t *testing.T) {
	tests := []struct {
		name           string
		outcomes       Outcomes
		wantConsistent bool
		wantValue      string
	}{
		{
			name: "unanimous values",
			outcomes: Outcomes{
				okFrom(t, "alchemy-mainnet", `100`),
				okFrom(t, "ankr-mainnet", `100`),
				okFrom(t, "publicnode-mainnet", `100`),
			},
			wantConsistent: true,
			wantValue:      `100`,
		},
		{
			name: "single dissenter",
			outcomes: Outcomes{
				okFrom(t, "alchemy-mainnet", `100`),
				okFrom(t, "ankr-mainnet", `100`),
				okFrom(t, "publicnode-mainnet", `101`),
			},
			wantConsistent: false,
		},
		{
			name: "unanimous errors",
			outcomes: Outcomes{
				errFrom("alchemy-mainnet", timeoutErr),
				errFrom("ankr-mainnet", timeoutErr),
			},
			wantConsistent: true,
		},
		{
			name: "value versus error never agree",
			outcomes: Outcomes{
				okFrom(t, "alchemy-mainnet", `100`),
				errFrom("ankr-mainnet", timeoutErr),
			},
			wantConsistent: false,
		},
		{
			name:           "single provider is trivially unanimous",
			outcomes:       Outcomes{okFrom(t, "alchemy-mainnet", `{"lamports":42}`)},
			wantConsistent: true,
			wantValue:      `{"lamports":42}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			verdict := ReduceEquality(test.outcomes)
			require.Equal(t, test.wantConsistent, verdict.IsConsistent())
			if test.wantValue != "" {
				require.JSONEq(t, test.wantValue, string(verdict.ExpectConsistent().Value))
			}
			if !test.wantConsistent {
				require.Len(t, verdict.ExpectInconsistent(), len(test.outcomes))
			}
		})
	}
}

func TestReduceThreshold(t *testing.T) {
	tests := []struct {
		name           string
		min            int
		outcomes       Outcomes
		wantConsistent bool
		wantValue      string
		wantErr        *RPCError
	}{
		{
			name: "two of three agree",
			min:  2,
			outcomes: Outcomes{
				okFrom(t, "alchemy-mainnet", `5`),
				okFrom(t, "ankr-mainnet", `5`),
				okFrom(t, "publicnode-mainnet", `7`),
			},
			wantConsistent: true,
			wantValue:      `5`,
		},
		{
			name: "all three distinct",
			min:  2,
			outcomes: Outcomes{
				okFrom(t, "alchemy-mainnet", `5`),
				okFrom(t, "ankr-mainnet", `6`),
				okFrom(t, "publicnode-mainnet", `7`),
			},
			wantConsistent: false,
		},
		{
			name: "contradictory majorities stay inconsistent",
			min:  2,
			outcomes: Outcomes{
				okFrom(t, "a", `5`),
				okFrom(t, "b", `5`),
				okFrom(t, "c", `7`),
				okFrom(t, "d", `7`),
			},
			wantConsistent: false,
		},
		{
			name: "unanimous transport failure is a consistent error",
			min:  2,
			outcomes: Outcomes{
				errFrom("alchemy-mainnet", timeoutErr),
				errFrom("ankr-mainnet", timeoutErr),
				errFrom("publicnode-mainnet", timeoutErr),
			},
			wantConsistent: true,
			wantErr:        &timeoutErr,
		},
		{
			name: "error quorum outvotes a lone success",
			min:  2,
			outcomes: Outcomes{
				okFrom(t, "alchemy-mainnet", `5`),
				errFrom("ankr-mainnet", timeoutErr),
				errFrom("publicnode-mainnet", timeoutErr),
			},
			wantConsistent: true,
			wantErr:        &timeoutErr,
		},
		{
			name: "distinct errors do not group",
			min:  2,
			outcomes: Outcomes{
				errFrom("alchemy-mainnet", timeoutErr),
				errFrom("ankr-mainnet", RPCError{Kind: ErrorKindHTTP, Code: 503, Message: "service unavailable"}),
				okFrom(t, "publicnode-mainnet", `5`),
			},
			wantConsistent: false,
		},
		{
			name: "fewer outcomes than min",
			min:  3,
			outcomes: Outcomes{
				okFrom(t, "alchemy-mainnet", `5`),
				okFrom(t, "ankr-mainnet", `5`),
			},
			wantConsistent: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			verdict := ReduceThreshold(test.min, test.outcomes)
			require.Equal(t, test.wantConsistent, verdict.IsConsistent())
			if test.wantValue != "" {
				require.JSONEq(t, test.wantValue, string(verdict.ExpectConsistent().Value))
			}
			if test.wantErr != nil {
				require.Equal(t, test.wantErr, verdict.ExpectConsistent().Err)
			}
			if !test.wantConsistent {
				require.Len(t, verdict.ExpectInconsistent(), len(test.outcomes))
			}
		})
	}
}

// Input order must never change the verdict, only the breakdown order.
func TestReduceThreshold_OrderIndependent(t *testing.T) {
	a := okFrom(t, "a", `5`)
	b := okFrom(t, "b", `5`)
	c := okFrom(t, "c", `7`)

	forward := ReduceThreshold(2, Outcomes{a, b, c})
	reversed := ReduceThreshold(2, Outcomes{c, b, a})

	require.True(t, forward.IsConsistent())
	require.True(t, reversed.IsConsistent())
	require.Equal(t, forward.ExpectConsistent(), reversed.ExpectConsistent())
}

// A success value must never collide with an error whose message renders
// the same bytes.
func TestOutcomeGrouping_ValueErrorDisjoint(t *testing.T) {
	value := OkOutcome(json.RawMessage(`"transport:1:boom:"`))
	failure := ErrOutcome(RPCError{Kind: ErrorKindTransport, Code: 1, Message: "boom"})

	verdict := ReduceEquality(Outcomes{
		{Source: provider.Source{Provider: "a"}, Outcome: value},
		{Source: provider.Source{Provider: "b"}, Outcome: failure},
	})
	require.False(t, verdict.IsConsistent())
}

func TestVerdictMap(t *testing.T) {
	double := func(o Outcome) Outcome {
		if o.IsErr() {
			return o
		}
		return OkOutcome(append(json.RawMessage(`[`), append(append(json.RawMessage{}, o.Value...), ']')...))
	}

	consistent := NewConsistent(OkOutcome(json.RawMessage(`1`))).Map(double)
	require.JSONEq(t, `[1]`, string(consistent.ExpectConsistent().Value))

	inconsistent := NewInconsistent(Outcomes{
		okFrom(t, "a", `1`),
		errFrom("b", timeoutErr),
	}).Map(double)
	breakdown := inconsistent.ExpectInconsistent()
	require.JSONEq(t, `[1]`, string(breakdown[0].Outcome.Value))
	require.Equal(t, &timeoutErr, breakdown[1].Outcome.Err)
}
