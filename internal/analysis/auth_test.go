package analysis

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mail-cci/phishguard/internal/types"
)

// staticSPFChecker always answers with the same verdict.
type staticSPFChecker string

func (s staticSPFChecker) CheckSPFHost(context.Context, net.IP, string, string) string {
	return string(s)
}

func TestParseAuthenticationResults(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected types.AuthResults
	}{
		{
			name:   "all mechanisms",
			header: "mx.example.com; spf=pass smtp.mailfrom=example.com; dkim=pass header.d=example.com; dmarc=pass",
			expected: types.AuthResults{
				SPF: types.AuthPass, DKIM: types.AuthPass, DMARC: types.AuthPass,
				DKIMDomain: "example.com",
			},
		},
		{
			name:   "failures with mixed case",
			header: "mx.example.com; SPF=FAIL; DKIM=fail; DMARC=Fail",
			expected: types.AuthResults{
				SPF: types.AuthFail, DKIM: types.AuthFail, DMARC: types.AuthFail,
			},
		},
		{
			name:   "softfail and neutral",
			header: "mx.example.com; spf=softfail; dkim=neutral",
			expected: types.AuthResults{
				SPF: types.AuthSoftfail, DKIM: types.AuthNeutral,
			},
		},
		{
			name:   "arc only",
			header: "mx.example.com; arc=pass",
			expected: types.AuthResults{
				ARC: types.AuthPass,
			},
		},
		{
			name:     "empty header",
			header:   "",
			expected: types.AuthResults{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseAuthenticationResults(tt.header))
		})
	}
}

func TestAuthentication(t *testing.T) {
	a := newTestAnalyzer()

	t.Run("all pass is clean", func(t *testing.T) {
		signal := a.Authentication(&types.MetadataView{
			Authentication: types.AuthResults{
				SPF: types.AuthPass, DKIM: types.AuthPass, DMARC: types.AuthPass,
			},
		})
		assert.False(t, signal.Suspicious)
		assert.Zero(t, signal.Score)
	})

	t.Run("failures raise the score", func(t *testing.T) {
		signal := a.Authentication(&types.MetadataView{
			Authentication: types.AuthResults{
				SPF: types.AuthFail, DKIM: types.AuthPass, DMARC: types.AuthFail,
			},
		})
		assert.True(t, signal.Suspicious)
		assert.True(t, signal.Flag("spf_fail"))
		assert.False(t, signal.Flag("dkim_fail"))
		assert.True(t, signal.Flag("dmarc_fail"))
		assert.InDelta(t, 5.5, signal.Score, 0.001)
	})

	t.Run("missing header is a softer signal", func(t *testing.T) {
		signal := a.Authentication(&types.MetadataView{})
		assert.False(t, signal.Suspicious)
		assert.True(t, signal.Flag("header_absent"))
		assert.InDelta(t, 2, signal.Score, 0.001)
	})

	t.Run("deep spf annotates without scoring", func(t *testing.T) {
		deep := analyzerWithPool(nil)
		deep.UseDeepSPF(staticSPFChecker("fail"))

		view := &types.MetadataView{
			From:          "alice@example.com",
			FromDomain:    "example.com",
			OriginatingIP: "93.184.216.34",
			Authentication: types.AuthResults{
				SPF: types.AuthPass, DKIM: types.AuthPass, DMARC: types.AuthPass,
			},
		}
		set := deep.Run(context.Background(), view)
		signal := set.Get(ModuleAuth)
		assert.Equal(t, "fail", signal.Details["deep_spf"])
		assert.Zero(t, signal.Score, "deep verdict is informational only")
	})

	t.Run("softfail scores below fail", func(t *testing.T) {
		soft := a.Authentication(&types.MetadataView{
			Authentication: types.AuthResults{SPF: types.AuthSoftfail},
		})
		hard := a.Authentication(&types.MetadataView{
			Authentication: types.AuthResults{SPF: types.AuthFail},
		})
		assert.Less(t, soft.Score, hard.Score)
	})
}
