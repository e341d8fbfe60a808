package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mail-cci/phishguard/internal/types"
)

func TestMetadata(t *testing.T) {
	a := newTestAnalyzer()

	t.Run("consistent message", func(t *testing.T) {
		signal := a.Metadata(&types.MetadataView{
			Authentication: types.AuthResults{SPF: types.AuthPass},
			XMailer:        "Postfix 3.7",
		})
		assert.False(t, signal.Suspicious)
		assert.Zero(t, signal.Score)
	})

	t.Run("reply-to mismatch", func(t *testing.T) {
		signal := a.Metadata(&types.MetadataView{
			ReplyToMismatch: true,
			Authentication:  types.AuthResults{SPF: types.AuthPass},
		})
		assert.True(t, signal.Suspicious)
		assert.True(t, signal.Flag("reply_to_mismatch"))
		assert.InDelta(t, 2.5, signal.Score, 0.001)
	})

	t.Run("missing authentication header", func(t *testing.T) {
		signal := a.Metadata(&types.MetadataView{})
		assert.True(t, signal.Flag("auth_header_absent"))
		assert.False(t, signal.Suspicious, "absence alone is a soft signal")
	})

	t.Run("unknown mailer", func(t *testing.T) {
		signal := a.Metadata(&types.MetadataView{
			XMailer:        "Unknown Mailer v0.1",
			Authentication: types.AuthResults{SPF: types.AuthPass},
		})
		assert.True(t, signal.Suspicious)
		assert.True(t, signal.Flag("unknown_mailer"))
	})
}

func TestIPAnalysis(t *testing.T) {
	a := newTestAnalyzer()

	t.Run("ordinary routing", func(t *testing.T) {
		signal := a.IPAnalysis(&types.MetadataView{
			IPs:           []string{"93.184.216.34", "198.51.100.7"},
			OriginatingIP: "93.184.216.34",
		})
		assert.False(t, signal.Suspicious)
		assert.Zero(t, signal.Score)
	})

	t.Run("too many distinct ips", func(t *testing.T) {
		signal := a.IPAnalysis(&types.MetadataView{
			IPs:           []string{"1.1.1.1", "2.2.2.2", "3.3.3.3", "4.4.4.4", "5.5.5.5", "6.6.6.6"},
			OriginatingIP: "1.1.1.1",
		})
		assert.True(t, signal.Flag("many_ips"))
		assert.InDelta(t, 1.5, signal.Score, 0.001)
	})

	t.Run("no public originating ip", func(t *testing.T) {
		signal := a.IPAnalysis(&types.MetadataView{IPs: []string{"192.168.0.1"}})
		assert.True(t, signal.Flag("no_originating_ip"))
		assert.InDelta(t, 2, signal.Score, 0.001)
	})
}
