package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	trade := sampleTrade("acc", 15, 250)
	trade.ID = "01HZX3K7ABCDEFGHJKMNPQRSTV"
	trade.ActualRR = 2.5
	trade.ScreenshotURL = "/screenshots/1715000000000-42.png"

	result := FormatTradeOrg(trade)

	assert.True(t, strings.HasPrefix(result, "** 2024-05-15 EURUSD LONG (01HZX3K7)\n"))
	assert.Contains(t, result, ":PROPERTIES:\n")
	assert.Contains(t, result, ":ID: 01HZX3K7ABCDEFGHJKMNPQRSTV\n")
	assert.Contains(t, result, ":ENTRY_PRICE: 1.085\n")
	assert.Contains(t, result, ":PNL_NET: 250.00\n")
	assert.Contains(t, result, ":ACTUAL_RR: 2.50\n")
	assert.Contains(t, result, ":STATUS: WIN\n")
	assert.Contains(t, result, ":STRATEGY: ICT\n")
	assert.Contains(t, result, ":SESSION: LONDON\n")
	assert.Contains(t, result, ":CONFLUENCES: FVG, OB\n")
	assert.Contains(t, result, ":END:\n")
	assert.Contains(t, result, "[[/screenshots/1715000000000-42.png][screenshot]]")
	assert.True(t, strings.HasSuffix(result, "*** Review\nclean entry\n"))
}

func TestFormatTradeOrgOptionalFields(t *testing.T) {
	t.Parallel()

	trade := Trade{ID: "T1", Symbol: "GBPUSD", Direction: Short, PnLNet: -5}
	result := FormatTradeOrg(trade)

	assert.Contains(t, result, ":STATUS: LOSS\n")
	assert.NotContains(t, result, ":STRATEGY:")
	assert.NotContains(t, result, ":CONFLUENCES:")
	assert.NotContains(t, result, "[[")
	assert.True(t, strings.HasSuffix(result, "*** Review\n- \n"))
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	a := sampleTrade("acc", 1, 10)
	a.ID = "AAAAAAAA1"
	b := sampleTrade("acc", 2, -10)
	b.ID = "BBBBBBBB2"

	out := FormatTradesOrg([]Trade{a, b})
	require.Equal(t, 1, strings.Count(out, "\n\n** "), "second heading starts after a blank line")
	assert.Less(t, strings.Index(out, "AAAAAAAA"), strings.Index(out, "BBBBBBBB"))
	assert.Empty(t, FormatTradesOrg(nil))
}
