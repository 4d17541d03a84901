package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportReferenceRoom(t *testing.T) {
	res, err := Calculate(newTestRoom(), newTestParams())
	require.NoError(t, err)

	r := res.Report
	assert.Contains(t, r, "Room Envelope Heat Loss Report")
	assert.Contains(t, r, "5.00 x 4.00 x 2.50 m")
	assert.Contains(t, r, "20.00 m²")
	assert.Contains(t, r, "50.00 m³")
	assert.Contains(t, r, "1.700")
	assert.Contains(t, r, "162 W (33.3%)")
	assert.Contains(t, r, "189 W (38.9%)")
	assert.Contains(t, r, "60 W (12.3%)")
	assert.Contains(t, r, "75 W (15.4%)")
	assert.Contains(t, r, "486 W")
	assert.Contains(t, r, "286 W")
	assert.Contains(t, r, "temperature difference 15.0 K, heating")
	assert.Contains(t, r, "enable optimize")
	assert.NotContains(t, r, "Warnings")
}

func TestReportOptimizationBlock(t *testing.T) {
	res, err := Calculate(newTestRoom(), newTestParams(optimizing(400)))
	require.NoError(t, err)

	assert.Contains(t, res.Report, "Target heat loss:")
	assert.Contains(t, res.Report, "400 W")
	assert.Contains(t, res.Report, "0.300 W/m²K")
	assert.Contains(t, res.Report, "0.141 W/m²K")
	assert.Contains(t, res.Report, "132 mm")
	assert.Contains(t, res.Report, "5.26 x 4.26 x 2.63 m")
	assert.NotContains(t, res.Report, "enable optimize")
}

func TestReportUnachievableListsWarning(t *testing.T) {
	res, err := Calculate(newTestRoom(), newTestParams(optimizing(300)))
	require.NoError(t, err)

	assert.Contains(t, res.Report, "Target not achievable")
	assert.Contains(t, res.Report, "Warnings")
	assert.Contains(t, res.Report, "windows, roof and floor already lose 324 W")
}

func TestReportIsDeterministic(t *testing.T) {
	room, p := newTestRoom(), newTestParams(optimizing(450))
	a, err := Calculate(room, p)
	require.NoError(t, err)
	b, err := Calculate(room, p)
	require.NoError(t, err)
	assert.Equal(t, a.Report, b.Report)
	assert.Equal(t, Report(room, p, a), a.Report)
}

func TestReportZeroTotalHasNoNaN(t *testing.T) {
	res, err := Calculate(newTestRoom(), newTestParams(func(p *Params) {
		p.ExternalTemperature = p.DesiredTemperature
	}))
	require.NoError(t, err)
	assert.NotContains(t, res.Report, "NaN")
	assert.Contains(t, res.Report, "0 W (0.0%)")
}
