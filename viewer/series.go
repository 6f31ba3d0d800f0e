package viewer

import (
	"github.com/achilleasa/tiletrace/renderer"
	"github.com/achilleasa/tiletrace/types"
	"github.com/go-gl/gl/v2.1/gl"
)

// Frame time history. Series 0 tracks progressive frames and series 1
// tracks fallback frames.
type stackedSeries struct {
	series [][]float32
	colors []types.Vec3
}

func makeStackedSeries(numSeries, histCount int) *stackedSeries {
	s := &stackedSeries{
		series: make([][]float32, numSeries),
		colors: []types.Vec3{
			types.XYZ(0.2, 0.8, 1.0),
			types.XYZ(1.0, 0.6, 0.1),
		},
	}

	for sIndex := 0; sIndex < numSeries; sIndex++ {
		s.series[sIndex] = make([]float32, histCount)
	}

	return s
}

// Clear series
func (s *stackedSeries) Clear() {
	histCount := len(s.series[0])
	for sIndex := 0; sIndex < len(s.series); sIndex++ {
		s.series[sIndex] = make([]float32, histCount)
	}
}

// Shift series values and append new value at the end.
func (s *stackedSeries) Append(seriesIndex int, val float32) {
	s.series[seriesIndex] = append(s.series[seriesIndex][1:], val)
}

// Append the last frame time to the series matching the frame mode.
func (s *stackedSeries) AppendFrame(stats renderer.FrameStats) {
	ms := float32(stats.LastFrameTime.Seconds() * 1000)
	if stats.Mode == renderer.Invalidated {
		s.Append(0, 0)
		s.Append(1, ms)
		return
	}
	s.Append(0, ms)
	s.Append(1, 0)
}

func (s *stackedSeries) Render(rY, rHeight uint32) {
	var maxSum float32
	for x := 0; x < len(s.series[0]); x++ {
		var sum float32
		for seriesIndex := 0; seriesIndex < len(s.series); seriesIndex++ {
			sum += s.series[seriesIndex][x]
		}
		if sum > maxSum {
			maxSum = sum
		}
	}

	var scale float32 = 1.0
	if maxSum > 0.0 {
		scale = float32(rHeight) / maxSum
	}

	gl.LineWidth(1.0)
	gl.Begin(gl.LINES)
	for x := 0; x < len(s.series[0]); x++ {
		y := float32(rY + rHeight)
		for seriesIndex := 0; seriesIndex < len(s.series); seriesIndex++ {
			sH := s.series[seriesIndex][x] * scale
			gl.Color3fv(&s.colors[seriesIndex][0])
			gl.Vertex2f(float32(x), y)
			gl.Vertex2f(float32(x), y-sH)
			y -= sH
		}
	}
	gl.End()
}
