package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/resistive_touch/internal/touch"
)

func dialCalibration(t *testing.T, panel *fakePanel) *websocket.Conn {
	t.Helper()

	cal := NewCalibrator(NewPanel(panel))
	cal.hold = 30 * time.Millisecond
	cal.interval = time.Millisecond
	clk := &stepClock{t: time.Unix(1700000000, 0), step: 10 * time.Millisecond}
	cal.now = clk.Now

	srv := httptest.NewServer(http.HandlerFunc(cal.HandleCalibrationWS))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

// readUntil collects responses up to and including the first one of a
// terminal type.
func readUntil(t *testing.T, conn *websocket.Conn, types ...string) []WSResponse {
	t.Helper()
	var out []WSResponse
	for {
		var resp WSResponse
		require.NoError(t, conn.ReadJSON(&resp))
		out = append(out, resp)
		for _, typ := range types {
			if resp.Type == typ {
				return out
			}
		}
	}
}

func TestCalibrationWS(t *testing.T) {
	t.Run("full session applies the corner profile", func(t *testing.T) {
		panel := &fakePanel{
			width:  240,
			height: 320,
			corners: []touch.RawPoint{
				{X: 200, Y: 250},
				{X: 3810, Y: 250},
				{X: 3810, Y: 3860},
				{X: 200, Y: 3860},
				{X: 2000, Y: 2000},
			},
		}
		conn := dialCalibration(t, panel)
		require.NoError(t, conn.WriteJSON(WSMessage{Action: "start"}))

		msgs := readUntil(t, conn, "complete", "error")

		first := msgs[0]
		assert.Equal(t, "target", first.Type)
		require.NotNil(t, first.Target)
		assert.Equal(t, "Top-Left", first.Target.Label)
		assert.Equal(t, touch.Target{Label: "Top-Left", X: 10, Y: 10}, *first.Target)
		assert.Equal(t, 0, first.Index)
		assert.Equal(t, 5, first.Total)

		var targets, captured, progress int
		for _, m := range msgs {
			switch m.Type {
			case "target":
				targets++
			case "captured":
				captured++
				require.NotNil(t, m.Capture)
				assert.Equal(t, 4, m.Capture.Samples)
			case "progress":
				progress++
				assert.Greater(t, m.Progress, 0.0)
				assert.Less(t, m.Progress, 100.0)
			}
		}
		assert.Equal(t, 5, targets)
		assert.Equal(t, 5, captured)
		assert.Positive(t, progress)

		last := msgs[len(msgs)-1]
		require.Equal(t, "complete", last.Type, last.Message)
		want := touch.Profile{XMin: 200, XMax: 3810, YMin: 250, YMax: 3860}
		require.NotNil(t, last.Profile)
		assert.Equal(t, want, *last.Profile)
		assert.Equal(t, []string{
			"TOUCH_X_MIN=200",
			"TOUCH_X_MAX=3810",
			"TOUCH_Y_MIN=250",
			"TOUCH_Y_MAX=3860",
		}, last.Config)

		applied := panel.appliedProfile()
		require.NotNil(t, applied)
		assert.Equal(t, want, *applied)
	})

	t.Run("degenerate corners report an error and keep the profile", func(t *testing.T) {
		same := touch.RawPoint{X: 1000, Y: 1000}
		panel := &fakePanel{width: 240, height: 320, corners: []touch.RawPoint{same}}
		conn := dialCalibration(t, panel)
		require.NoError(t, conn.WriteJSON(WSMessage{Action: "start"}))

		msgs := readUntil(t, conn, "complete", "error")
		last := msgs[len(msgs)-1]
		assert.Equal(t, "error", last.Type)
		assert.Nil(t, panel.appliedProfile())
	})

	t.Run("cancel stops the session", func(t *testing.T) {
		panel := &fakePanel{width: 240, height: 320, never: true}
		conn := dialCalibration(t, panel)
		require.NoError(t, conn.WriteJSON(WSMessage{Action: "start"}))

		msgs := readUntil(t, conn, "target")
		assert.Equal(t, "target", msgs[0].Type)

		require.NoError(t, conn.WriteJSON(WSMessage{Action: "cancel"}))
		msgs = readUntil(t, conn, "cancelled")
		assert.Equal(t, "cancelled", msgs[len(msgs)-1].Type)
	})

	t.Run("bus error ends the session", func(t *testing.T) {
		panel := &fakePanel{width: 240, height: 320, rawErr: errBus}
		conn := dialCalibration(t, panel)
		require.NoError(t, conn.WriteJSON(WSMessage{Action: "start"}))

		msgs := readUntil(t, conn, "error")
		assert.Equal(t, "bus down", msgs[len(msgs)-1].Message)
	})

	t.Run("unknown action", func(t *testing.T) {
		conn := dialCalibration(t, &fakePanel{width: 240, height: 320})
		require.NoError(t, conn.WriteJSON(WSMessage{Action: "bogus"}))

		msgs := readUntil(t, conn, "error")
		assert.Contains(t, msgs[0].Message, "bogus")
	})
}

func TestProfileConfigLines(t *testing.T) {
	lines := ProfileConfigLines(touch.Profile{XMin: 1, XMax: 2, YMin: 3, YMax: 4})
	assert.Equal(t, []string{"TOUCH_X_MIN=1", "TOUCH_X_MAX=2", "TOUCH_Y_MIN=3", "TOUCH_Y_MAX=4"}, lines)
}

func TestCaptureProfile(t *testing.T) {
	panel := &fakePanel{
		width:  240,
		height: 320,
		corners: []touch.RawPoint{
			{X: 300, Y: 3700},
			{X: 3700, Y: 3700},
			{X: 3700, Y: 300},
			{X: 300, Y: 300},
			{X: 2000, Y: 2000},
		},
	}
	clk := &stepClock{t: time.Unix(0, 0), step: 10 * time.Millisecond}
	var out strings.Builder

	prof, err := captureProfile(NewPanel(panel), &out, 30*time.Millisecond, 0, clk.Now)
	require.NoError(t, err)

	want := touch.Profile{XMin: 300, XMax: 3700, YMin: 300, YMax: 3700}
	assert.Equal(t, want, prof)
	assert.Equal(t, &want, panel.appliedProfile())
	assert.Contains(t, out.String(), "Touch and hold Top-Left (10,10)")
	assert.Contains(t, out.String(), "Touch and hold Center (120,160)")
	assert.Equal(t, 5, strings.Count(out.String(), "Touch and hold"))
}
