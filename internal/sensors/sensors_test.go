package sensors

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/resistive_touch/internal/config"
	"github.com/relabs-tech/resistive_touch/internal/touch"
)

type fakeConn struct {
	writes [][]byte
	resp   []byte
	err    error
	csLow  func() bool
	sawLow []bool
}

func (c *fakeConn) Tx(w, r []byte) error {
	c.writes = append(c.writes, append([]byte(nil), w...))
	if c.csLow != nil {
		c.sawLow = append(c.sawLow, c.csLow())
	}
	if c.err != nil {
		return c.err
	}
	copy(r, c.resp)
	return nil
}

type fakePin struct {
	level gpio.Level
	outs  []gpio.Level
}

func (p *fakePin) Out(l gpio.Level) error {
	p.level = l
	p.outs = append(p.outs, l)
	return nil
}

func (p *fakePin) Read() gpio.Level { return p.level }

func TestSPITransportExchange(t *testing.T) {
	t.Run("frame layout", func(t *testing.T) {
		conn := &fakeConn{resp: []byte{0x00, 0x3E, 0x80}}
		tr := newSPITransport("spidev0.1", conn, nil, nil)

		v, err := tr.Exchange(touch.CmdX)
		require.NoError(t, err)
		assert.Equal(t, uint16(0x3E80), v)
		assert.Equal(t, []byte{touch.CmdX, 0, 0}, conn.writes[0])
		assert.NoError(t, tr.Close())
	})

	t.Run("manual chip select", func(t *testing.T) {
		cs := &fakePin{level: gpio.High}
		conn := &fakeConn{resp: []byte{0, 0, 0}}
		conn.csLow = func() bool { return cs.level == gpio.Low }
		tr := newSPITransport("spidev0.1", conn, cs, nil)

		_, err := tr.Exchange(touch.CmdZ1)
		require.NoError(t, err)
		assert.Equal(t, []bool{true}, conn.sawLow)
		assert.Equal(t, []gpio.Level{gpio.Low, gpio.High}, cs.outs)
	})

	t.Run("bus error releases chip select", func(t *testing.T) {
		cs := &fakePin{level: gpio.High}
		boom := errors.New("bus gone")
		tr := newSPITransport("spidev0.1", &fakeConn{err: boom}, cs, nil)

		_, err := tr.Exchange(touch.CmdY)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, gpio.High, cs.level)
	})
}

type fakeSerial struct {
	in     bytes.Buffer
	out    bytes.Buffer
	closed bool
}

func (s *fakeSerial) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s *fakeSerial) Write(p []byte) (int, error) { return s.out.Write(p) }
func (s *fakeSerial) Close() error                { s.closed = true; return nil }

func TestSerialTransportExchange(t *testing.T) {
	port := &fakeSerial{}
	port.in.Write([]byte{0x12, 0x34, 0x7F})
	tr := &SerialTransport{name: "ttyUSB0", port: port}

	v, err := tr.Exchange(touch.CmdZ2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)
	assert.Equal(t, []byte{touch.CmdZ2}, port.out.Bytes())

	_, err = tr.Exchange(touch.CmdX)
	assert.Error(t, err, "short response")

	require.NoError(t, tr.Close())
	assert.True(t, port.closed)
}

type fakeValue struct {
	v   int
	err error
}

func (f *fakeValue) Value() (int, error) { return f.v, f.err }
func (f *fakeValue) Close() error        { return nil }

func TestTouchLines(t *testing.T) {
	pin := &fakePin{level: gpio.High}
	pl := &PinLine{pin: pin}
	assert.False(t, pl.Asserted())
	pin.level = gpio.Low
	assert.True(t, pl.Asserted())

	val := &fakeValue{v: 1}
	cl := &CdevLine{line: val, name: "gpiochip0:17"}
	assert.False(t, cl.Asserted())
	val.v = 0
	assert.True(t, cl.Asserted())
	val.err = errors.New("EIO")
	assert.False(t, cl.Asserted())
}

func TestMockPanel(t *testing.T) {
	p := NewMockPanel(touch.DefaultProfile, 0)
	now := p.start
	p.now = func() time.Time { return now }

	read := func(cmd byte) int {
		v, err := p.Exchange(cmd)
		require.NoError(t, err)
		return int(v >> 3)
	}

	// phase 0: right-most point of the circle
	now = p.start
	assert.Equal(t, 2015+1298, read(touch.CmdX))
	assert.Equal(t, 2062, read(touch.CmdY))
	assert.Greater(t, read(touch.CmdZ2)-read(touch.CmdZ1), 500)

	now = p.start.Add(3500 * time.Millisecond)
	assert.Less(t, read(touch.CmdZ1), 50, "lifted")

	now = p.start.Add(4750 * time.Millisecond)
	x, y := read(touch.CmdX), read(touch.CmdY)
	assert.InDelta(t, 2015, x, 2)
	assert.InDelta(t, 2062+1293, y, 2)
}

func TestNewTouchDeviceMock(t *testing.T) {
	cfg := config.Default()
	cfg.TouchTransport = config.TransportMock

	d, err := NewTouchDevice(cfg)
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, touch.DefaultProfile, d.Profile())
	pressed, err := d.IsTouched()
	require.NoError(t, err)
	assert.True(t, pressed, "mock stroke starts pressed")
}

func TestNewTouchDeviceMockIgnoresIRQ(t *testing.T) {
	for _, tc := range []struct {
		name string
		set  func(*config.Config)
	}{
		{"periph pin", func(c *config.Config) { c.TouchIRQPin = "GPIO17" }},
		{"gpiochip line", func(c *config.Config) { c.TouchIRQChip, c.TouchIRQLine = "gpiochip0", 17 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.TouchTransport = config.TransportMock
			tc.set(cfg)

			d, err := NewTouchDevice(cfg)
			require.NoError(t, err)
			defer d.Close()

			assert.Empty(t, d.closers, "no GPIO handle opened")
			assert.False(t, d.Config().UseTouchLine)
			pressed, err := d.IsTouched()
			require.NoError(t, err)
			assert.True(t, pressed)
		})
	}
}
