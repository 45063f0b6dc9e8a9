package pickbylight

import (
	"bytes"
	"context"
	"encoding/binary"
	"image/color"
	"net"
	"testing"
	"time"

	"github.com/assys/brickguide/pkg/brick"
)

func TestDMXPacket(t *testing.T) {
	pkt, err := dmxPacket(0x123, 7, []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pkt[:8], []byte("Art-Net\x00")) {
		t.Errorf("id = %q", pkt[:8])
	}
	if op := binary.LittleEndian.Uint16(pkt[8:]); op != 0x5000 {
		t.Errorf("opcode = %#x, want 0x5000", op)
	}
	if v := binary.BigEndian.Uint16(pkt[10:]); v != 14 {
		t.Errorf("protocol version = %d, want 14", v)
	}
	if pkt[12] != 7 {
		t.Errorf("sequence = %d, want 7", pkt[12])
	}
	if pkt[14] != 0x23 || pkt[15] != 0x01 {
		t.Errorf("SubUni/Net = %#x/%#x, want 0x23/0x01", pkt[14], pkt[15])
	}
	if n := binary.BigEndian.Uint16(pkt[16:]); n != 4 {
		t.Errorf("length = %d, want 4 (padded to even)", n)
	}
	if !bytes.Equal(pkt[18:], []byte{1, 2, 3, 0}) {
		t.Errorf("data = %v", pkt[18:])
	}
}

func TestDMXPacketLimits(t *testing.T) {
	if _, err := dmxPacket(0x8000, 1, []byte{1}); err == nil {
		t.Error("universe above 15 bits accepted")
	}
	if _, err := dmxPacket(0, 1, nil); err == nil {
		t.Error("empty data accepted")
	}
	if _, err := dmxPacket(0, 1, make([]byte, 513)); err == nil {
		t.Error("more than 512 channels accepted")
	}
}

// listen starts a UDP sink and returns a controller aimed at it.
func listen(t *testing.T, leds int) (*Controller, net.PacketConn) {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pc.Close() })

	port := pc.LocalAddr().(*net.UDPAddr).Port
	c, err := NewController(ControllerOptions{Host: "127.0.0.1", Port: port, LEDCount: leds})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.conn.Close() })
	return c, pc
}

func readFrame(t *testing.T, pc net.PacketConn) []byte {
	t.Helper()
	buf := make([]byte, 1024)
	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return buf[18:n]
}

func TestControllerHighlight(t *testing.T) {
	c, pc := listen(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	if frame := readFrame(t, pc); !bytes.Equal(frame, make([]byte, 12)) {
		t.Errorf("initial frame = %v, want all off", frame)
	}

	if err := c.Highlight(ctx, 2, color.RGBA{R: 255, G: 255, A: 255}); err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 0, 0, 0, 0, 255, 255, 0, 0, 0, 0}
	if frame := readFrame(t, pc); !bytes.Equal(frame, want) {
		t.Errorf("frame = %v, want %v", frame, want)
	}

	// A second highlight replaces the first.
	c.Highlight(ctx, 0, color.RGBA{})
	want = []byte{255, 255, 255, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	if frame := readFrame(t, pc); !bytes.Equal(frame, want) {
		t.Errorf("frame = %v, want default white at 0", frame)
	}

	cancel()
	if frame := readFrame(t, pc); !bytes.Equal(frame, make([]byte, 12)) {
		t.Errorf("shutdown frame = %v, want all off", frame)
	}
	if err := <-done; err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestControllerRejects(t *testing.T) {
	c, _ := listen(t, 4)
	if err := c.Highlight(context.Background(), 4, color.RGBA{}); err == nil {
		t.Error("out-of-range location accepted")
	}
	if _, err := NewController(ControllerOptions{}); err == nil {
		t.Error("controller without host accepted")
	}
	if _, err := NewController(ControllerOptions{Host: "127.0.0.1", LEDCount: 200}); err == nil {
		t.Error("more LEDs than one universe holds accepted")
	}
}

type recordingSignaler struct {
	highlighted []int
	colors      []color.RGBA
	clears      int
}

func (r *recordingSignaler) Highlight(_ context.Context, loc int, c color.RGBA) error {
	r.highlighted = append(r.highlighted, loc)
	r.colors = append(r.colors, c)
	return nil
}

func (r *recordingSignaler) Clear(context.Context) error {
	r.clears++
	return nil
}

func TestPicker(t *testing.T) {
	s := NewStorage(8)
	s.Add(Bin{Location: 3, Width: 2, Length: 4, Color: "yellow", Count: 5})
	sig := &recordingSignaler{}
	p := NewPicker(s, sig)
	ctx := context.Background()

	bin, found, err := p.Pick(ctx, brick.Placement{Width: 4, Height: 2, Color: "yellow"})
	if err != nil || !found || bin.Location != 3 {
		t.Fatalf("Pick = %+v, %v, %v", bin, found, err)
	}
	if len(sig.highlighted) != 1 || sig.highlighted[0] != 3 {
		t.Errorf("highlighted = %v, want [3]", sig.highlighted)
	}
	if sig.colors[0] != brick.LEDColor("yellow") {
		t.Errorf("color = %v, want LED yellow", sig.colors[0])
	}

	if _, found, _ := p.Pick(ctx, brick.Placement{Width: 1, Height: 1, Color: "red"}); found {
		t.Error("Pick found a bin for an unstored brick")
	}
	if sig.clears != 1 {
		t.Errorf("clears = %d, want 1", sig.clears)
	}
}

func TestNoopSignaler(t *testing.T) {
	p := NewPicker(NewStorage(1), nil)
	if _, ok := p.Signaler.(NoopSignaler); !ok {
		t.Errorf("nil signaler = %T, want NoopSignaler", p.Signaler)
	}
	if err := p.Clear(context.Background()); err != nil {
		t.Error(err)
	}
}
