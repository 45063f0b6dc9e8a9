package pickbylight

import (
	"encoding/binary"
	"fmt"
)

// Art-Net constants for ArtDmx packets.
const (
	DefaultPort = 6454

	opDmx       = 0x5000
	protVersion = 14
	maxChannels = 512
)

var artnetID = [8]byte{'A', 'r', 't', '-', 'N', 'e', 't', 0}

// dmxPacket encodes an ArtDmx packet for universe (15-bit port address).
// DMX data is padded to an even length as the protocol requires.
func dmxPacket(universe int, sequence uint8, data []byte) ([]byte, error) {
	if universe < 0 || universe > 0x7fff {
		return nil, fmt.Errorf("universe %d out of range", universe)
	}
	if len(data) == 0 || len(data) > maxChannels {
		return nil, fmt.Errorf("dmx length %d out of range [1, %d]", len(data), maxChannels)
	}
	n := len(data) + len(data)%2

	pkt := make([]byte, 18+n)
	copy(pkt, artnetID[:])
	binary.LittleEndian.PutUint16(pkt[8:], opDmx)
	binary.BigEndian.PutUint16(pkt[10:], protVersion)
	pkt[12] = sequence
	pkt[13] = 0                   // physical
	pkt[14] = byte(universe)      // SubUni
	pkt[15] = byte(universe >> 8) // Net
	binary.BigEndian.PutUint16(pkt[16:], uint16(n))
	copy(pkt[18:], data)
	return pkt, nil
}
