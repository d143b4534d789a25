package flow

import "fmt"

// ProtocolClass groups a message with the set of VCs reserved for its
// routing/deadlock class (spec GLOSSARY).
type ProtocolClass int

// Message is the application-level unit: an ordered, non-empty sequence of
// packets, a destination address vector, a protocol class, a transaction id,
// and an owning terminal. Created by an application, fragmented at the
// source interface, reassembled at the destination interface, delivered
// once.
//
// Invariant: Size() == sum of each packet's Size().
type Message struct {
	ID              int
	Source          []int // source address vector
	Destination     []int // destination address vector
	ProtocolClass   ProtocolClass
	Transaction     Key
	Owner           any // back-reference to the source terminal (non-owning)
	Packets         []*Packet
	CreatedAt       int64
	nextFlitsNeeded int // remaining flit budget while fragmenting (internal bookkeeping)
}

// NewMessage constructs an empty message; packets are appended by the
// fragmentation logic in netif.Interface via AddPacket.
func NewMessage(id int, source, destination []int, class ProtocolClass, txn Key, owner any, createdAt int64) *Message {
	return &Message{
		ID:            id,
		Source:        source,
		Destination:   destination,
		ProtocolClass: class,
		Transaction:   txn,
		Owner:         owner,
		CreatedAt:     createdAt,
	}
}

// AddPacket appends a newly constructed packet (owned by this message) and
// returns it.
func (m *Message) AddPacket(numFlits int, createdAt int64) *Packet {
	pkt := NewPacket(m, len(m.Packets), numFlits, createdAt)
	m.Packets = append(m.Packets, pkt)
	return pkt
}

// Size returns the total flit count across all packets.
func (m *Message) Size() int {
	total := 0
	for _, p := range m.Packets {
		total += p.Size()
	}
	return total
}

// Validate panics if the message has zero packets (spec §8: zero-length
// messages are rejected). It does not inspect the packets' flit counts.
func (m *Message) Validate() {
	if len(m.Packets) == 0 {
		panic(fmt.Sprintf("flow: message %d has no packets", m.ID))
	}
}

// Key is a 64-bit transaction identifier packed as
// (appId:8 | termId:24 | msgId:32), per spec §3.
type Key uint64

const (
	appIDBits  = 8
	termIDBits = 24
	msgIDBits  = 32

	appIDMax  = 1 << appIDBits
	termIDMax = 1 << termIDBits
	msgIDMax  = 1 << msgIDBits
)

// NewKey packs (appID, termID, msgID) into a transaction Key. Panics if any
// field exceeds its bit budget (spec §3: appId < 256, termId < 2^24).
func NewKey(appID, termID int, msgID uint32) Key {
	if appID < 0 || appID >= appIDMax {
		panic(fmt.Sprintf("flow: appID %d out of range [0,%d)", appID, appIDMax))
	}
	if termID < 0 || termID >= termIDMax {
		panic(fmt.Sprintf("flow: termID %d out of range [0,%d)", termID, termIDMax))
	}
	return Key(uint64(appID)<<(termIDBits+msgIDBits) | uint64(termID)<<msgIDBits | uint64(msgID))
}

// AppID extracts the application id field.
func (k Key) AppID() int { return int(uint64(k) >> (termIDBits + msgIDBits)) }

// TermID extracts the terminal id field.
func (k Key) TermID() int { return int((uint64(k) >> msgIDBits) & (termIDMax - 1)) }

// MsgID extracts the message id field.
func (k Key) MsgID() uint32 { return uint32(uint64(k) & (msgIDMax - 1)) }
