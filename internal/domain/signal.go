package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrMalformedSignal = errors.New("malformed signal")

// Signal is a decoded client message. The set of implementations is closed:
// JoinRoom, Offer, Answer and IceCandidate.
type Signal interface {
	RoomName() RoomName
	isSignal()
}

type JoinRoom struct {
	Room RoomName
}

type Offer struct {
	Room RoomName
	SDP  string
}

type Answer struct {
	Room RoomName
	SDP  string
}

type IceCandidate struct {
	Room      RoomName
	Candidate string
}

func (m JoinRoom) RoomName() RoomName     { return m.Room }
func (m Offer) RoomName() RoomName        { return m.Room }
func (m Answer) RoomName() RoomName       { return m.Room }
func (m IceCandidate) RoomName() RoomName { return m.Room }

func (JoinRoom) isSignal()     {}
func (Offer) isSignal()        {}
func (Answer) isSignal()       {}
func (IceCandidate) isSignal() {}

const (
	TypeJoinRoom     = "JoinRoom"
	TypeOffer        = "Offer"
	TypeAnswer       = "Answer"
	TypeIceCandidate = "IceCandidate"
	TypePeers        = "peers"
	TypeError        = "error"
)

// DecodeSignal parses one text frame. Keys match exactly and may appear only
// once. Every field of the variant named by "type" must be present; payload
// strings are kept as-is and unknown keys are ignored.
func DecodeSignal(data []byte) (Signal, error) {
	fields, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignal, err)
	}
	typ, err := stringField(fields, "type")
	if err != nil {
		return nil, err
	}
	roomStr, err := stringField(fields, "room")
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, typ)
	}
	room := RoomName(roomStr)

	switch typ {
	case TypeJoinRoom:
		return JoinRoom{Room: room}, nil
	case TypeOffer, TypeAnswer:
		sdp, err := stringField(fields, "sdp")
		if err != nil {
			return nil, fmt.Errorf("%w (%s)", err, typ)
		}
		if typ == TypeOffer {
			return Offer{Room: room, SDP: sdp}, nil
		}
		return Answer{Room: room, SDP: sdp}, nil
	case TypeIceCandidate:
		candidate, err := stringField(fields, "candidate")
		if err != nil {
			return nil, fmt.Errorf("%w (%s)", err, typ)
		}
		return IceCandidate{Room: room, Candidate: candidate}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedSignal, typ)
	}
}

// decodeObject reads a single JSON object into its raw members, failing on a
// repeated key or trailing data.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not an object")
	}
	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("bad object key")
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("duplicate key %q", key)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		fields[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}
	return fields, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return "", fmt.Errorf("%w: missing %s", ErrMalformedSignal, key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s is not a string", ErrMalformedSignal, key)
	}
	return s, nil
}

// PeersMessage is sent to both members when a room fills up.
type PeersMessage struct {
	Type  string     `json:"type"`
	Peers []Identity `json:"peers"`
}

func NewPeersMessage(peers []Identity) PeersMessage {
	return PeersMessage{Type: TypePeers, Peers: peers}
}

// ErrorMessage is reported to the connection whose action failed.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

const (
	MsgRoomFull = "Room full"
	MsgNoPeer   = "No peer in room"
)

func NewErrorMessage(msg string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: msg}
}
