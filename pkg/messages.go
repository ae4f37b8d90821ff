package pkg

import (
	"encoding/json"
	"fmt"
)

type MessageType int

const (
	TypeMessageTransport MessageType = iota
	TypeMessageLoad
	TypeMessageMove
	TypeMessageAdvise
	TypeMessagePlace
	TypeMessageAuto
	TypeMessageState
	TypeMessageAdvice
	TypeMessageError
	TypeMessageGrant
	TypeMessageNew
	TypeMessageEngine
)

func (m MessageType) String() string {
	switch m {
	case TypeMessageTransport:
		return "TypeMessageTransport"
	case TypeMessageLoad:
		return "TypeMessageLoad"
	case TypeMessageMove:
		return "TypeMessageMove"
	case TypeMessageAdvise:
		return "TypeMessageAdvise"
	case TypeMessagePlace:
		return "TypeMessagePlace"
	case TypeMessageAuto:
		return "TypeMessageAuto"
	case TypeMessageState:
		return "TypeMessageState"
	case TypeMessageAdvice:
		return "TypeMessageAdvice"
	case TypeMessageError:
		return "TypeMessageError"
	case TypeMessageGrant:
		return "TypeMessageGrant"
	case TypeMessageNew:
		return "TypeMessageNew"
	case TypeMessageEngine:
		return "TypeMessageEngine"
	default:
		return "Unknown MessageType"
	}
}

type MessageInterface interface {
	Type() MessageType
}

// Encode marshals a message. Messages are plain structs, so a failure here
// is a programming error.
func Encode(m interface{}) json.RawMessage {
	data, err := json.Marshal(m)
	if err != nil {
		panic(fmt.Sprintf("encode %T: %v", m, err))
	}
	return data
}

func Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// Wrap puts a message in its transport envelope.
func Wrap(m MessageInterface) MessageTransport {
	return MessageTransport{MsgType: m.Type(), Data: Encode(m)}
}

// Message types

// MessageTransport is the envelope every line on the wire carries.
type MessageTransport struct {
	MsgType MessageType
	Data    json.RawMessage
}

func (m MessageTransport) Type() MessageType { return TypeMessageTransport }

// MessageLoad replaces the session's game. An empty Fen loads the initial
// position.
type MessageLoad struct {
	Fen string
}

func (m MessageLoad) Type() MessageType { return TypeMessageLoad }

// MessageMove plays a move in UCI notation.
type MessageMove struct {
	Move string
}

func (m MessageMove) Type() MessageType { return TypeMessageMove }

type MessageAdvise struct{}

func (m MessageAdvise) Type() MessageType { return TypeMessageAdvise }

type MessagePlace struct {
	Square string
}

func (m MessagePlace) Type() MessageType { return TypeMessagePlace }

// MessageAuto asks for advice and places the piece when the advice is to
// use it.
type MessageAuto struct{}

func (m MessageAuto) Type() MessageType { return TypeMessageAuto }

// MessageGrant sets the pending reinforcement by hand, replacing the one
// derived from material.
type MessageGrant struct {
	Side  string
	Piece string
}

func (m MessageGrant) Type() MessageType { return TypeMessageGrant }

// MessageNew starts a game from a random Garrison setup. A non-zero Seed
// makes the setup reproducible.
type MessageNew struct {
	Seed int64
}

func (m MessageNew) Type() MessageType { return TypeMessageNew }

// MessageEngine lets the engine play the side to move.
type MessageEngine struct{}

func (m MessageEngine) Type() MessageType { return TypeMessageEngine }

type PendingView struct {
	Side    string
	Piece   string
	Squares []string
}

type MessageState struct {
	Fen     string
	Turn    string
	Pending *PendingView
	Applied bool
	Over    bool
	Result  string
}

func (m MessageState) Type() MessageType { return TypeMessageState }

type FactorsView struct {
	KingDanger      float64
	MaterialDeficit float64
	GamePhase       float64
	PieceActivity   float64
	Timing          float64
}

type MessageAdvice struct {
	Verdict    string
	Reason     string
	Use        bool
	Score      float64
	Threshold  float64
	Factors    FactorsView
	Evaluation *float64
	Square     string
	Placed     bool
	// Move is the move the engine played, in UCI notation.
	Move       string
	State      MessageState
}

func (m MessageAdvice) Type() MessageType { return TypeMessageAdvice }

type MessageError struct {
	Msg string
}

func (m MessageError) Type() MessageType { return TypeMessageError }
