package realtime

import "encoding/json"

type MessageType string

const (
	TypeUserConnected    MessageType = "userConnected"
	TypeUserDisconnected MessageType = "userDisconnected"
	TypeShutdown         MessageType = "shutdown"
)

type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func marshalMessage(msgType MessageType, payload any) ([]byte, error) {
	msg := Message{Type: msgType}
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = payloadBytes
	}
	return json.Marshal(&msg)
}
