package model

import (
	"encoding/json"
	"strings"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Message struct {
	Role string
	Text string
}

type messagePart struct {
	Text string `json:"text"`
}

type messageJSON struct {
	Role  string        `json:"role"`
	Parts []messagePart `json:"parts"`
}

// MarshalJSON writes the generateContent shape {role, parts:[{text}]} that
// chat clients render.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{Role: m.Role, Parts: []messagePart{{Text: m.Text}}})
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var text strings.Builder
	for _, p := range raw.Parts {
		text.WriteString(p.Text)
	}
	m.Role = raw.Role
	m.Text = text.String()
	return nil
}
