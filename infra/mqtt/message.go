package mqtt

import (
	"encoding/json"

	"github.com/kilianp07/fleetsim/core/model"
)

// ControlMessage is published on the control topic.
type ControlMessage struct {
	ID     string          `json:"id"`
	Method model.Method    `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// RegisterMessage is published on the register topic. Sender names the
// observer and selects its report topic.
type RegisterMessage struct {
	Sender string `json:"sender"`
}
