package ws

import (
	"encoding/json"

	"github.com/kilianp07/fleetsim/core/model"
)

// Method names accepted from observers.
const (
	MethodRegisterObserver = "registerObserver"
	// MethodRegisterUI is the name used by the original web GUI.
	MethodRegisterUI     = "registerUI"
	MethodCreateVehicle  = "createVehicle"
	MethodListVehicles   = "listVehicles"
	MethodListObservers  = "listObservers"
	MethodControl        = "control"
	MethodUpdatePosition = "updatePosition"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeServerError    = -32000
)

const version = "2.0"

// Request is a JSON-RPC request sent by an observer. Requests without an id
// are notifications and receive no response.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response answers a Request.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Notification is pushed to observers; updatePosition carries a model.Report.
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// ControlParams are the parameters of control.
type ControlParams struct {
	ID     string          `json:"id"`
	Method model.Method    `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

func result(id json.RawMessage, v any) Response {
	return Response{JSONRPC: version, ID: id, Result: v}
}

func failure(id json.RawMessage, code int, msg string) Response {
	return Response{JSONRPC: version, ID: id, Error: &Error{Code: code, Message: msg}}
}
