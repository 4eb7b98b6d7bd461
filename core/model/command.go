package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Method names an operation a vehicle accepts through the command proxy.
type Method string

const (
	MethodGetPosition Method = "getPosition"
	MethodSetHeading  Method = "setHeading"
	MethodSetSpeed    Method = "setSpeed"
)

// String implements fmt.Stringer.
func (m Method) String() string { return string(m) }

// Command is a method invocation addressed to a vehicle.
type Command struct {
	Method Method          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Float is a finite number that also decodes from a numeric string, as sent
// by form inputs ({"speed":"12"}).
type Float float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(b []byte) error {
	var v float64
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		v = n
	} else if err := json.Unmarshal(bytes.TrimSpace(b), &v); err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%v is not finite", v)
	}
	*f = Float(v)
	return nil
}

// HeadingParams are the parameters of setHeading.
type HeadingParams struct {
	Heading *Float `json:"heading"`
}

// SpeedParams are the parameters of setSpeed.
type SpeedParams struct {
	Speed *Float `json:"speed"`
}

// NewCommand encodes params and returns the resulting command.
func NewCommand(method Method, params any) (Command, error) {
	cmd := Command{Method: method}
	if params == nil {
		return cmd, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return Command{}, fmt.Errorf("encode %s params: %w", method, err)
	}
	cmd.Params = raw
	return cmd, nil
}

// SetHeading returns a setHeading command.
func SetHeading(heading float64) Command {
	cmd, _ := NewCommand(MethodSetHeading, HeadingParams{Heading: (*Float)(&heading)})
	return cmd
}

// SetSpeed returns a setSpeed command.
func SetSpeed(speed float64) Command {
	cmd, _ := NewCommand(MethodSetSpeed, SpeedParams{Speed: (*Float)(&speed)})
	return cmd
}
