package vehicle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kilianp07/fleetsim/core/model"
)

// Invoke executes cmd and returns the resulting state.
func (v *Vehicle) Invoke(ctx context.Context, cmd model.Command) (model.State, error) {
	switch cmd.Method {
	case model.MethodGetPosition:
		return v.Position(), nil
	case model.MethodSetHeading:
		var p model.HeadingParams
		if err := decodeParams(cmd, &p); err != nil {
			return model.State{}, err
		}
		if p.Heading == nil {
			return model.State{}, fmt.Errorf("%w: heading is required", model.ErrInvalidParams)
		}
		return v.SetHeading(ctx, float64(*p.Heading)), nil
	case model.MethodSetSpeed:
		var p model.SpeedParams
		if err := decodeParams(cmd, &p); err != nil {
			return model.State{}, err
		}
		if p.Speed == nil {
			return model.State{}, fmt.Errorf("%w: speed is required", model.ErrInvalidParams)
		}
		return v.SetSpeed(ctx, float64(*p.Speed)), nil
	default:
		return model.State{}, fmt.Errorf("%w: %q", model.ErrUnknownMethod, cmd.Method)
	}
}

func decodeParams(cmd model.Command, out any) error {
	if len(cmd.Params) == 0 {
		return nil
	}
	if err := json.Unmarshal(cmd.Params, out); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrInvalidParams, cmd.Method, err)
	}
	return nil
}
