// Package mcp exposes the running simulation as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/eytandecker/flightsim-dynamics/internal/input"
	"github.com/eytandecker/flightsim-dynamics/internal/recorder"
	"github.com/eytandecker/flightsim-dynamics/internal/state"
	"github.com/eytandecker/flightsim-dynamics/pkg/types"
)

// SnapshotGetter is the subset of state.Manager used by the MCP server.
type SnapshotGetter interface {
	GetSnapshot() (types.VehicleSnapshot, error)
}

// Controls is the subset of input.HeldKeys used by the MCP server.
type Controls interface {
	Press(keys ...input.Key)
	Release(keys ...input.Key)
	Replace(keys ...input.Key)
	Held() input.KeySet
}

// GroundTrack is the subset of recorder.Track used by the MCP server.
type GroundTrack interface {
	Len() int
	WKT() (string, error)
}

// errInvalidMode is returned for an unknown set_controls mode.
var errInvalidMode = errors.New("mcp: mode must be hold, release or replace")

// Server wraps the MCP SDK server and exposes the vehicle as tools.
type Server struct {
	sdk      *mcpsdk.Server
	state    SnapshotGetter
	controls Controls
	track    GroundTrack
}

// NewServer creates a Server. controls and track may be nil, in which case
// the corresponding tools are not registered.
func NewServer(sg SnapshotGetter, controls Controls, track GroundTrack) *Server {
	s := &Server{
		sdk: mcpsdk.NewServer(&mcpsdk.Implementation{
			Name:    "flightsim-dynamics",
			Version: "1.0.0",
		}, nil),
		state:    sg,
		controls: controls,
		track:    track,
	}

	mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
		Name:        "get_vehicle_state",
		Description: "Returns the simulated vehicle's position, speed, throttle and optionally attitude and geodetic position.",
	}, s.handleGetVehicleState)

	if controls != nil {
		mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
			Name: "set_controls",
			Description: "Presses, releases or replaces held control keys. Keys: w/s throttle, q cut, e full, " +
				"ArrowLeft/ArrowRight roll, ArrowUp/ArrowDown pitch, a/d yaw, f brake, r reset, o boost, h help.",
		}, s.handleSetControls)
	}
	if track != nil {
		mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
			Name:        "get_ground_track",
			Description: "Returns the recent flight path as a WKT LINESTRING Z of longitude, latitude and altitude.",
		}, s.handleGetGroundTrack)
	}
	return s
}

// Run starts the MCP server over stdio and blocks until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.sdk.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect connects the server to an existing transport (used in tests).
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.sdk.Connect(ctx, t, nil)
}

// getStateInput holds arguments for the get_vehicle_state tool.
type getStateInput struct {
	IncludeAttitude bool `json:"include_attitude,omitempty"`
	IncludeGeodetic bool `json:"include_geodetic,omitempty"`
}

// VehicleStateResponse is the JSON payload returned on success.
type VehicleStateResponse struct {
	Frame           uint64     `json:"frame"`
	Position        types.Vec3 `json:"position"`
	Velocity        types.Vec3 `json:"velocity"`
	Speed           float64    `json:"speed_mps"`
	Altitude        float64    `json:"altitude_m"`
	ThrottlePercent int        `json:"throttle_pct"`
	Heading         float64    `json:"heading_deg"`
	Grounded        bool       `json:"grounded"`
	Collided        bool       `json:"collided"`
	Boosted         bool       `json:"boosted"`
	HelpRequested   bool       `json:"help_requested"`
	HeldKeys        []string   `json:"held_keys"`
	SimTime         float64    `json:"sim_time_s"`

	Pitch       *float64          `json:"pitch_deg,omitempty"`
	Bank        *float64          `json:"bank_deg,omitempty"`
	Orientation *types.Quaternion `json:"orientation,omitempty"`
	Longitude   *float64          `json:"longitude,omitempty"`
	Latitude    *float64          `json:"latitude,omitempty"`

	Timestamp string `json:"timestamp"`
}

// SimulatorUnavailableResponse is returned when a tool cannot be served.
type SimulatorUnavailableResponse struct {
	Available   bool   `json:"available"`
	Error       string `json:"error"`
	Code        string `json:"code"`
	Recoverable bool   `json:"recoverable"`
	Suggestion  string `json:"suggestion"`
	Timestamp   string `json:"timestamp"`
}

func (s *Server) handleGetVehicleState(
	ctx context.Context,
	req *mcpsdk.CallToolRequest,
	in getStateInput,
) (*mcpsdk.CallToolResult, any, error) {
	snap, err := s.state.GetSnapshot()
	if err != nil {
		return s.errorResult(err), nil, nil
	}

	resp := VehicleStateResponse{
		Frame:           snap.Frame,
		Position:        snap.Position,
		Velocity:        snap.Velocity,
		Speed:           snap.Speed,
		Altitude:        snap.Altitude,
		ThrottlePercent: snap.ThrottlePercent,
		Heading:         snap.Heading,
		Grounded:        snap.Grounded,
		Collided:        snap.Collided,
		Boosted:         snap.Boosted,
		HelpRequested:   snap.HelpRequested,
		HeldKeys:        snap.HeldKeys,
		SimTime:         snap.SimTime,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}
	if resp.HeldKeys == nil {
		resp.HeldKeys = []string{}
	}
	if in.IncludeAttitude {
		p, b, q := snap.Pitch, snap.Bank, snap.Orientation
		resp.Pitch = &p
		resp.Bank = &b
		resp.Orientation = &q
	}
	if in.IncludeGeodetic {
		lon, lat := snap.Longitude, snap.Latitude
		resp.Longitude = &lon
		resp.Latitude = &lat
	}
	return textResult(resp)
}

// setControlsInput holds arguments for the set_controls tool.
type setControlsInput struct {
	Keys []string `json:"keys"`
	Mode string   `json:"mode,omitempty"`
}

// SetControlsResponse reports the held keys after the change.
type SetControlsResponse struct {
	Mode      string   `json:"mode"`
	HeldKeys  []string `json:"held_keys"`
	Timestamp string   `json:"timestamp"`
}

func (s *Server) handleSetControls(
	ctx context.Context,
	req *mcpsdk.CallToolRequest,
	in setControlsInput,
) (*mcpsdk.CallToolResult, any, error) {
	keys := make([]input.Key, len(in.Keys))
	for i, k := range in.Keys {
		keys[i] = input.Key(k)
	}

	mode := in.Mode
	if mode == "" {
		mode = "hold"
	}
	switch mode {
	case "hold":
		s.controls.Press(keys...)
	case "release":
		s.controls.Release(keys...)
	case "replace":
		s.controls.Replace(keys...)
	default:
		return s.errorResult(fmt.Errorf("%w: got %q", errInvalidMode, in.Mode)), nil, nil
	}

	held := s.controls.Held().Keys()
	resp := SetControlsResponse{
		Mode:      mode,
		HeldKeys:  make([]string, len(held)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for i, k := range held {
		resp.HeldKeys[i] = string(k)
	}
	return textResult(resp)
}

// GroundTrackResponse carries the recent flight path.
type GroundTrackResponse struct {
	Points    int    `json:"points"`
	WKT       string `json:"wkt"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleGetGroundTrack(
	ctx context.Context,
	req *mcpsdk.CallToolRequest,
	_ struct{},
) (*mcpsdk.CallToolResult, any, error) {
	wkt, err := s.track.WKT()
	if err != nil {
		return s.errorResult(err), nil, nil
	}
	return textResult(GroundTrackResponse{
		Points:    s.track.Len(),
		WKT:       wkt,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func textResult(v any) (*mcpsdk.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil, nil
}

func (s *Server) errorResult(err error) *mcpsdk.CallToolResult {
	resp := SimulatorUnavailableResponse{
		Available: false,
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var simErr *types.SimulatorError
	switch {
	case errors.Is(err, state.ErrStale):
		resp.Code = "DATA_STALE"
		resp.Recoverable = true
		resp.Suggestion = "Wait for the simulation to publish a frame."
	case errors.As(err, &simErr):
		resp.Code = "SIMULATOR_STOPPED"
		resp.Recoverable = simErr.Recoverable
		resp.Suggestion = "The simulation loop has stopped; restart the server."
	case errors.Is(err, recorder.ErrTrackTooShort):
		resp.Available = true
		resp.Code = "TRACK_TOO_SHORT"
		resp.Recoverable = true
		resp.Suggestion = "Fly for a moment so the track has at least two points."
	case errors.Is(err, errInvalidMode):
		resp.Available = true
		resp.Code = "INVALID_ARGUMENT"
		resp.Recoverable = true
		resp.Suggestion = "Use mode hold, release or replace."
	default:
		resp.Code = "UNKNOWN_ERROR"
		resp.Recoverable = false
		resp.Suggestion = "Check application logs for details."
	}

	data, _ := json.Marshal(resp)
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
		IsError: true,
	}
}
