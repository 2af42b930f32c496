// Package config loads application configuration from defaults, an optional
// file and FLIGHTSIM_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/viper"

	"github.com/eytandecker/flightsim-dynamics/internal/physics"
)

// EnvPrefix prefixes every environment override, e.g. FLIGHTSIM_SIM_FRAME_RATE.
const EnvPrefix = "FLIGHTSIM"

// FileEnv names the environment variable holding an optional config file path.
const FileEnv = "FLIGHTSIM_CONFIG"

// Config holds all application configuration.
type Config struct {
	Sim       SimConfig
	Vehicle   physics.VehicleConfig
	Obstacles ObstacleConfig
	Geodesy   GeodesyConfig
	Recorder  RecorderConfig
	Influx    InfluxConfig
	Log       LogConfig
}

// SimConfig holds frame loop settings.
type SimConfig struct {
	FrameRate       float64
	StaleThreshold  time.Duration
	MaxRecordErrors int
}

// ObstacleConfig holds the obstacle field settings.
type ObstacleConfig struct {
	Count       int
	FieldSize   float64
	MaxSize     float64
	ClearRadius float64
	Seed        int64
}

// GeodesyConfig anchors the local frame on the globe.
type GeodesyConfig struct {
	OriginLongitude float64
	OriginLatitude  float64
	OriginElevation float64
}

// RecorderConfig holds flight recorder settings.
type RecorderConfig struct {
	Driver        string
	DSN           string
	Interval      time.Duration
	TrackCapacity int
}

// InfluxConfig holds InfluxDB settings.
type InfluxConfig struct {
	Enabled bool
	URL     string
	Token   string
	Org     string
	Bucket  string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level          string
	GraylogAddress string
}

func setDefaults(v *viper.Viper) {
	veh := physics.DefaultVehicleConfig()

	v.SetDefault("sim.frame_rate", 60.0)
	v.SetDefault("sim.stale_threshold", "2s")
	v.SetDefault("sim.max_record_errors", 10)

	v.SetDefault("vehicle.mass", veh.Mass)
	v.SetDefault("vehicle.wing_area", veh.WingArea)
	v.SetDefault("vehicle.air_density", veh.AirDensity)
	v.SetDefault("vehicle.gravity", veh.Gravity)
	v.SetDefault("vehicle.lift_coefficient", veh.LiftCoefficient)
	v.SetDefault("vehicle.drag_coefficient", veh.DragCoefficient)
	v.SetDefault("vehicle.thrust", veh.Thrust)
	v.SetDefault("vehicle.max_speed", veh.MaxSpeed)
	v.SetDefault("vehicle.roll_rate", veh.RollRate)
	v.SetDefault("vehicle.pitch_rate", veh.PitchRate)
	v.SetDefault("vehicle.yaw_rate", veh.YawRate)
	v.SetDefault("vehicle.control_reference_speed", veh.ControlReferenceSpeed)
	v.SetDefault("vehicle.elevator_force", veh.ElevatorForce)
	v.SetDefault("vehicle.aoa_offset", veh.AoAOffset)
	v.SetDefault("vehicle.ground_aoa_offset", veh.GroundAoAOffset)
	v.SetDefault("vehicle.angular_damping", veh.AngularDamping)
	v.SetDefault("vehicle.damping_reference_rate", veh.DampingReferenceRate)
	v.SetDefault("vehicle.max_deflection", veh.MaxDeflection)
	v.SetDefault("vehicle.ground_clearance", veh.GroundClearance)
	v.SetDefault("vehicle.wheels", formatWheels(veh.Wheels))
	v.SetDefault("vehicle.spring_constant", veh.SpringConstant)
	v.SetDefault("vehicle.damping_constant", veh.DampingConstant)
	v.SetDefault("vehicle.friction_coefficient", veh.FrictionCoefficient)
	v.SetDefault("vehicle.roll_stabilization", veh.RollStabilization)
	v.SetDefault("vehicle.roll_stabilization_threshold", veh.RollStabilizationThreshold)
	v.SetDefault("vehicle.ground_rate_limit", veh.GroundRateLimit)
	v.SetDefault("vehicle.angular_inertia", veh.AngularInertia)
	v.SetDefault("vehicle.throttle_rate", veh.ThrottleRate)
	v.SetDefault("vehicle.air_brake_resistance", veh.AirBrakeResistance)
	v.SetDefault("vehicle.ground_brake_resistance", veh.GroundBrakeResistance)
	v.SetDefault("vehicle.brake_snap_speed", veh.BrakeSnapSpeed)
	v.SetDefault("vehicle.collision_threshold", veh.CollisionThreshold)
	v.SetDefault("vehicle.max_delta_time", veh.MaxDeltaTime)
	v.SetDefault("vehicle.initial_altitude", veh.InitialPosition.Y())
	v.SetDefault("vehicle.initial_heading", veh.InitialHeading)
	v.SetDefault("vehicle.boost.thrust", veh.Boost.Thrust)
	v.SetDefault("vehicle.boost.drag_coefficient", veh.Boost.DragCoefficient)
	v.SetDefault("vehicle.boost.lift_coefficient", veh.Boost.LiftCoefficient)

	v.SetDefault("obstacles.count", 200)
	v.SetDefault("obstacles.field_size", 1000.0)
	v.SetDefault("obstacles.max_size", 20.0)
	v.SetDefault("obstacles.clear_radius", 40.0)
	v.SetDefault("obstacles.seed", 1)

	v.SetDefault("geodesy.origin_lon", 0.0)
	v.SetDefault("geodesy.origin_lat", 0.0)
	v.SetDefault("geodesy.origin_alt", 0.0)

	v.SetDefault("recorder.driver", "none")
	v.SetDefault("recorder.dsn", "flightsim.db")
	v.SetDefault("recorder.interval", "100ms")
	v.SetDefault("recorder.track_capacity", 2048)

	v.SetDefault("influx.enabled", false)
	v.SetDefault("influx.url", "http://localhost:8086")
	v.SetDefault("influx.token", "")
	v.SetDefault("influx.org", "flightsim")
	v.SetDefault("influx.bucket", "flights")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.graylog_address", "")
}

// Load reads configuration, falling back to defaults for anything unset.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv(FileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	wheels, err := parseWheels(v.GetStringSlice("vehicle.wheels"))
	if err != nil {
		return Config{}, err
	}

	veh := physics.DefaultVehicleConfig()
	veh.Mass = v.GetFloat64("vehicle.mass")
	veh.WingArea = v.GetFloat64("vehicle.wing_area")
	veh.AirDensity = v.GetFloat64("vehicle.air_density")
	veh.Gravity = v.GetFloat64("vehicle.gravity")
	veh.LiftCoefficient = v.GetFloat64("vehicle.lift_coefficient")
	veh.DragCoefficient = v.GetFloat64("vehicle.drag_coefficient")
	veh.Thrust = v.GetFloat64("vehicle.thrust")
	veh.MaxSpeed = v.GetFloat64("vehicle.max_speed")
	veh.RollRate = v.GetFloat64("vehicle.roll_rate")
	veh.PitchRate = v.GetFloat64("vehicle.pitch_rate")
	veh.YawRate = v.GetFloat64("vehicle.yaw_rate")
	veh.ControlReferenceSpeed = v.GetFloat64("vehicle.control_reference_speed")
	veh.ElevatorForce = v.GetFloat64("vehicle.elevator_force")
	veh.AoAOffset = v.GetFloat64("vehicle.aoa_offset")
	veh.GroundAoAOffset = v.GetFloat64("vehicle.ground_aoa_offset")
	veh.AngularDamping = v.GetFloat64("vehicle.angular_damping")
	veh.DampingReferenceRate = v.GetFloat64("vehicle.damping_reference_rate")
	veh.MaxDeflection = v.GetFloat64("vehicle.max_deflection")
	veh.GroundClearance = v.GetFloat64("vehicle.ground_clearance")
	veh.Wheels = wheels
	veh.SpringConstant = v.GetFloat64("vehicle.spring_constant")
	veh.DampingConstant = v.GetFloat64("vehicle.damping_constant")
	veh.FrictionCoefficient = v.GetFloat64("vehicle.friction_coefficient")
	veh.RollStabilization = v.GetFloat64("vehicle.roll_stabilization")
	veh.RollStabilizationThreshold = v.GetFloat64("vehicle.roll_stabilization_threshold")
	veh.GroundRateLimit = v.GetFloat64("vehicle.ground_rate_limit")
	veh.AngularInertia = v.GetFloat64("vehicle.angular_inertia")
	veh.ThrottleRate = v.GetFloat64("vehicle.throttle_rate")
	veh.AirBrakeResistance = v.GetFloat64("vehicle.air_brake_resistance")
	veh.GroundBrakeResistance = v.GetFloat64("vehicle.ground_brake_resistance")
	veh.BrakeSnapSpeed = v.GetFloat64("vehicle.brake_snap_speed")
	veh.CollisionThreshold = v.GetFloat64("vehicle.collision_threshold")
	veh.MaxDeltaTime = v.GetFloat64("vehicle.max_delta_time")
	veh.InitialPosition = mgl64.Vec3{0, v.GetFloat64("vehicle.initial_altitude"), 0}
	veh.InitialHeading = v.GetFloat64("vehicle.initial_heading")
	veh.Boost = physics.BoostConfig{
		Thrust:          v.GetFloat64("vehicle.boost.thrust"),
		DragCoefficient: v.GetFloat64("vehicle.boost.drag_coefficient"),
		LiftCoefficient: v.GetFloat64("vehicle.boost.lift_coefficient"),
	}
	if err := veh.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return Config{
		Sim: SimConfig{
			FrameRate:       v.GetFloat64("sim.frame_rate"),
			StaleThreshold:  v.GetDuration("sim.stale_threshold"),
			MaxRecordErrors: v.GetInt("sim.max_record_errors"),
		},
		Vehicle: veh,
		Obstacles: ObstacleConfig{
			Count:       v.GetInt("obstacles.count"),
			FieldSize:   v.GetFloat64("obstacles.field_size"),
			MaxSize:     v.GetFloat64("obstacles.max_size"),
			ClearRadius: v.GetFloat64("obstacles.clear_radius"),
			Seed:        v.GetInt64("obstacles.seed"),
		},
		Geodesy: GeodesyConfig{
			OriginLongitude: v.GetFloat64("geodesy.origin_lon"),
			OriginLatitude:  v.GetFloat64("geodesy.origin_lat"),
			OriginElevation: v.GetFloat64("geodesy.origin_alt"),
		},
		Recorder: RecorderConfig{
			Driver:        strings.ToLower(v.GetString("recorder.driver")),
			DSN:           v.GetString("recorder.dsn"),
			Interval:      v.GetDuration("recorder.interval"),
			TrackCapacity: v.GetInt("recorder.track_capacity"),
		},
		Influx: InfluxConfig{
			Enabled: v.GetBool("influx.enabled"),
			URL:     v.GetString("influx.url"),
			Token:   v.GetString("influx.token"),
			Org:     v.GetString("influx.org"),
			Bucket:  v.GetString("influx.bucket"),
		},
		Log: LogConfig{
			Level:          v.GetString("log.level"),
			GraylogAddress: v.GetString("log.graylog_address"),
		},
	}, nil
}

// parseWheels reads "x,y,z" body offsets. Entries may also be separated by ';'
// so a single environment variable can carry all wheels.
func parseWheels(entries []string) ([]mgl64.Vec3, error) {
	var out []mgl64.Vec3
	for _, entry := range entries {
		for _, w := range strings.Split(entry, ";") {
			w = strings.TrimSpace(w)
			if w == "" {
				continue
			}
			parts := strings.Split(w, ",")
			if len(parts) != 3 {
				return nil, fmt.Errorf("config: wheel %q: want x,y,z", w)
			}
			var p mgl64.Vec3
			for i, s := range parts {
				f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					return nil, fmt.Errorf("config: wheel %q: %w", w, err)
				}
				p[i] = f
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func formatWheels(wheels []mgl64.Vec3) []string {
	out := make([]string, len(wheels))
	for i, w := range wheels {
		out[i] = strconv.FormatFloat(w.X(), 'g', -1, 64) + "," +
			strconv.FormatFloat(w.Y(), 'g', -1, 64) + "," +
			strconv.FormatFloat(w.Z(), 'g', -1, 64)
	}
	return out
}
