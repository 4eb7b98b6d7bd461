package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/fleetsim/core/metrics"
	"github.com/kilianp07/fleetsim/core/model"
	"github.com/kilianp07/fleetsim/infra/logger"
)

// InfluxRecorder writes fleet activity to an InfluxDB instance using the
// official client.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxRecorder creates a recorder configured for the given InfluxDB endpoint.
func NewInfluxRecorder(url, token, org, bucket string) *InfluxRecorder {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-recorder"),
	}
}

// NewInfluxRecorderWithFallback pings the InfluxDB instance and returns a
// NopRecorder if the health check fails.
func NewInfluxRecorderWithFallback(url, token, org, bucket string) coremetrics.Recorder {
	rec := NewInfluxRecorder(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := rec.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			rec.log.Errorf("influx health check error: %v", err)
		} else {
			rec.log.Errorf("influx health status: %s", health.Status)
		}
		rec.client.Close()
		return coremetrics.NopRecorder{}
	}
	return rec
}

// RecordReport writes the reported position as a vehicle_position point
// stamped with the vehicle's own timestamp.
func (s *InfluxRecorder) RecordReport(r model.Report) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("vehicle_position").
		AddTag("vehicle_id", r.ID).
		AddField("x", round3(r.X)).
		AddField("y", round3(r.Y)).
		AddField("speed", round3(r.Speed)).
		AddField("heading", round3(r.Heading)).
		SetTime(time.UnixMilli(r.Timestamp))
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDelivery writes one observer_delivery point.
func (s *InfluxRecorder) RecordDelivery(ev coremetrics.DeliveryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("observer_delivery").
		AddTag("endpoint", ev.Endpoint).
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("success", strconv.FormatBool(ev.Err == nil)).
		AddTag("pruned", strconv.FormatBool(ev.Pruned)).
		AddField("latency_ms", round3(float64(ev.Latency.Microseconds())/1000)).
		SetTime(eventTime(ev.Time))
	if ev.Err != nil {
		p.AddField("error", ev.Err.Error())
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCommand writes one vehicle_command point.
func (s *InfluxRecorder) RecordCommand(ev coremetrics.CommandEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("vehicle_command").
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("method", ev.Method.String()).
		AddTag("success", strconv.FormatBool(ev.Err == nil)).
		AddField("count", 1).
		SetTime(eventTime(ev.Time))
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFleetSize writes the current vehicle and observer counts.
func (s *InfluxRecorder) RecordFleetSize(vehicles, observers int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fleet_size").
		AddTag("component", "fleet_manager").
		AddField("vehicles", vehicles).
		AddField("observers", observers).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxRecorder) Close() { s.client.Close() }

func eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
