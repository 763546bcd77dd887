// Command waypoint-mission drives the vehicle through a CSV waypoint list,
// pausing for obstacles seen by the ranging sensor and logging collected data
// to a SQLite mission database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openasv/surveyor/internal/avoidance"
	"github.com/openasv/surveyor/internal/config"
	"github.com/openasv/surveyor/internal/geo"
	"github.com/openasv/surveyor/internal/mission"
	"github.com/openasv/surveyor/internal/missiondb"
	"github.com/openasv/surveyor/internal/monitoring"
	"github.com/openasv/surveyor/internal/scan"
	"github.com/openasv/surveyor/internal/version"
)

var (
	waypointsFile = flag.String("waypoints", "", "CSV file of waypoints (lat,lon with header)")
	erpFile       = flag.String("erp", "", "CSV file of emergency recovery points (lat,lon with header)")
	configFile    = flag.String("config", "", "optional tuning JSON file")
	dbFile        = flag.String("db", "mission_data.db", "path to the SQLite mission database")
	devMode       = flag.Bool("dev", false, "run against the simulated vehicle")
	simSpeed      = flag.Float64("sim-speed", 1.0, "simulated vehicle speed in meters per poll")
	sensorPort    = flag.String("sensor-port", "", "serial port of the ranging sensor (empty disables avoidance)")
	sensorUnit    = flag.String("sensor-unit", "radians", "angle unit reported by the sensor (radians|degrees)")
	listen        = flag.String("listen", ":8081", "metrics HTTP listen address (empty disables)")
	showVersion   = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("waypoint-mission", version.String())
		return
	}

	if *waypointsFile == "" || *erpFile == "" {
		log.Fatal("both -waypoints and -erp are required")
	}

	tuning := &config.Tuning{}
	if *configFile != "" {
		var err error
		tuning, err = config.Load(*configFile)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	plan, err := mission.LoadPlanCSV(*waypointsFile, *erpFile)
	if err != nil {
		log.Fatalf("failed to load mission plan: %v", err)
	}
	log.Printf("loaded %d waypoints and %d ERP candidates", len(plan.Waypoints), len(plan.ERPs))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *monitoring.MissionMetrics
	if *listen != "" {
		metrics = monitoring.NewMissionMetrics(nil)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Printf("metrics listening on %s", *listen)
			if err := http.ListenAndServe(*listen, mux); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	if !*devMode {
		// The production vehicle transport lives outside this binary;
		// until it is wired in, only the simulator can be driven.
		log.Fatal("no vehicle transport configured; run with -dev to use the simulator")
	}
	start := geo.Destination(plan.Waypoints[0], 180, 20)
	vehicle := mission.NewSimVehicle(start, *simSpeed, log.Printf)
	log.Printf("simulated vehicle starting at (%.6f, %.6f)", start.Lat, start.Lon)

	sensor, cleanup := buildSensor(ctx, tuning)
	defer cleanup()

	mdb, err := missiondb.New(*dbFile, log.Printf)
	if err != nil {
		log.Fatalf("failed to open mission database: %v", err)
	}
	defer mdb.Close()

	executor, err := mission.NewExecutor(vehicle, tuning.Mission(), mission.Options{
		Sensor:   sensor,
		Recorder: mdb,
		Metrics:  metrics,
		Logf:     log.Printf,
	})
	if err != nil {
		log.Fatalf("failed to build executor: %v", err)
	}

	if err := executor.Start(ctx); err != nil {
		log.Fatalf("mission start failed: %v", err)
	}
	outcome, err := executor.Run(ctx, plan)
	if err != nil {
		log.Fatalf("mission failed: %v", err)
	}
	if err := mdb.RecordOutcome(context.Background(), executor.RunID(), outcome); err != nil {
		log.Printf("failed to record outcome: %v", err)
	}

	if !outcome.Success {
		log.Printf("mission aborted (%s) after %d waypoints", outcome.Reason, outcome.WaypointsVisited)
		os.Exit(1)
	}
	log.Printf("mission completed: %d waypoints", outcome.WaypointsVisited)
}

// buildSensor wires the obstacle sensor: controller-backed when a ranging
// sensor port is configured, always-clear otherwise.
func buildSensor(ctx context.Context, tuning *config.Tuning) (mission.ObstacleSensor, func()) {
	if *sensorPort == "" {
		log.Print("no ranging sensor configured, obstacle checks report clear")
		return mission.AlwaysClear{}, func() {}
	}

	ctrl, err := avoidanceController(tuning)
	if err != nil {
		log.Fatalf("failed to build avoidance controller: %v", err)
	}

	source, err := scan.NewSerialSource(*sensorPort, scan.DefaultPortOptions(),
		scan.AngleUnit(*sensorUnit), log.Printf)
	if err != nil {
		log.Fatalf("failed to open ranging sensor: %v", err)
	}

	var buffer scan.Buffer
	go func() {
		if err := source.Monitor(ctx); err != nil && ctx.Err() == nil {
			log.Printf("sensor acquisition stopped: %v", err)
		}
	}()
	go buffer.Consume(ctx, source.Frames())

	sensor := mission.NewAvoidanceSensor(ctrl, buffer.Latest, log.Printf)
	return sensor, func() { source.Close() }
}

// avoidanceController builds the controller from the tuning file, forcing the
// angle unit to match what the sensor actually reports.
func avoidanceController(tuning *config.Tuning) (*avoidance.Controller, error) {
	cfg := tuning.Avoidance()
	cfg.Unit = scan.AngleUnit(*sensorUnit)
	return avoidance.New(cfg, log.Printf)
}
