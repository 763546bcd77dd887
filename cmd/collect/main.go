// Command collect runs a manual-drive data collection session: the operator
// steers the vehicle while this process samples telemetry at a fixed cadence
// into the mission database, until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/openasv/surveyor/internal/geo"
	"github.com/openasv/surveyor/internal/mission"
	"github.com/openasv/surveyor/internal/missiondb"
	"github.com/openasv/surveyor/internal/version"
)

var (
	dbFile      = flag.String("db", "mission_data.db", "path to the SQLite mission database")
	interval    = flag.Duration("interval", time.Second, "sampling interval")
	dataKeys    = flag.String("keys", "state,exo2", "comma-separated telemetry keys to collect")
	devMode     = flag.Bool("dev", false, "sample the simulated vehicle")
	startLat    = flag.Float64("lat", 25.7617, "simulator start latitude")
	startLon    = flag.Float64("lon", -80.1918, "simulator start longitude")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("collect", version.String())
		return
	}

	if !*devMode {
		log.Fatal("no vehicle transport configured; run with -dev to use the simulator")
	}
	vehicle := mission.NewSimVehicle(geo.Coordinate{Lat: *startLat, Lon: *startLon}, 1.0, log.Printf)

	mdb, err := missiondb.New(*dbFile, log.Printf)
	if err != nil {
		log.Fatalf("failed to open mission database: %v", err)
	}
	defer mdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	keys := strings.Split(*dataKeys, ",")
	log.Printf("collecting %v every %s (run %s), Ctrl-C to stop", keys, *interval, runID)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			n, err := mdb.SampleCount(context.Background(), runID)
			if err != nil {
				log.Fatalf("failed to count samples: %v", err)
			}
			log.Printf("collection stopped: %d samples recorded", n)
			return
		case <-ticker.C:
			if err := sampleOnce(ctx, vehicle, mdb, runID, keys); err != nil {
				log.Printf("sample failed: %v", err)
			}
		}
	}
}

func sampleOnce(ctx context.Context, vehicle mission.Vehicle, mdb *missiondb.MissionDB, runID string, keys []string) error {
	position, err := vehicle.GetGPSCoordinates(ctx)
	if err != nil {
		return err
	}
	data, err := vehicle.GetData(ctx, keys)
	if err != nil {
		return err
	}
	mode, err := vehicle.GetControlMode(ctx)
	if err != nil {
		return err
	}
	return mdb.Record(ctx, mission.Sample{
		RunID:     runID,
		Mode:      mode,
		Position:  position,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}
