// Command simhost drives the simulator from the command line: fixed or
// accelerated-time ticks at a chosen rate, a fixed-duration run, and a
// periodic profiling line on stdout, in place of the driving program's
// Loop/Run entry points.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/magv-sim/citysim/internal/hostapi"
)

func main() {
	var (
		vehGraph = flag.String("veh-graph", "", "path to the vehicle navigation graph file")
		pedGraph = flag.String("ped-graph", "", "path to the pedestrian navigation graph file")
		semFile  = flag.String("semaphores", "", "path to the semaphore timing file")
		numVeh   = flag.Int("vehicles", 20, "number of ambient vehicles to spawn")
		numPed   = flag.Int("pedestrians", 20, "number of ambient pedestrians to spawn")
		seed     = flag.Uint64("seed", 1, "deterministic PRNG seed")

		duration = flag.Float64("duration", 10.0, "seconds of simulated time to run")
		rate     = flag.Float64("rate", 100.0, "ticks per simulated second (fixed dt = 1/rate)")
		accel    = flag.Float64("accel", 1.0, "constant throttle input for the bus, [0,1]")
		steer    = flag.Float64("steer", 0.0, "constant steering input for the bus, [-1,1]")
		wallTime = flag.Bool("wall-time", false, "sleep between ticks so the run takes real wall-clock time")
	)
	flag.Parse()

	if *vehGraph == "" {
		fmt.Fprintln(os.Stderr, "simhost: -veh-graph is required")
		os.Exit(2)
	}

	host := hostapi.NewHost(hostapi.Config{
		VehGraphPath:   *vehGraph,
		PedGraphPath:   *pedGraph,
		SemaphorePath:  *semFile,
		NumVehicles:    *numVeh,
		NumPedestrians: *numPed,
		Seed:           *seed,
	})

	fmt.Println("initialize")
	if _, ok := host.Dispatch(hostapi.ModeInitialize, hostapi.Inputs{}); !ok {
		fmt.Fprintln(os.Stderr, "simhost: initialize failed")
		os.Exit(1)
	}
	defer func() {
		fmt.Println("finalize")
		host.Dispatch(hostapi.ModeFinalize, hostapi.Inputs{})
	}()

	fmt.Println("loop")

	dt := float32(1.0 / *rate)
	numTicks := int(math.Ceil(*duration * *rate))

	var tSimTotal, tPrintTotal time.Duration
	var profileCount int

	for i := 0; i < numTicks; i++ {
		tickStart := time.Now()
		out, ok := host.Dispatch(hostapi.ModeStep, hostapi.Inputs{
			Steer: float32(*steer),
			Accel: float32(*accel),
			Dt:    dt,
		})
		tSim := time.Since(tickStart)
		if !ok {
			break
		}

		printStart := time.Now()
		fmt.Printf("v=%.3fm/s accel=%.2f steer=%.2f i=%d\n", out.LinearVelocity.X, *accel, *steer, i)
		tPrint := time.Since(printStart)

		tSimTotal += tSim
		tPrintTotal += tPrint
		profileCount++
		if profileCount >= 100 {
			fmt.Printf("***TIME: sim=%.3fms, print=%.3fms\n",
				float64(tSimTotal.Microseconds())/1000/float64(profileCount),
				float64(tPrintTotal.Microseconds())/1000/float64(profileCount))
			tSimTotal, tPrintTotal = 0, 0
			profileCount = 0
		}
		if i%10 == 0 {
			fmt.Printf("***OUTPUT: v=%.3fm/s, w=%.3frad/s\n", out.LinearVelocity.X, out.AngularVelocity.Z)
		}

		if *wallTime {
			time.Sleep(time.Duration(dt * float32(time.Second)))
		}
	}
}
