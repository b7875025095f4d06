// Command urbansim runs the traffic-simulation core as a standalone
// process, driven by a line-oriented command/output protocol over
// stdin/stdout.
package main

import (
	"bufio"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/fib-lab/urbansim-core/config"
	"github.com/fib-lab/urbansim-core/network"
	"github.com/fib-lab/urbansim-core/signal"
	"github.com/fib-lab/urbansim-core/sim"
)

var (
	configPath = flag.String("config", "", "config file path")
	configData = flag.String("config-data", "", "config file base64 encoded data")
	logLevel   = flag.String("log.level", "info", "log level (trace debug info warn error critical off)")

	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}

	log = logrus.WithField("module", "urbansim")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}

	cfg := loadConfig()
	log.Infof("config: %+v", cfg)

	net, spawnLanes := network.NewDefaultNetwork()
	s := sim.New(net, spawnLanes, cfg.Clock.DT, cfg.Seed)
	s.Signals.SetAdaptive(cfg.Signal.Adaptive)
	installDefaultSignalPrograms(s, net)
	applySpawnWeights(s, cfg.Spawn.Weights)
	log.Infof("network built: %d lanes", len(net.ExportLanes()))

	d := &driver{
		sim:           s,
		cfg:           cfg,
		out:           bufio.NewWriter(os.Stdout),
		dt:            cfg.Clock.DT,
		speed:         1.0,
		spawnEnabled:  cfg.Spawn.Enabled,
		spawnInterval: cfg.Spawn.IntervalTicks,
	}
	if d.spawnInterval <= 0 {
		d.spawnInterval = 20
	}

	cmds := make(chan string, 64)
	go readCommands(cmds)

	d.run(cmds)
}

// driver owns the real-time pacing loop: each wall-clock tick of dt runs
// int(speed) simulation steps (at least one, so speeds between 0 and 1
// run at 1x), gated by pause/speed state, draining queued commands from
// stdin between ticks.
type driver struct {
	sim *sim.Simulation
	cfg config.Config
	out *bufio.Writer
	mu  sync.Mutex

	dt            float64
	speed         float64
	paused        bool
	spawnEnabled  bool
	spawnInterval int
	ticksSinceSpawn int
	lastSignalEmit  float64
}

func (d *driver) run(cmds <-chan string) {
	ticker := time.NewTicker(time.Duration(d.dt * float64(time.Second)))
	defer ticker.Stop()
	for {
		select {
		case line, ok := <-cmds:
			if !ok {
				return
			}
			if !d.handleCommand(line) {
				d.out.Flush()
				return
			}
		case <-ticker.C:
			d.step()
		}
	}
}

func (d *driver) step() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.paused || d.speed <= 0 {
		return
	}
	steps := int(d.speed)
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		if d.spawnEnabled {
			d.ticksSinceSpawn++
			if d.ticksSinceSpawn >= d.spawnInterval {
				d.ticksSinceSpawn = 0
				if id, ok := d.sim.AddRandomVehicle(); ok {
					fmt.Fprintf(d.out, "vh spawned %d\n", id)
				}
			}
		}
		events := d.sim.Update()
		for _, ev := range events {
			if ev.Kind == sim.Despawned {
				fmt.Fprintf(d.out, "vh deleted %d\n", ev.Vehicle)
			}
		}
		d.emitPoses()
		d.emitSignals()
	}
	d.out.Flush()
}

func (d *driver) emitPoses() {
	var b strings.Builder
	for _, v := range d.sim.Vehicles() {
		p := v.Pose(d.sim.Network)
		fmt.Fprintf(&b, "vh move %d %.3f %.3f %.3f;", v.ID(), p.X, p.Y, p.Theta)
	}
	if b.Len() > 0 {
		d.out.WriteString(b.String())
		d.out.WriteByte('\n')
	}
}

func (d *driver) emitSignals() {
	now := d.sim.Clock.T
	if now-d.lastSignalEmit < 1.0 {
		return
	}
	d.lastSignalEmit = now
	g1, ok1 := d.sim.Signals.CarGroup(network.DefaultSignalGroup1)
	g2, ok2 := d.sim.Signals.CarGroup(network.DefaultSignalGroup2)
	if !ok1 || !ok2 {
		return
	}
	fmt.Fprintf(d.out, "time %.3f;signal 0 %d;signal 1 %d\n", now, int(g1.State()), int(g2.State()))
}

// handleCommand applies one input-channel line and returns false if the
// driver should terminate (an "exit" command).
func (d *driver) handleCommand(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	switch fields[0] {
	case "exit":
		return false
	case "reset":
		net, spawnLanes := network.NewDefaultNetwork()
		d.sim = sim.New(net, spawnLanes, d.dt, d.cfg.Seed)
		d.sim.Signals.SetAdaptive(d.cfg.Signal.Adaptive)
		installDefaultSignalPrograms(d.sim, net)
		applySpawnWeights(d.sim, d.cfg.Spawn.Weights)
		d.ticksSinceSpawn = 0
		d.lastSignalEmit = 0
	case "pause":
		d.paused = true
	case "resume":
		d.paused = false
	case "toggle":
		d.paused = !d.paused
	case "speed":
		if len(fields) < 2 {
			log.Warn("speed: missing K")
			return true
		}
		k, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			log.Warnf("speed: invalid K %q", fields[1])
			return true
		}
		if k < 0 {
			k = 0
		}
		if k > 100 {
			k = 100
		}
		d.speed = k
	case "weight":
		if len(fields) < 3 {
			log.Warn("weight: expected <dir> <value>")
			return true
		}
		w, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			log.Warnf("weight: invalid value %q", fields[2])
			return true
		}
		if !d.sim.SetSpawnWeightByDirection(fields[1], w) {
			log.Warnf("weight: unknown direction %q", fields[1])
		}
	case "adaptive":
		if len(fields) < 2 {
			log.Warn("adaptive: expected on|off")
			return true
		}
		d.sim.Signals.SetAdaptive(fields[1] == "on")
	default:
		log.Warnf("unrecognized command: %q", line)
	}
	return true
}

func readCommands(out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}

func installDefaultSignalPrograms(s *sim.Simulation, net *network.RoadNetwork) {
	g1 := &signal.TrafficLightGroup{ID: network.DefaultSignalGroup1, Name: "north-south", ControlledLaneIDs: net.LanesForSignalGroup(network.DefaultSignalGroup1)}
	g1.SetProgram([]signal.SignalPhase{
		{Duration: 3, State: signal.Red},
		{Duration: 2, State: signal.RedYellow},
		{Duration: 25, State: signal.Green},
		{Duration: 3, State: signal.Yellow},
	})
	s.Signals.AddCarGroup(g1)

	g2 := &signal.TrafficLightGroup{ID: network.DefaultSignalGroup2, Name: "east", ControlledLaneIDs: net.LanesForSignalGroup(network.DefaultSignalGroup2)}
	g2.SetProgram([]signal.SignalPhase{
		{Duration: 25, State: signal.Red},
		{Duration: 2, State: signal.RedYellow},
		{Duration: 3, State: signal.Green},
		{Duration: 3, State: signal.Yellow},
	})
	s.Signals.AddCarGroup(g2)
}

func applySpawnWeights(s *sim.Simulation, weights map[string]float64) {
	for dir, w := range weights {
		if !s.SetSpawnWeightByDirection(dir, w) {
			log.Warnf("spawn weight: unknown direction %q in config", dir)
		}
	}
}

func loadConfig() config.Config {
	if *configPath == "" && *configData == "" {
		return config.Default()
	}
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	}
	c := config.Default()
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		log.Panicf("config parse err: %v", err)
	}
	return c
}
