// Command hlevel-node runs one participant of the hierarchical clustering
// gossip protocol against a UDP transport, loading its identity, peer
// list, and timing from a TOML configuration file. It is the standalone
// counterpart to the original ns-3 simulation's single dmc binary, which
// drove every node in one process under a virtual clock; here each node is
// its own process talking real UDP, so there is one required flag
// (--config, plus an optional --metrics-addr) instead of the simulator's
// numNodes/branchFactor/secsToRun/d3 set.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/dedis/hlevel/cluster"
	"github.com/dedis/hlevel/config"
	"github.com/dedis/hlevel/eventlog"
	"github.com/dedis/hlevel/metrics"
	"github.com/dedis/hlevel/transport"
)

func main() {
	app := &cli.App{
		Name:  "hlevel-node",
		Usage: "run one node of the hierarchical clustering gossip protocol",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "path to the node's TOML configuration file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "address to serve Prometheus metrics on, empty to disable",
				Value: ":9090",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "hlevel-node: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.Path("config"))
	if err != nil {
		return err
	}

	node := cluster.Identifier(cfg.Node)
	rnd := newRand(cfg.Seed)
	value := cluster.Value(cfg.Value)
	if value == 0 {
		value = cluster.Value(rnd.Float64())
	}

	sink, err := eventlog.NewDefault(node, parseLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("building event logger: %w", err)
	}
	var events cluster.EventSink = sink
	if addr := c.String("metrics-addr"); addr != "" {
		events = metrics.New(prometheus.DefaultRegisterer, events)
		go serveMetrics(addr)
	}

	n := cluster.NewNode(node, value, rnd, events)

	peers := make([]transport.Peer, len(cfg.Peers))
	for i, p := range cfg.Peers {
		peers[i] = transport.Peer{ID: cluster.Identifier(p.ID), Addr: p.Addr}
	}
	t, err := transport.Listen(cfg.Listen, peers)
	if err != nil {
		return err
	}
	defer t.Close()

	sched := &transport.Scheduler{
		Node:        n,
		Transport:   t,
		Rand:        rnd,
		MaxInterval: cfg.GossipInterval,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return transport.RunWithScheduler(ctx, t, sched, n.Receive)
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func parseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.Set(s); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// serveMetrics runs a bare Prometheus scrape endpoint until the process
// exits. Errors here (e.g. the port already in use) are logged but never
// fatal: a node should keep gossiping even if nobody can scrape it.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "hlevel-node: metrics server: %v\n", err)
	}
}
