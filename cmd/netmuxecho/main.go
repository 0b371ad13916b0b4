// Command netmuxecho runs a tiny TCP echo service on top of a
// Multiplexer, driven by its upper-API methods, Poll, and DebugSnapshot. It
// exists to exercise the library end to end, not as a production server.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/boardnet/netmux"
)

func main() {
	portFlag := flag.Int("port", 9000, "TCP port to listen on")
	capacityFlag := flag.Int("capacity", 32, "socket table capacity")
	debugFlag := flag.Bool("debug", false, "log at debug level")
	metricsAddrFlag := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9100)")

	flag.Usage = printUsage
	flag.Parse()

	logger := logrus.New()
	if *debugFlag {
		logger.SetLevel(logrus.DebugLevel)
	}

	opts := []netmux.Option{netmux.WithCapacity(*capacityFlag), netmux.WithLogger(logger)}
	if *metricsAddrFlag != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, netmux.WithMetrics(netmux.NewPrometheusMetrics(reg)))
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			log.Printf("serving metrics on %s/metrics", *metricsAddrFlag)
			if err := http.ListenAndServe(*metricsAddrFlag, mux); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	m := netmux.New(opts...)

	server := m.CreateSocket(0, uint16(*portFlag))
	if server < 0 {
		log.Fatalf("failed to listen on port %d", *portFlag)
	}
	fmt.Printf("netmuxecho listening on :%d\n", *portFlag)

	buf := make([]byte, 4096)
	for {
		m.Poll()

		if client := m.Accept(server); client != -1 {
			fmt.Printf("accepted socket %d\n", client)
		}

		for _, snap := range m.DebugSnapshot() {
			if snap.ID == server || snap.State != netmux.StateIdle || snap.RxLen == 0 {
				continue
			}
			n := m.Recv(snap.ID, buf)
			if n > 0 {
				m.Send(snap.ID, buf[:n])
			}
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func printUsage() {
	fmt.Println("netmuxecho - minimal TCP echo server over netmux")
	fmt.Println("Usage:")
	fmt.Println("  netmuxecho [-port <port>] [-capacity <n>] [-debug] [-metrics-addr <addr>]")
}
