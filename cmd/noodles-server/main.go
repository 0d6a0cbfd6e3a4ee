// Command noodles-server is the reference NOODLES server binary: it
// wires a websocket transport into a session.Server backed by a
// registry.Registry holding one demo table, a dispatch.Dispatcher, and an
// assets.Store.
//
// Usage:
//
//	go run ./cmd/noodles-server                 # :50000 ws, :50001 assets
//	go run ./cmd/noodles-server -port 9000
package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/InsightCenterNoodles/noodles-core/assets"
	"github.com/InsightCenterNoodles/noodles-core/broadcast"
	"github.com/InsightCenterNoodles/noodles-core/builtins"
	"github.com/InsightCenterNoodles/noodles-core/dispatch"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/nlog"
	"github.com/InsightCenterNoodles/noodles-core/observability"
	"github.com/InsightCenterNoodles/noodles-core/registry"
	"github.com/InsightCenterNoodles/noodles-core/session"
	"github.com/InsightCenterNoodles/noodles-core/transport"
)

func main() {
	port := flag.Uint("port", 50000, "websocket listen port")
	assetPort := flag.Uint("asset-port", 50001, "asset HTTP listen port")
	handshakeTimeout := flag.Uint("handshake-timeout", 30, "seconds a new connection has to send Introduction")
	flag.Parse()

	logger := nlog.Std()
	reg := registry.New()
	d := dispatch.NewDispatcher(reg, logger)
	d.Use(dispatch.NewLoggingMiddleware(logger))
	d.Use(dispatch.NewMetricsMiddleware(observability.ObserveDispatch))

	opts := session.NewServerOptions(
		session.WithListenPort(uint16(*port)),
		session.WithAssetPort(uint16(*assetPort)),
		session.WithHandshakeTimeout(uint32(*handshakeTimeout)),
	)
	srv := session.NewServer(reg, d, opts, logger)

	attachDemoTable(reg, d, srv, logger)

	store := assets.NewStore("/assets/")

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err.Error())
			return
		}
		wsConn := transport.NewWSConn(conn)
		go func() {
			if err := srv.Accept(wsConn); err != nil {
				logger.Info("session ended", "error", err.Error())
			}
			observability.SetConnectedClients(len(srv.Hub.ClientIDs()))
		}()
	})

	assetMux := http.NewServeMux()
	assetMux.Handle("/assets/", store)

	go func() {
		addr := ":" + strconv.FormatUint(uint64(*assetPort), 10)
		logger.Info("asset server listening", "addr", addr)
		if err := http.ListenAndServe(addr, assetMux); err != nil {
			logger.Error("asset server stopped", "error", err.Error())
		}
	}()

	go func() {
		addr := ":" + strconv.FormatUint(uint64(*port), 10)
		logger.Info("websocket server listening", "addr", addr)
		if err := http.ListenAndServe(addr, wsMux); err != nil {
			logger.Error("websocket server stopped", "error", err.Error())
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	osSig := <-sigCh
	logger.Info("shutdown signal received", "signal", osSig.String())
	os.Exit(0)
}

// attachDemoTable creates one table backed by registry.MemoryTableSource
// and wires its built-in methods/signals, so a freshly started server has
// something for a client to subscribe to and mutate.
func attachDemoTable(reg *registry.Registry, d *dispatch.Dispatcher, srv *session.Server, logger nlog.Logger) {
	source := registry.NewMemoryTableSource([]registry.ColSpec{
		{Name: "x", Type: "REAL"},
		{Name: "y", Type: "REAL"},
		{Name: "label", Type: "TEXT"},
	})

	w := broadcast.NopWriter{}
	binding := builtins.AttachTableMethods(
		reg, w, d, srv.Signals,
		func(ctx id.AnyID) (id.Id[id.TableTag], registry.Table, bool) {
			tid, ok := id.ToTable(ctx)
			if !ok {
				return id.Id[id.TableTag]{}, registry.Table{}, false
			}
			t, ok := reg.Tables.Get(tid)
			return tid, t, ok
		},
		func(id.AnyID) broadcast.ClientID { return srv.CurrentClient() },
		func(id.Id[id.TableTag]) registry.TableSource { return source },
	)

	table := registry.Table{
		Name:    "demo",
		Methods: binding.Methods(),
		Signals: binding.Signals(),
		Source:  source,
	}
	if _, err := reg.CreateTable(w, table); err != nil {
		logger.Error("demo table wiring rejected", "err", err)
	}
}
