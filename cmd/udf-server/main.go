// Command udf-server bridges the spreadsheet host to the lookup service:
// each UDF maps to one JSON endpoint taking the same positional string
// arguments and returning the grid the host expands into cells.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rzpsarthak13/indexserve/pkg/indexserve"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	cfg, err := indexserve.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.LoadFromEnv()

	client, err := indexserve.NewClient(cfg)
	if err != nil {
		log.Fatalf("failed to initialize client: %v", err)
	}
	defer client.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/udf/get_monthly_data", func(w http.ResponseWriter, r *http.Request) {
		grid := client.GetMonthlyData(r.Context(), arg(r, "index_name"), arg(r, "date_value"))
		writeGrid(w, grid)
	})
	mux.HandleFunc("/udf/get_series", func(w http.ResponseWriter, r *http.Request) {
		grid := client.GetSeries(r.Context(), arg(r, "index_name"), arg(r, "start_date"), arg(r, "end_date"))
		writeGrid(w, grid)
	})
	mux.HandleFunc("/udf/get_matrix", func(w http.ResponseWriter, r *http.Request) {
		grid := client.GetMatrix(r.Context(), arg(r, "date_value"), arg(r, "index_name"))
		writeGrid(w, grid)
	})
	mux.HandleFunc("/udf/get_all_data", func(w http.ResponseWriter, r *http.Request) {
		grid := client.GetAllData(r.Context(), arg(r, "index_name"))
		writeGrid(w, grid)
	})
	mux.HandleFunc("/udf/clear_cache", func(w http.ResponseWriter, r *http.Request) {
		msg := client.ClearCache(r.Context())
		writeJSON(w, map[string]string{"message": msg})
	})

	server := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("udf-server listening on %s (store=%s)", *addr, cfg.Database.Type)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func arg(r *http.Request, name string) string {
	return r.URL.Query().Get(name)
}

func writeGrid(w http.ResponseWriter, grid indexserve.Grid) {
	writeJSON(w, map[string]interface{}{"data": grid})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
