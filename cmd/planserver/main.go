package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/azybler/streetrunner/pkg/api"
	"github.com/azybler/streetrunner/pkg/nominatim"
	"github.com/azybler/streetrunner/pkg/overpass"
	"github.com/azybler/streetrunner/pkg/runner"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	userAgent := flag.String("user-agent", "streetrunner-planserver/1.0 (contact: ops@streetrunner.example)", "User-Agent sent to Nominatim, per its usage policy")
	flag.Parse()

	services := runner.Services{
		Overpass:  overpass.NewClient(),
		Nominatim: nominatim.NewClient(*userAgent),
	}

	handlers := api.NewHandlers(services, api.StatsResponse{})

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	srv := api.NewServer(cfg, handlers)

	log.Printf("streetrunner planserver starting on %s", addr)
	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
