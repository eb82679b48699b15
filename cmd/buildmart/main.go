package main

import (
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"BuildMart/internal/cart"
	"BuildMart/internal/catalog"
	"BuildMart/internal/shop"
	"BuildMart/pkg/kit"
)

func main() {
	service := "buildmart"
	log := kit.NewLogger(service, os.Getenv("LOG_LEVEL"))
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8080")

	store := catalog.NewStore(catalog.BuildingMaterials())

	s := &shop.Server{
		Catalog: store,
		Matcher: catalog.NewMatcher(store),
		Carts:   cart.NewMemStore(store),
		Log:     log,
	}

	reg := prometheus.NewRegistry()
	h := shop.NewHandler(s, shop.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: os.Getenv("METRICS_ENABLED") == "true",
		MetricsToken:   os.Getenv("METRICS_TOKEN"),

		RateLimit:         getenvInt("RATE_LIMIT", 0),
		RateWindowSeconds: getenvInt("RATE_WINDOW_SECONDS", 60),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
