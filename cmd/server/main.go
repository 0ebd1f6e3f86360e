package main

import (
	"log/slog"
	"os"

	"enatega_storefront/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
