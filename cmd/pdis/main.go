package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	_ "net/http/pprof" // profiling

	"pdis/internal/pdis/cmd"
	"pdis/internal/pdis/log"
)

// profileAddr is where the pprof server listens when PDIS_PROFILE is set
// to a true value rather than an address.
const profileAddr = "localhost:6060"

func main() {
	defer log.RecoverPanic("main", func() {
		slog.Error("pdis terminated due to unhandled panic")
		os.Exit(2)
	})

	if addr := os.Getenv("PDIS_PROFILE"); addr != "" {
		if !strings.Contains(addr, ":") {
			addr = profileAddr
		}
		go func() {
			slog.Info("Serving pprof", "addr", addr)
			if httpErr := http.ListenAndServe(addr, nil); httpErr != nil {
				slog.Error("Failed to pprof listen", "error", httpErr)
			}
		}()
	}

	cmd.Execute()
}
