package server

import (
	"fmt"
	"io"
	"os"
)

// displayServerInfo prints the listening address and the security posture
// to stderr, keeping stdout free.
func (s *Server) displayServerInfo(addr string) {
	s.writeServerInfo(os.Stderr, addr)
}

func (s *Server) writeServerInfo(w io.Writer, addr string) {
	scheme := "http"
	if s.TLSConfig.Mode == "server" {
		scheme = "https"
	}
	fmt.Fprintf(w, "Listening on %s://%s\n", scheme, addr)

	fmt.Fprintln(w, "Available endpoints:")
	fmt.Fprintln(w, "  GET  /health    - Health check")
	fmt.Fprintln(w, "  GET  /stats     - Server statistics")
	fmt.Fprintln(w, "  POST /render    - Render a resume to PDF (?style=modern|classic|minimal)")
	fmt.Fprintln(w, "  POST /plan      - Show the render plan (?format=json|text|markdown)")
	fmt.Fprintln(w, "  POST /validate  - Check a resume against the schema")

	if len(s.APIKeys) > 0 {
		fmt.Fprintf(w, "API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
	} else {
		fmt.Fprintln(w, "API authentication: DISABLED (no API keys configured)")
	}

	if s.MaxRequestSize > 0 {
		fmt.Fprintf(w, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Fprintln(w, "Request size limit: DISABLED")
	}

	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Fprintf(w, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	} else {
		fmt.Fprintln(w, "Rate limiting: DISABLED")
	}
}
