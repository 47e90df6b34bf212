package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"resumepdf/internal/config"
	"resumepdf/internal/errors"
	"resumepdf/internal/watch"
)

// certReloader serves the current server certificate and swaps it when the
// certificate files change on disk.
type certReloader struct {
	mu       sync.RWMutex
	cert     *tls.Certificate
	expiry   time.Time
	certFile string
	keyFile  string

	reloadCount   int64
	lastReloadErr string
	logger        *errors.Logger
}

// newCertReloader loads the certificate from PEM content when present,
// otherwise from the configured files.
func newCertReloader(cfg config.TLSConfig, logger *errors.Logger) (*certReloader, error) {
	cr := &certReloader{logger: logger}

	if cfg.CertContent != "" && cfg.KeyContent != "" {
		cert, err := tls.X509KeyPair([]byte(cfg.CertContent), []byte(cfg.KeyContent))
		if err != nil {
			return nil, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
		if err := cr.set(&cert); err != nil {
			return nil, err
		}
		return cr, nil
	}

	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
	}
	cr.certFile = cfg.CertFile
	cr.keyFile = cfg.KeyFile
	if err := cr.reload(); err != nil {
		return nil, err
	}
	return cr, nil
}

func (cr *certReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(cr.certFile, cr.keyFile)
	if err != nil {
		cr.mu.Lock()
		cr.lastReloadErr = err.Error()
		cr.mu.Unlock()
		return fmt.Errorf("failed to load server cert/key from files: %w", err)
	}
	return cr.set(&cert)
}

func (cr *certReloader) set(cert *tls.Certificate) error {
	leaf := cert.Leaf
	if leaf == nil {
		parsed, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return fmt.Errorf("failed to parse server certificate: %w", err)
		}
		leaf = parsed
		cert.Leaf = parsed
	}

	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.cert = cert
	cr.expiry = leaf.NotAfter
	cr.reloadCount++
	cr.lastReloadErr = ""
	return nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (cr *certReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.cert, nil
}

// watch reloads the certificate whenever its files change. It returns
// immediately for content-based certificates.
func (cr *certReloader) watch(ctx context.Context, debounce time.Duration) error {
	if cr.certFile == "" {
		return nil
	}
	w, err := watch.New([]string{cr.certFile, cr.keyFile}, debounce, cr.logger)
	if err != nil {
		return err
	}
	return w.Run(ctx, func(context.Context) error {
		if err := cr.reload(); err != nil {
			return err
		}
		cr.logger.Info("TLS certificates reloaded", "expires", cr.expiryTime())
		return nil
	})
}

func (cr *certReloader) expiryTime() time.Time {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.expiry
}

// status summarizes certificate health for /health. Certificates within
// 24 hours of expiry count as unhealthy.
func (cr *certReloader) status() map[string]any {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	timeToExpiry := time.Until(cr.expiry)
	status := map[string]any{
		"expires_at":           cr.expiry.UTC().Format(time.RFC3339),
		"time_to_expiry_hours": int(timeToExpiry.Hours()),
		"reload_count":         cr.reloadCount,
		"watching_files":       cr.certFile != "",
	}
	if cr.lastReloadErr != "" {
		status["last_reload_error"] = cr.lastReloadErr
	}

	switch {
	case timeToExpiry <= 0:
		status["healthy"] = false
		status["status"] = "expired"
	case timeToExpiry <= 24*time.Hour:
		status["healthy"] = false
		status["status"] = "critical"
	case timeToExpiry <= 7*24*time.Hour:
		status["healthy"] = true
		status["status"] = "warning"
	default:
		status["healthy"] = true
		status["status"] = "ok"
	}
	return status
}

// buildTLSConfig creates the TLS configuration
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	certs, err := newCertReloader(s.TLSConfig, s.Logger)
	if err != nil {
		return nil, err
	}
	s.certs = certs

	tlsConfig := &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: certs.GetCertificate,
	}
	if s.TLSConfig.MinVersion == "1.3" {
		tlsConfig.MinVersion = tls.VersionTLS13
	}
	return tlsConfig, nil
}
