package utils

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSFiles names PEM files used to build a TLS config for Redis, Postgres
// or the HTTP listeners.
type TLSFiles struct {
	CACert string `long:"tls-ca" env:"TLS_CA" description:"CA cert used to verify peers"`
	Cert   string `long:"tls-cert" env:"TLS_CERT" description:"TLS certificate"`
	Key    string `long:"tls-key" env:"TLS_KEY" description:"TLS private key"`
}

// Empty returns if no files are set.
func (f TLSFiles) Empty() bool {
	return f.CACert == "" && f.Cert == "" && f.Key == ""
}

// Config loads the files into a TLS config. Returns nil if no files are set.
func (f TLSFiles) Config() (*tls.Config, error) {
	if f.Empty() {
		return nil, nil
	}
	if (f.Cert == "") != (f.Key == "") {
		return nil, fmt.Errorf("tls cert and key must be given together")
	}

	cfg := &tls.Config{
		MinVersion:       tls.VersionTLS12,
		CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP384, tls.CurveP256},
	}

	if f.Cert != "" {
		pair, err := tls.LoadX509KeyPair(f.Cert, f.Key)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{pair}
	}

	if f.CACert != "" {
		raw, err := os.ReadFile(f.CACert)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(raw) {
			return nil, fmt.Errorf("no certificates found in %s", f.CACert)
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}
