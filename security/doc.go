// Package security holds the TLS settings shared by the API transport and
// the reference backend's listener.
//
//	cfg := security.TLSConfig{
//	    CAFile:     "/etc/deskhub/ca.pem",
//	    MinVersion: "1.3",
//	}
//	tlsConfig, err := cfg.Build()
package security
