package httpclient

import "github.com/kbukum/deskhub/security"

// TLSConfig is the shared security TLS configuration.
type TLSConfig = security.TLSConfig
