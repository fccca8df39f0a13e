// Package events moves waste events between the API and its listeners, over
// Kafka when brokers are configured and in-process otherwise.
package events

import (
	"crypto/tls"
	"crypto/x509"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

// Credentials for managed Kafka (SASL/PLAIN over TLS).
type Credentials struct {
	Username string
	Password string
	CACert   string
}

func (c Credentials) sasl() bool {
	return c.Username != "" && c.Password != ""
}

// NewDialer builds a dialer with SASL/PLAIN when credentials are set. TLS is
// on whenever SASL or a CA certificate is configured; without a CA the system
// roots are used.
func NewDialer(creds Credentials, log *zap.Logger) *kafka.Dialer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	if creds.sasl() {
		dialer.SASLMechanism = plain.Mechanism{
			Username: creds.Username,
			Password: creds.Password,
		}
		log.Info("kafka SASL/PLAIN enabled", zap.String("username", creds.Username))
	}

	if creds.sasl() || creds.CACert != "" {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		if creds.CACert != "" {
			pool := x509.NewCertPool()
			if pool.AppendCertsFromPEM([]byte(creds.CACert)) {
				tlsConfig.RootCAs = pool
			} else {
				log.Warn("kafka CA certificate could not be parsed, using system roots")
			}
		}
		dialer.TLS = tlsConfig
	}

	return dialer
}

// newTransport mirrors the dialer settings for kafka.Writer.
func newTransport(d *kafka.Dialer) *kafka.Transport {
	return &kafka.Transport{
		DialTimeout: d.Timeout,
		SASL:        d.SASLMechanism,
		TLS:         d.TLS,
	}
}

// ParseBrokers splits a comma separated broker list.
func ParseBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(strings.ReplaceAll(brokers, " ", ""), ",") {
		if b != "" {
			out = append(out, b)
		}
	}
	return out
}
