package tls

import (
	cryptotls "crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureCert(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "certs", "server.crt")
	keyPath := filepath.Join(dir, "certs", "server.key")

	generated, err := EnsureCert(certPath, keyPath, []string{"localhost", "127.0.0.1"})
	require.NoError(t, err)
	assert.True(t, generated)

	pair, err := cryptotls.LoadX509KeyPair(certPath, keyPath)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(pair.Certificate[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", cert.IPAddresses[0].String())

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	generated, err = EnsureCert(certPath, keyPath, []string{"localhost"})
	require.NoError(t, err)
	assert.False(t, generated, "an existing certificate is kept")
}

func TestEnsureCertNeedsHostnames(t *testing.T) {
	dir := t.TempDir()
	_, err := EnsureCert(filepath.Join(dir, "a.crt"), filepath.Join(dir, "a.key"), nil)
	assert.Error(t, err)
}
