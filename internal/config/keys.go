package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
)

const rsaKeyBits = 2048

// resolveJWTKeys installs the RS256 key pair. Base64 PEM keys from the
// environment win everywhere; production refuses to start without them and
// other environments fall back to a throwaway pair.
func (c *Config) resolveJWTKeys(privateB64, publicB64 string) error {
	if privateB64 != "" && publicB64 != "" {
		slog.Info("loading RSA keypair from environment")
		privateKey, err := decodePEM(privateB64, "JWT_PRIVATE_KEY", parsePrivateKey)
		if err != nil {
			return err
		}
		publicKey, err := decodePEM(publicB64, "JWT_PUBLIC_KEY", parsePublicKey)
		if err != nil {
			return err
		}
		c.JWT.PrivateKey, c.JWT.PublicKey = privateKey, publicKey
		return nil
	}

	if c.IsProduction() {
		return errors.New("JWT_PRIVATE_KEY and JWT_PUBLIC_KEY must be set in production")
	}

	slog.Warn("generating ephemeral RSA keypair for JWT; tokens will not survive a restart")
	privateKey, publicKey, err := GenerateRSAKeyPair()
	if err != nil {
		return err
	}
	c.JWT.PrivateKey, c.JWT.PublicKey = privateKey, publicKey
	return nil
}

func GenerateRSAKeyPair() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}
	return privateKey, &privateKey.PublicKey, nil
}

func decodePEM[K any](encoded, name string, parseDER func([]byte) (K, error)) (K, error) {
	var zero K

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return zero, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return zero, fmt.Errorf("%s does not contain a PEM block", name)
	}

	key, err := parseDER(block.Bytes)
	if err != nil {
		return zero, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return key, nil
}

// parsePrivateKey accepts PKCS#1 and the PKCS#8 form openssl genpkey emits.
func parsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("not an RSA private key")
	}
	return rsaKey, nil
}

func parsePublicKey(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}
	return rsaKey, nil
}
