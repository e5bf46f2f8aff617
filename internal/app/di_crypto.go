package app

import (
	"fmt"
	"sync"

	cryptoDomain "github.com/checktick/surveyvault/internal/crypto/domain"
	cryptoService "github.com/checktick/surveyvault/internal/crypto/service"
)

// cryptoDependencies holds the cryptographic primitives shared by the key
// wrapping and content encryption layers.
type cryptoDependencies struct {
	aeadManager cryptoService.AEADManager
	kdf         cryptoService.KDF
	envelope    cryptoService.Envelope

	aeadManagerInit sync.Once
	kdfInit         sync.Once
	envelopeInit    sync.Once
}

// AEADManager returns the AEAD cipher factory.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.cryptoDeps.aeadManagerInit.Do(func() {
		c.cryptoDeps.aeadManager = cryptoService.NewAEADManager()
	})
	return c.cryptoDeps.aeadManager
}

// KDF returns the key derivation service.
func (c *Container) KDF() cryptoService.KDF {
	c.cryptoDeps.kdfInit.Do(func() {
		c.cryptoDeps.kdf = cryptoService.NewKDF()
	})
	return c.cryptoDeps.kdf
}

// Envelope returns the envelope encryption service, configured with the AEAD
// algorithm selected in the application configuration.
func (c *Container) Envelope() (cryptoService.Envelope, error) {
	var err error
	c.cryptoDeps.envelopeInit.Do(func() {
		alg := cryptoDomain.Algorithm(c.config.EncryptionAlgorithm)
		switch alg {
		case cryptoDomain.AESGCM, cryptoDomain.ChaCha20:
		default:
			err = fmt.Errorf("unsupported encryption algorithm %q", c.config.EncryptionAlgorithm)
			c.initErrors["envelope"] = err
			return
		}
		c.cryptoDeps.envelope = cryptoService.NewEnvelope(c.AEADManager(), c.KDF(), alg)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelope"]; exists {
		return nil, storedErr
	}
	return c.cryptoDeps.envelope, nil
}
