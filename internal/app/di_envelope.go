package app

import (
	"fmt"

	cryptoService "github.com/allisson/envelope/internal/crypto/service"
	envelopeRepository "github.com/allisson/envelope/internal/envelope/repository"
	envelopeUsecase "github.com/allisson/envelope/internal/envelope/usecase"
)

// KeyProvider returns the local key provider backed by the configured master secret.
func (c *Container) KeyProvider() (*cryptoService.LocalKeyProvider, error) {
	var err error
	c.keyProviderInit.Do(func() {
		c.keyProvider, err = c.initKeyProvider()
		if err != nil {
			c.initErrors["keyProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyProvider"]; exists {
		return nil, storedErr
	}
	return c.keyProvider, nil
}

// ProviderRegistry returns the key provider registry with the local provider active.
func (c *Container) ProviderRegistry() (*cryptoService.ProviderRegistry, error) {
	var err error
	c.providerRegistryInit.Do(func() {
		c.providerRegistry, err = c.initProviderRegistry()
		if err != nil {
			c.initErrors["providerRegistry"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["providerRegistry"]; exists {
		return nil, storedErr
	}
	return c.providerRegistry, nil
}

// DekRecordRepository returns the DEK record repository based on database driver.
func (c *Container) DekRecordRepository() (envelopeUsecase.DekRecordRepository, error) {
	var err error
	c.dekRecordRepoInit.Do(func() {
		c.dekRecordRepo, err = c.initDekRecordRepository()
		if err != nil {
			c.initErrors["dekRecordRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["dekRecordRepo"]; exists {
		return nil, storedErr
	}
	return c.dekRecordRepo, nil
}

// EnvelopeUseCase returns the envelope encryption use case.
func (c *Container) EnvelopeUseCase() (envelopeUsecase.EnvelopeUseCase, error) {
	var err error
	c.envelopeUseCaseInit.Do(func() {
		c.envelopeUseCase, err = c.initEnvelopeUseCase()
		if err != nil {
			c.initErrors["envelopeUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelopeUseCase"]; exists {
		return nil, storedErr
	}
	return c.envelopeUseCase, nil
}

// initKeyProvider creates the local key provider, verifying the master secret
// against its fingerprint when one is configured.
func (c *Container) initKeyProvider() (*cryptoService.LocalKeyProvider, error) {
	if c.config.MasterSecretHash != "" {
		if err := cryptoService.VerifyMasterSecretFingerprint(c.config.MasterSecret, c.config.MasterSecretHash); err != nil {
			return nil, fmt.Errorf("master secret verification failed: %w", err)
		}
	}

	keyProvider, err := cryptoService.NewLocalKeyProvider(c.config.MasterSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create local key provider: %w", err)
	}

	return keyProvider, nil
}

// initProviderRegistry creates the key provider registry with the local
// provider as the active one.
func (c *Container) initProviderRegistry() (*cryptoService.ProviderRegistry, error) {
	keyProvider, err := c.KeyProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get key provider for provider registry: %w", err)
	}

	return cryptoService.NewProviderRegistry(keyProvider), nil
}

// initDekRecordRepository creates the DEK record repository based on the database driver.
func (c *Container) initDekRecordRepository() (envelopeUsecase.DekRecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for dek record repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return envelopeRepository.NewPostgreSQLDekRecordRepository(db), nil
	case "mysql":
		return envelopeRepository.NewMySQLDekRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEnvelopeUseCase creates the envelope use case with all its dependencies.
func (c *Container) initEnvelopeUseCase() (envelopeUsecase.EnvelopeUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for envelope use case: %w", err)
	}

	dekRecordRepo, err := c.DekRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get dek record repository for envelope use case: %w", err)
	}

	providerRegistry, err := c.ProviderRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get provider registry for envelope use case: %w", err)
	}

	baseUseCase := envelopeUsecase.NewEnvelopeUseCase(txManager, dekRecordRepo, providerRegistry)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for envelope use case: %w", err)
		}
		return envelopeUsecase.NewEnvelopeUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
