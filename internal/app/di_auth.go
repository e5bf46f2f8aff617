package app

import (
	"fmt"
	"sync"

	authRepository "github.com/checktick/surveyvault/internal/auth/repository"
	authService "github.com/checktick/surveyvault/internal/auth/service"
	authUseCase "github.com/checktick/surveyvault/internal/auth/usecase"
)

// authDependencies holds the API client authentication components.
type authDependencies struct {
	secretService authService.SecretService
	clientRepo    authUseCase.ClientRepository
	clientUseCase authUseCase.ClientUseCase

	secretServiceInit sync.Once
	clientRepoInit    sync.Once
	clientUseCaseInit sync.Once
}

// SecretService returns the client secret hashing service.
func (c *Container) SecretService() authService.SecretService {
	c.authDeps.secretServiceInit.Do(func() {
		c.authDeps.secretService = authService.NewSecretService()
	})
	return c.authDeps.secretService
}

// ClientRepository returns the client repository for the configured database
// driver.
func (c *Container) ClientRepository() (authUseCase.ClientRepository, error) {
	var err error
	c.authDeps.clientRepoInit.Do(func() {
		db, dbErr := c.DB()
		if dbErr != nil {
			err = fmt.Errorf("failed to get database for client repository: %w", dbErr)
			c.initErrors["clientRepo"] = err
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.authDeps.clientRepo = authRepository.NewPostgreSQLClientRepository(db)
		case "mysql":
			c.authDeps.clientRepo = authRepository.NewMySQLClientRepository(db)
		default:
			err = fmt.Errorf("unsupported database driver for client repository: %s", c.config.DBDriver)
			c.initErrors["clientRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientRepo"]; exists {
		return nil, storedErr
	}
	return c.authDeps.clientRepo, nil
}

// ClientUseCase returns the client use case.
func (c *Container) ClientUseCase() (authUseCase.ClientUseCase, error) {
	var err error
	c.authDeps.clientUseCaseInit.Do(func() {
		txManager, txErr := c.TxManager()
		if txErr != nil {
			err = fmt.Errorf("failed to get tx manager for client use case: %w", txErr)
			c.initErrors["clientUseCase"] = err
			return
		}

		clientRepo, repoErr := c.ClientRepository()
		if repoErr != nil {
			err = fmt.Errorf("failed to get client repository for client use case: %w", repoErr)
			c.initErrors["clientUseCase"] = err
			return
		}

		c.authDeps.clientUseCase = authUseCase.NewClientUseCase(txManager, clientRepo, c.SecretService())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientUseCase"]; exists {
		return nil, storedErr
	}
	return c.authDeps.clientUseCase, nil
}
