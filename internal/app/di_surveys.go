package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	sessionService "github.com/checktick/surveyvault/internal/session/service"
	surveysDomain "github.com/checktick/surveyvault/internal/surveys/domain"
	surveysRepository "github.com/checktick/surveyvault/internal/surveys/repository"
	surveysService "github.com/checktick/surveyvault/internal/surveys/service"
	surveysUseCase "github.com/checktick/surveyvault/internal/surveys/usecase"
)

// surveyDependencies holds the survey encryption components: repositories,
// key wrapping, content encryption, the session controller and the use cases.
type surveyDependencies struct {
	surveyRepo          surveysUseCase.SurveyEncryptionRepository
	orgRepo             surveysUseCase.OrganizationRepository
	oidcSecrets         surveysService.OIDCSecretDeriver
	keyWrap             surveysService.KeyWrapper
	content             surveysService.ContentCipher
	sessionStore        sessionService.Store
	sessionController   *sessionService.Controller
	encryptionUseCase   surveysUseCase.EncryptionUseCase
	organizationUseCase surveysUseCase.OrganizationUseCase

	surveyRepoInit          sync.Once
	orgRepoInit             sync.Once
	oidcSecretsInit         sync.Once
	keyWrapInit             sync.Once
	contentInit             sync.Once
	sessionStoreInit        sync.Once
	sessionControllerInit   sync.Once
	encryptionUseCaseInit   sync.Once
	organizationUseCaseInit sync.Once
}

// orgResolver adapts the organization repository to the session controller's
// OrganizationResolver interface.
type orgResolver struct {
	repo surveysUseCase.OrganizationRepository
}

func (r orgResolver) GetOrganization(ctx context.Context, id uuid.UUID) (*surveysDomain.Organization, error) {
	return r.repo.Get(ctx, id)
}

// SurveyEncryptionRepository returns the survey encryption repository for the
// configured database driver.
func (c *Container) SurveyEncryptionRepository() (surveysUseCase.SurveyEncryptionRepository, error) {
	var err error
	c.surveyDeps.surveyRepoInit.Do(func() {
		db, dbErr := c.DB()
		if dbErr != nil {
			err = fmt.Errorf("failed to get database for survey encryption repository: %w", dbErr)
			c.initErrors["surveyRepo"] = err
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.surveyDeps.surveyRepo = surveysRepository.NewPostgreSQLSurveyEncryptionRepository(db)
		case "mysql":
			c.surveyDeps.surveyRepo = surveysRepository.NewMySQLSurveyEncryptionRepository(db)
		default:
			err = fmt.Errorf("unsupported database driver for survey encryption repository: %s", c.config.DBDriver)
			c.initErrors["surveyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["surveyRepo"]; exists {
		return nil, storedErr
	}
	return c.surveyDeps.surveyRepo, nil
}

// OrganizationRepository returns the organization repository for the
// configured database driver. Master keys are sealed with the KMS keeper when
// one is configured.
func (c *Container) OrganizationRepository() (surveysUseCase.OrganizationRepository, error) {
	var err error
	c.surveyDeps.orgRepoInit.Do(func() {
		db, dbErr := c.DB()
		if dbErr != nil {
			err = fmt.Errorf("failed to get database for organization repository: %w", dbErr)
			c.initErrors["orgRepo"] = err
			return
		}

		keeper, keeperErr := c.Keeper()
		if keeperErr != nil {
			err = fmt.Errorf("failed to get kms keeper for organization repository: %w", keeperErr)
			c.initErrors["orgRepo"] = err
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.surveyDeps.orgRepo = surveysRepository.NewPostgreSQLOrganizationRepository(db, keeper)
		case "mysql":
			c.surveyDeps.orgRepo = surveysRepository.NewMySQLOrganizationRepository(db, keeper)
		default:
			err = fmt.Errorf("unsupported database driver for organization repository: %s", c.config.DBDriver)
			c.initErrors["orgRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orgRepo"]; exists {
		return nil, storedErr
	}
	return c.surveyDeps.orgRepo, nil
}

// OIDCSecretService returns the OIDC wrapping-secret deriver. The pepper
// comes from OIDC_PEPPER_SEALED (unsealed through the KMS keeper) when a
// keeper is configured, otherwise from OIDC_PEPPER directly.
func (c *Container) OIDCSecretService() (surveysService.OIDCSecretDeriver, error) {
	var err error
	c.surveyDeps.oidcSecretsInit.Do(func() {
		pepper, pepperErr := c.resolveOIDCPepper()
		if pepperErr != nil {
			err = pepperErr
			c.initErrors["oidcSecrets"] = pepperErr
			return
		}
		c.surveyDeps.oidcSecrets = surveysService.NewOIDCSecretService(pepper)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["oidcSecrets"]; exists {
		return nil, storedErr
	}
	return c.surveyDeps.oidcSecrets, nil
}

func (c *Container) resolveOIDCPepper() ([]byte, error) {
	keeper, err := c.Keeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get kms keeper for oidc pepper: %w", err)
	}

	if keeper != nil && c.config.OIDCPepperSealed != "" {
		sealed, err := decodeBase64URL(c.config.OIDCPepperSealed)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OIDC_PEPPER_SEALED: %w", err)
		}
		pepper, err := keeper.Decrypt(context.Background(), sealed)
		if err != nil {
			return nil, fmt.Errorf("failed to unseal oidc pepper: %w", err)
		}
		return pepper, nil
	}

	if c.config.OIDCPepper == "" {
		return nil, fmt.Errorf("oidc pepper is not configured: set OIDC_PEPPER or OIDC_PEPPER_SEALED")
	}

	pepper, err := decodeBase64URL(c.config.OIDCPepper)
	if err != nil {
		return nil, fmt.Errorf("failed to decode OIDC_PEPPER: %w", err)
	}
	return pepper, nil
}

// decodeBase64URL decodes base64url input with or without padding.
func decodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

// KeyWrapService returns the survey key wrapping service.
func (c *Container) KeyWrapService() (surveysService.KeyWrapper, error) {
	var err error
	c.surveyDeps.keyWrapInit.Do(func() {
		envelope, envErr := c.Envelope()
		if envErr != nil {
			err = fmt.Errorf("failed to get envelope for key wrap service: %w", envErr)
			c.initErrors["keyWrap"] = err
			return
		}

		oidcSecrets, oidcErr := c.OIDCSecretService()
		if oidcErr != nil {
			err = fmt.Errorf("failed to get oidc secret service for key wrap service: %w", oidcErr)
			c.initErrors["keyWrap"] = err
			return
		}

		c.surveyDeps.keyWrap = surveysService.NewKeyWrap(envelope, c.KDF(), oidcSecrets)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyWrap"]; exists {
		return nil, storedErr
	}
	return c.surveyDeps.keyWrap, nil
}

// ContentService returns the demographics content encryption service.
func (c *Container) ContentService() (surveysService.ContentCipher, error) {
	var err error
	c.surveyDeps.contentInit.Do(func() {
		envelope, envErr := c.Envelope()
		if envErr != nil {
			err = fmt.Errorf("failed to get envelope for content service: %w", envErr)
			c.initErrors["content"] = err
			return
		}
		c.surveyDeps.content = surveysService.NewContent(envelope)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["content"]; exists {
		return nil, storedErr
	}
	return c.surveyDeps.content, nil
}

// SessionStore returns the in-memory unlock grant store.
func (c *Container) SessionStore() sessionService.Store {
	c.surveyDeps.sessionStoreInit.Do(func() {
		c.surveyDeps.sessionStore = sessionService.NewMemoryStore()
	})
	return c.surveyDeps.sessionStore
}

// SessionController returns the session controller that mediates KEK access
// through unlock grants.
func (c *Container) SessionController() (*sessionService.Controller, error) {
	var err error
	c.surveyDeps.sessionControllerInit.Do(func() {
		keyWrap, kwErr := c.KeyWrapService()
		if kwErr != nil {
			err = fmt.Errorf("failed to get key wrap service for session controller: %w", kwErr)
			c.initErrors["sessionController"] = err
			return
		}

		orgRepo, orgErr := c.OrganizationRepository()
		if orgErr != nil {
			err = fmt.Errorf("failed to get organization repository for session controller: %w", orgErr)
			c.initErrors["sessionController"] = err
			return
		}

		c.surveyDeps.sessionController = sessionService.NewController(
			c.SessionStore(),
			keyWrap,
			orgResolver{repo: orgRepo},
			c.config.SessionGrantTTL,
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionController"]; exists {
		return nil, storedErr
	}
	return c.surveyDeps.sessionController, nil
}

// EncryptionUseCase returns the survey encryption use case, decorated with
// business metrics recording.
func (c *Container) EncryptionUseCase() (surveysUseCase.EncryptionUseCase, error) {
	var err error
	c.surveyDeps.encryptionUseCaseInit.Do(func() {
		txManager, txErr := c.TxManager()
		if txErr != nil {
			err = fmt.Errorf("failed to get tx manager for encryption use case: %w", txErr)
			c.initErrors["encryptionUseCase"] = err
			return
		}

		surveyRepo, surveyErr := c.SurveyEncryptionRepository()
		if surveyErr != nil {
			err = fmt.Errorf("failed to get survey encryption repository for encryption use case: %w", surveyErr)
			c.initErrors["encryptionUseCase"] = err
			return
		}

		orgRepo, orgErr := c.OrganizationRepository()
		if orgErr != nil {
			err = fmt.Errorf("failed to get organization repository for encryption use case: %w", orgErr)
			c.initErrors["encryptionUseCase"] = err
			return
		}

		keyWrap, kwErr := c.KeyWrapService()
		if kwErr != nil {
			err = fmt.Errorf("failed to get key wrap service for encryption use case: %w", kwErr)
			c.initErrors["encryptionUseCase"] = err
			return
		}

		content, contentErr := c.ContentService()
		if contentErr != nil {
			err = fmt.Errorf("failed to get content service for encryption use case: %w", contentErr)
			c.initErrors["encryptionUseCase"] = err
			return
		}

		sessions, sessionErr := c.SessionController()
		if sessionErr != nil {
			err = fmt.Errorf("failed to get session controller for encryption use case: %w", sessionErr)
			c.initErrors["encryptionUseCase"] = err
			return
		}

		businessMetrics, metricsErr := c.BusinessMetrics()
		if metricsErr != nil {
			err = fmt.Errorf("failed to get business metrics for encryption use case: %w", metricsErr)
			c.initErrors["encryptionUseCase"] = err
			return
		}

		useCase := surveysUseCase.NewEncryptionUseCase(txManager, surveyRepo, orgRepo, keyWrap, content, sessions)
		c.surveyDeps.encryptionUseCase = surveysUseCase.NewEncryptionUseCaseWithMetrics(useCase, businessMetrics)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["encryptionUseCase"]; exists {
		return nil, storedErr
	}
	return c.surveyDeps.encryptionUseCase, nil
}

// OrganizationUseCase returns the organization use case.
func (c *Container) OrganizationUseCase() (surveysUseCase.OrganizationUseCase, error) {
	var err error
	c.surveyDeps.organizationUseCaseInit.Do(func() {
		txManager, txErr := c.TxManager()
		if txErr != nil {
			err = fmt.Errorf("failed to get tx manager for organization use case: %w", txErr)
			c.initErrors["organizationUseCase"] = err
			return
		}

		orgRepo, orgErr := c.OrganizationRepository()
		if orgErr != nil {
			err = fmt.Errorf("failed to get organization repository for organization use case: %w", orgErr)
			c.initErrors["organizationUseCase"] = err
			return
		}

		c.surveyDeps.organizationUseCase = surveysUseCase.NewOrganizationUseCase(txManager, orgRepo)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["organizationUseCase"]; exists {
		return nil, storedErr
	}
	return c.surveyDeps.organizationUseCase, nil
}
