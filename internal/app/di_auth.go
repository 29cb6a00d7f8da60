package app

import (
	"fmt"
	"sync"

	authHTTP "github.com/allisson/byoc-relay/internal/auth/http"
	authService "github.com/allisson/byoc-relay/internal/auth/service"
	authUseCase "github.com/allisson/byoc-relay/internal/auth/usecase"
)

// authComponents holds the BYOC authentication components of the Container.
type authComponents struct {
	secretService authService.SecretService
	tokenService  authService.TokenService
	tokenUseCase  authUseCase.TokenUseCase

	secretServiceInit sync.Once
	tokenServiceInit  sync.Once
	tokenUseCaseInit  sync.Once
}

// SecretService returns the secret service for constant-time comparisons and generation.
func (c *Container) SecretService() authService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = authService.NewSecretService()
	})
	return c.secretService
}

// TokenService returns the JWT signing service keyed by JWT_SECRET.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService([]byte(c.config.JWTSecret), nil)
	})
	return c.tokenService
}

// TokenUseCase returns the token use case, wrapped with metrics when enabled.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// TokenHandler creates the token endpoint handler.
func (c *Container) TokenHandler(tokenUseCase authUseCase.TokenUseCase) *authHTTP.TokenHandler {
	return authHTTP.NewTokenHandler(tokenUseCase, c.Logger())
}

// initTokenUseCase creates the token use case with all its dependencies.
func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
	}

	useCase := authUseCase.NewTokenUseCase(c.config, c.SecretService(), c.TokenService(), nil)
	if c.config.MetricsEnabled {
		useCase = authUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}
