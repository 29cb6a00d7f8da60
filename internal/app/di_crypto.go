package app

import (
	cryptoService "github.com/allisson/byoc-relay/internal/crypto/service"
)

// KMSService returns the KMS service used to seal and unseal configuration secrets.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}
