package app

import (
	"fmt"
	"net/http"
	"sync"

	cxoneClient "github.com/allisson/byoc-relay/internal/cxone/client"
	"github.com/allisson/byoc-relay/internal/metrics"
	relayHTTP "github.com/allisson/byoc-relay/internal/relay/http"
	relayService "github.com/allisson/byoc-relay/internal/relay/service"
	relayUseCase "github.com/allisson/byoc-relay/internal/relay/usecase"
	"github.com/allisson/byoc-relay/internal/transport"
	wechatClient "github.com/allisson/byoc-relay/internal/wechat/client"
	wechatService "github.com/allisson/byoc-relay/internal/wechat/service"
)

// relayComponents holds the message routing components of the Container.
type relayComponents struct {
	outboundHTTPClient *http.Client
	cxoneSender        transport.Sender
	wechatSender       transport.Sender
	messageCrypter     wechatService.MessageCrypter
	relayUseCase       relayUseCase.RelayUseCase

	outboundHTTPClientInit sync.Once
	cxoneSenderInit        sync.Once
	wechatSenderInit       sync.Once
	messageCrypterInit     sync.Once
	relayUseCaseInit       sync.Once
}

// HTTPClientConfig returns the bounds applied to outbound platform calls.
func (c *Container) HTTPClientConfig() transport.HTTPClientConfig {
	return transport.HTTPClientConfig{
		Timeout:    c.config.HTTPTimeout,
		MaxRetries: c.config.HTTPMaxRetries,
	}
}

// OutboundHTTPClient returns the retrying HTTP client shared by both platform clients.
func (c *Container) OutboundHTTPClient() *http.Client {
	c.outboundHTTPClientInit.Do(func() {
		c.outboundHTTPClient = transport.NewHTTPClient(c.HTTPClientConfig(), c.Logger())
	})
	return c.outboundHTTPClient
}

// CXoneSender returns the transport used for WeChat to CXone deliveries.
// In recording mode it is a *transport.Recorder.
func (c *Container) CXoneSender() transport.Sender {
	c.cxoneSenderInit.Do(func() {
		if c.config.IsRecording() {
			c.cxoneSender = transport.NewRecorder()
			return
		}
		c.cxoneSender = cxoneClient.New(cxoneClient.Config{
			BaseURL:     c.config.CXoneBaseURL,
			BearerToken: c.config.CXoneBearerToken,
			ChannelID:   c.config.CXoneChannelID,
		}, c.OutboundHTTPClient(), c.Logger())
	})
	return c.cxoneSender
}

// WeChatSender returns the transport used for CXone to WeChat deliveries.
// In recording mode it is a *transport.Recorder.
func (c *Container) WeChatSender() transport.Sender {
	c.wechatSenderInit.Do(func() {
		if c.config.IsRecording() {
			c.wechatSender = transport.NewRecorder()
			return
		}
		c.wechatSender = wechatClient.New(wechatClient.Config{
			BaseURL:   c.config.WeChatAPIBaseURL,
			AppID:     c.config.WeChatAppID,
			AppSecret: c.config.WeChatAppSecret,
		}, c.OutboundHTTPClient(), c.Logger(), nil)
	})
	return c.wechatSender
}

// MessageCrypter returns the safe-mode crypter, or nil when no EncodingAESKey is configured.
func (c *Container) MessageCrypter() (wechatService.MessageCrypter, error) {
	var err error
	c.messageCrypterInit.Do(func() {
		if c.config.WeChatEncodingAESKey == "" {
			return
		}
		c.messageCrypter, err = wechatService.NewMessageCrypter(c.config.WeChatEncodingAESKey, c.config.WeChatAppID)
		if err != nil {
			c.initErrors["messageCrypter"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["messageCrypter"]; exists {
		return nil, storedErr
	}
	return c.messageCrypter, nil
}

// RelayUseCase returns the message router, wrapped with metrics when enabled.
func (c *Container) RelayUseCase() (relayUseCase.RelayUseCase, error) {
	var err error
	c.relayUseCaseInit.Do(func() {
		c.relayUseCase, err = c.initRelayUseCase()
		if err != nil {
			c.initErrors["relayUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["relayUseCase"]; exists {
		return nil, storedErr
	}
	return c.relayUseCase, nil
}

// WebhookHandler creates the WeChat webhook handler.
func (c *Container) WebhookHandler(useCase relayUseCase.RelayUseCase) *relayHTTP.WebhookHandler {
	return relayHTTP.NewWebhookHandler(useCase, c.config.WebhookMaxBodyBytes, c.Logger())
}

// PostHandler creates the CXone post-message handler.
func (c *Container) PostHandler(useCase relayUseCase.RelayUseCase) *relayHTTP.PostHandler {
	return relayHTTP.NewPostHandler(useCase, c.Logger())
}

// initRelayUseCase creates the relay use case with all its dependencies.
func (c *Container) initRelayUseCase() (relayUseCase.RelayUseCase, error) {
	logger := c.Logger()

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for relay use case: %w", err)
	}

	deliveryMetrics, err := c.DeliveryMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery metrics for relay use case: %w", err)
	}

	crypter, err := c.MessageCrypter()
	if err != nil {
		return nil, fmt.Errorf("failed to get message crypter for relay use case: %w", err)
	}

	useCase := relayUseCase.NewRelayUseCase(
		relayUseCase.Config{
			WebhookToken:    c.config.WeChatToken,
			MaxBodyBytes:    c.config.WebhookMaxBodyBytes,
			DeliveryTimeout: c.HTTPClientConfig().DeliveryBudget(1),
			ReplyTimeout:    c.HTTPClientConfig().DeliveryBudget(wechatClient.ExchangesPerSend),
		},
		relayUseCase.Dependencies{
			SignatureValidator: wechatService.NewSignatureValidator(),
			MessageCodec:       wechatService.NewMessageCodec(),
			MessageCrypter:     crypter,
			FieldResolver: relayService.NewFieldResolver(relayService.ResolverPaths{
				Identity: c.config.ResolverIdentityPaths,
				Text:     c.config.ResolverTextPaths,
			}),
			CXoneSender:  c.guardedSender(c.CXoneSender(), metrics.ServiceCXone, deliveryMetrics),
			WeChatSender: c.guardedSender(c.WeChatSender(), metrics.ServiceWeChat, deliveryMetrics),
			AckPolicy:    relayUseCase.NewAckPolicy(c.config.RelayBestEffortAck, logger, businessMetrics),
			Logger:       logger,
		},
	)
	if c.config.MetricsEnabled {
		useCase = relayUseCase.NewRelayUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// guardedSender wraps a platform sender with delivery metrics and, for real
// HTTP delivery, a circuit breaker. Recorders never fail, so they get no breaker.
func (c *Container) guardedSender(
	sender transport.Sender,
	service string,
	deliveryMetrics metrics.DeliveryMetrics,
) transport.Sender {
	if !c.config.IsRecording() {
		sender = transport.NewSenderWithBreaker(sender, transport.BreakerConfig{
			Service:          service,
			FailureThreshold: uint32(c.config.CircuitBreakerFailureThreshold),
			OpenTimeout:      c.config.CircuitBreakerTimeout,
		}, c.Logger(), deliveryMetrics)
	}
	return transport.NewSenderWithMetrics(sender, service, deliveryMetrics)
}
