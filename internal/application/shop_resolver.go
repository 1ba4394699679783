package application

import (
	"net/http"
	"net/url"
	"strings"

	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/ports"

	"github.com/rs/zerolog"
)

// ShopStrategy tries to extract a shop from a request. An empty result means "no opinion".
type ShopStrategy struct {
	Name    string
	Resolve func(r *http.Request) string
}

// ShopResolver determines the shop of an inbound request with an ordered list of strategies.
// The first non-empty result wins. Form values must already be parsed.
type ShopResolver struct {
	strategies []ShopStrategy
	logger     zerolog.Logger
}

// NewShopResolver creates a resolver that tries, in order, the app proxy signature,
// the "shop" query or form parameter and the Referer host.
func NewShopResolver(verifier ports.AppVerifier, logger zerolog.Logger) *ShopResolver {
	return NewShopResolverWithStrategies(logger,
		ProxySignatureStrategy(verifier, logger),
		ShopParamStrategy(),
		RefererStrategy(),
	)
}

// NewShopResolverWithStrategies creates a resolver with custom strategies
func NewShopResolverWithStrategies(logger zerolog.Logger, strategies ...ShopStrategy) *ShopResolver {
	return &ShopResolver{strategies: strategies, logger: logger}
}

// Resolve returns the shop or domain.ErrShopUnresolved
func (s *ShopResolver) Resolve(r *http.Request) (string, error) {
	for _, strategy := range s.strategies {
		shop := strings.TrimSpace(strategy.Resolve(r))
		if shop == "" {
			continue
		}
		s.logger.Debug().Str("strategy", strategy.Name).Str("shop", shop).Msg("Shop resolved")
		return shop, nil
	}
	s.logger.Warn().Str("path", r.URL.Path).Msg("Could not determine shop from any source")
	return "", domain.ErrShopUnresolved
}

// ProxySignatureStrategy takes the shop claim of a valid app proxy signature
func ProxySignatureStrategy(verifier ports.AppVerifier, logger zerolog.Logger) ShopStrategy {
	return ShopStrategy{
		Name: "app_proxy",
		Resolve: func(r *http.Request) string {
			if verifier == nil {
				return ""
			}
			shop, err := verifier.VerifyProxyRequest(r.URL)
			if err != nil {
				logger.Debug().Err(err).Msg("App proxy authentication failed")
				return ""
			}
			return shop
		},
	}
}

// ShopParamStrategy reads "shop" from the query string, then from submitted form fields
func ShopParamStrategy() ShopStrategy {
	return ShopStrategy{
		Name: "shop_param",
		Resolve: func(r *http.Request) string {
			if shop := r.URL.Query().Get("shop"); shop != "" {
				return shop
			}
			// multipart values are merged into PostForm by ParseMultipartForm
			if r.PostForm != nil {
				return r.PostForm.Get("shop")
			}
			return ""
		},
	}
}

// RefererStrategy takes the shop name from a "<shop>.myshopify.com" Referer host
func RefererStrategy() ShopStrategy {
	return ShopStrategy{
		Name: "referer",
		Resolve: func(r *http.Request) string {
			ref := r.Header.Get("Referer")
			if ref == "" {
				return ""
			}
			u, err := url.Parse(ref)
			if err != nil {
				return ""
			}
			host := strings.ToLower(u.Hostname())
			if !strings.HasSuffix(host, domain.MyshopifySuffix) {
				return ""
			}
			return strings.TrimSuffix(host, domain.MyshopifySuffix)
		},
	}
}
