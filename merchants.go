package wave

import (
	"context"
	"net/url"

	"github.com/noah-isme/wave-go/internal/transport"
)

const pathAggregatedMerchants = "/v1/aggregated_merchants"

// MerchantService reads aggregated merchants.
type MerchantService struct {
	p *transport.Pipeline
}

// List returns one page of aggregated merchants. params may be nil.
func (s *MerchantService) List(ctx context.Context, params *MerchantListParams) (*MerchantList, error) {
	var query any
	if params != nil {
		if err := check(params); err != nil {
			return nil, err
		}
		query = params
	}
	var out MerchantList
	if err := s.p.Get(ctx, pathAggregatedMerchants, pathAggregatedMerchants, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MerchantService) Get(ctx context.Context, merchantID string) (*Merchant, error) {
	if err := requireID("merchant_id", merchantID); err != nil {
		return nil, err
	}
	var out Merchant
	if err := s.p.Get(ctx, pathAggregatedMerchants+"/"+url.PathEscape(merchantID), pathAggregatedMerchants+"/{id}", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
