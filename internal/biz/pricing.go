package biz

import (
	"xinyuan_tech/assistance-service/internal/conf"
	"xinyuan_tech/assistance-service/internal/constants"

	"github.com/shopspring/decimal"
)

// Pricing 服务报价接口
// 价格当前是按服务类型固定的价目表，抽象成接口以便后续接入动态定价
// 而不用改动请求状态机
type Pricing interface {
	QuotePrice(serviceType ServiceType) decimal.Decimal
}

// tablePricing 固定价目表实现
type tablePricing struct {
	prices   map[ServiceType]decimal.Decimal
	fallback decimal.Decimal
}

// NewPricing 基于默认价目表应用配置文件中的覆盖项
func NewPricing(c *conf.Bootstrap) Pricing {
	p := &tablePricing{
		prices:   make(map[ServiceType]decimal.Decimal, len(constants.DefaultServicePrices)),
		fallback: decimal.RequireFromString(constants.DefaultFallbackPrice),
	}
	for serviceType, price := range constants.DefaultServicePrices {
		p.prices[ServiceType(serviceType)] = decimal.RequireFromString(price)
	}
	if c != nil && c.Pricing != nil {
		for serviceType, price := range c.Pricing.Services {
			d, err := decimal.NewFromString(price)
			if err != nil {
				continue
			}
			p.prices[ServiceType(serviceType)] = d
		}
		if c.Pricing.Fallback != "" {
			if d, err := decimal.NewFromString(c.Pricing.Fallback); err == nil {
				p.fallback = d
			}
		}
	}
	return p
}

// QuotePrice 获取服务类型的报价，未列入价目表的类型返回兜底价
func (p *tablePricing) QuotePrice(serviceType ServiceType) decimal.Decimal {
	if price, ok := p.prices[serviceType]; ok {
		return price
	}
	return p.fallback
}
