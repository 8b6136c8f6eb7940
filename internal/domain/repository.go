package domain

import (
	"context"
	"time"
)

// OrderFilter narrows order lookups for reporting. Zero values mean
// "no filter". OrderNoPrefix matches the base order number so DO-416
// covers DO-416A and DO-416B.
type OrderFilter struct {
	OrderNoPrefix string
	CustomerName  string
	OilType       string
	SkuName       string
	FromDate      *time.Time
	ToDate        *time.Time
}

// IsEmpty reports whether the filter constrains anything
func (f OrderFilter) IsEmpty() bool {
	return f.OrderNoPrefix == "" && f.CustomerName == "" && f.OilType == "" &&
		f.SkuName == "" && f.FromDate == nil && f.ToDate == nil
}

// OrderRepository persists and loads Order aggregates
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)
	FindAll(ctx context.Context) ([]Order, error)
	FindWithFilter(ctx context.Context, filter OrderFilter) ([]Order, error)
	NextOrderSequence(ctx context.Context) (int64, error)
}

// SkuReferenceRepository loads SKU reference records
type SkuReferenceRepository interface {
	FindAll(ctx context.Context) ([]SkuReference, error)
	FindByName(ctx context.Context, skuName string) (*SkuReference, error)
}
