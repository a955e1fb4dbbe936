package integrations

import "context"

// Bitrix24 is a placeholder connector for the Bitrix24 CRM. Every
// operation reports ErrNotConfigured until credentials wiring lands.
type Bitrix24 struct{}

func (Bitrix24) Name() string { return "bitrix24" }

func (Bitrix24) Sync(ctx context.Context, tenantID string) error {
	return ErrNotConfigured
}

func (Bitrix24) CreateOrder(ctx context.Context, order Order) (string, error) {
	return "", ErrNotConfigured
}

func (Bitrix24) CheckAvailability(ctx context.Context, tenantID, sku string) (int, error) {
	return 0, ErrNotConfigured
}

// OneC is a placeholder connector for the 1C ERP.
type OneC struct{}

func (OneC) Name() string { return "1c" }

func (OneC) Sync(ctx context.Context, tenantID string) error {
	return ErrNotConfigured
}

func (OneC) CreateOrder(ctx context.Context, order Order) (string, error) {
	return "", ErrNotConfigured
}

func (OneC) CheckAvailability(ctx context.Context, tenantID, sku string) (int, error) {
	return 0, ErrNotConfigured
}
