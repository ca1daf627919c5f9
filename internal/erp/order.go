package erp

import (
	"context"
	"time"

	errx "github.com/erpbot/server/internal/core/error"
	"gorm.io/gorm"
)

// DefaultDeliveryDays is how far after the transaction date an order is
// delivered when no date is given.
const DefaultDeliveryDays = 7

type OrderInput struct {
	Customer     string
	DeliveryDate time.Time
	Items        []LineInput
}

// CreateSalesOrder validates and inserts a draft sales order.
func (s *Store) CreateSalesOrder(ctx context.Context, in OrderInput) (*SalesOrder, error) {
	var so *SalesOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireLink(ctx, tx, &Customer{}, "Customer", in.Customer); err != nil {
			return err
		}
		today := s.Today()
		delivery := truncateDay(in.DeliveryDate)
		if in.DeliveryDate.IsZero() {
			delivery = today.AddDate(0, 0, DefaultDeliveryDays)
		}
		if delivery.Before(today) {
			return errx.Validationf("Delivery Date cannot be before Transaction Date")
		}
		name := newDocName("SO")
		createdAt := s.now()
		lines, net, err := s.buildLines(ctx, tx, name, in.Items, createdAt)
		if err != nil {
			return err
		}
		so = &SalesOrder{
			Name:            name,
			Customer:        in.Customer,
			TransactionDate: today,
			DeliveryDate:    delivery,
			Currency:        s.currency,
			GrandTotal:      net,
			DocStatus:       DocStatusDraft,
			CreatedAt:       createdAt,
		}
		for _, l := range lines {
			so.Items = append(so.Items, SalesOrderItem{LineItem: l})
		}
		return tx.Create(so).Error
	})
	if err != nil {
		return nil, dbErr("create sales order", err)
	}
	return so, nil
}
