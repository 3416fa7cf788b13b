// Package sales implements the product point-of-sale: stock decrement and
// the product_sale transaction, committed as one unit.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/gymflex/ops-engine/gym"
)

// walkInLabel is recorded on sales with no client reference.
const walkInLabel = "Cliente General"

type Service struct {
	store gym.TxStore

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewService(store gym.TxStore) *Service {
	return &Service{store: store, Now: time.Now}
}

// Sell decrements stock and appends one product_sale transaction,
// atomically. clientID may be nil for walk-in customers.
func (s *Service) Sell(ctx context.Context, productID gym.ProductID, quantity int, clientID *gym.ClientID) (*gym.Transaction, error) {
	if quantity <= 0 {
		return nil, &gym.ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	var tx *gym.Transaction
	err := s.store.WithTx(ctx, func(store gym.Store) error {
		product, err := store.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if product.Stock < quantity {
			return gym.ErrInsufficientStock
		}

		clientName := walkInLabel
		var clientRef *gym.ClientID
		if clientID != nil {
			client, err := store.GetClient(ctx, *clientID)
			if err != nil {
				return err
			}
			clientName = client.FullName()
			clientRef = &client.ID
		}

		product.Stock -= quantity
		if err := store.SaveProduct(ctx, product); err != nil {
			return err
		}

		tx = &gym.Transaction{
			ID:              gym.NewTransactionID(),
			ClientID:        clientRef,
			ClientName:      clientName,
			ItemDescription: fmt.Sprintf("%dx %s", quantity, product.Name),
			Amount:          product.Price.MulInt(quantity),
			Date:            s.Now(),
			Type:            gym.TxProductSale,
		}
		return store.InsertTransaction(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}
